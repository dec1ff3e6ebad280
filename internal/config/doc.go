// Package config loads the configuration for the mvu command line.
//
// The file is YAML (JSON is accepted since it is a YAML subset). Keys use
// snake_case; durations are Go duration strings. Fields that are absent keep
// their defaults from New.
//
// # Example
//
//	server:
//	  address: ":8080"
//	  write_timeout: 5s
//	runtime:
//	  transport: id-indirection
//	  codec: json
//	  concurrency: queue
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	publish:
//	  bucket: my-site
//	  prefix: demo/
//	  region: eu-west-1
package config
