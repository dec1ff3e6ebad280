// Package errors provides structured, actionable error messages for the mvu
// command line.
//
// Library packages return plain sentinel errors. At the edge, the CLI turns
// them into coded errors that explain what went wrong and how to fix it.
//
// # Error Categories
//
//   - runtime: update cycle failures (unknown command, desync, panics)
//   - protocol: wire protocol errors
//   - config: configuration file errors
//   - cli: command line usage errors
//   - publish: object storage upload errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "M001") that maps to a short message,
// a detailed explanation and a documentation URL.
//
// # Usage
//
//	err := errors.New("M020").
//	    WithDetail(`field "runtime.transport": unknown mode "fast"`).
//	    Wrap(cause)
//
//	fmt.Print(err.Format())
//	// ERROR M020: Invalid configuration
//	//
//	//   field "runtime.transport": unknown mode "fast"
//	//
//	//   Learn more: https://mvu.dev/docs/errors/M020
package errors
