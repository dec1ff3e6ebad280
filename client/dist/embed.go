// Package clientdist embeds the thin client served by the mvu server.
package clientdist

import _ "embed"

// MvuJS is the thin client JavaScript bundle.
//
// It is served by the server at "/_mvu/client.js".
//
//go:embed mvu.js
var MvuJS []byte
