// Package document is an in-memory HTML document that implements the
// runtime's mutation primitives.
//
// Markup is parsed with golang.org/x/net/html in the context of the element
// it is inserted into, the same way a browser parses innerHTML. Elements are
// addressed by their data-vid attribute and text nodes by the comment marker
// the renderer places in front of them. Hosts use it for prerendering and
// publishing; tests use it to check that applying a patch list to one
// materialization produces the materialization of the next tree.
package document
