// Package transport decides how a handler's command is exposed to the host
// and how an event id coming back from the host is turned into a command.
//
// Two modes exist and an application instance uses exactly one:
//
//   - ModeIDIndirection: the host sees an opaque handler id; the command is
//     resolved through the instance's dispatch registry.
//   - ModeInline: the host sees the command itself, serialized by a Codec;
//     an id the registry does not know is decoded and replayed.
//
// Handler ids are derived from the element identity, the event name and a
// fingerprint of the command, so an unchanged handler keeps its id across
// renders and a changed command always gets a fresh one.
package transport
