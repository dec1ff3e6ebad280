// Package runtime runs mvu applications.
//
// An application is a Program: an initial state, an Update function that
// folds a command into the state and a View function that renders the state
// as a vdom tree. An App binds one Program instance to one Document, the
// externally owned materialization of the tree, and drives it through
// dispatch cycles:
//
//	app, err := runtime.New(program, doc,
//	    runtime.WithLogger(logger),
//	    runtime.WithMetrics(metrics),
//	)
//	if err := app.Mount(ctx); err != nil { ... }
//	...
//	err := app.Dispatch(ctx, eventID) // eventID comes from a data-on-* attribute
//
// # Cycles
//
// Dispatch looks the event id up in the instance's registry, applies Update,
// renders View, diffs the new tree against the committed one and applies
// the patches to the Document in order. State and tree are committed
// together, and only once every patch has been applied.
//
// # Failures
//
// An unknown event id fails with ErrUnknownCommand and changes nothing;
// hosts usually ignore it. A failing Document call fails with
// ErrExternalPrimitive after some mutations may already have happened. The
// instance then reports Desynced until Resync rebuilds the document from the
// committed tree.
//
// # Concurrency
//
// Cycles of one App never overlap. Under ConcurrencyQueue (the default) a
// second Dispatch waits; under ConcurrencyReject it fails with
// ErrCycleInFlight. Separate Apps share nothing.
package runtime
