// Package vtest provides testing helpers for mvu applications.
//
// # Recording Documents
//
// Recorder implements the runtime's Document interface and records every
// primitive call. It can forward calls to another document and fail chosen
// calls, which makes it the usual tool for asserting on patch application:
//
//	rec := vtest.NewRecorder(nil)
//	rec.FailOn("SetText", 1, errors.New("gone"))
//	app, _ := runtime.New(program, rec)
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, view(state), "Count: 3")
//	vtest.ExpectAttribute(t, view(state), "class", "done")
package vtest
