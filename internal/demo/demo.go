// Package demo holds the example applications served by the mvu command.
package demo

import (
	"fmt"
	"sort"

	"github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/transport"
)

// App describes one runnable demo.
type App struct {
	Name        string
	Description string

	// Types lists the app's commands for the inline transport codecs.
	Types *transport.Types

	// New creates an instance bound to doc.
	New func(doc runtime.Document, opts ...runtime.Option) (runtime.Instance, error)
}

var apps = map[string]*App{
	"counter": {
		Name:        "counter",
		Description: "A number with increment, decrement and reset buttons",
		Types:       CounterTypes(),
		New: func(doc runtime.Document, opts ...runtime.Option) (runtime.Instance, error) {
			return runtime.New(Counter(), doc, opts...)
		},
	},
	"todo": {
		Name:        "todo",
		Description: "A task list with add, toggle, remove and clear done",
		Types:       TodoTypes(),
		New: func(doc runtime.Document, opts ...runtime.Option) (runtime.Instance, error) {
			return runtime.New(Todo(), doc, opts...)
		},
	},
}

// Lookup returns the demo registered under name.
func Lookup(name string) (*App, error) {
	app, ok := apps[name]
	if !ok {
		return nil, fmt.Errorf("demo: unknown app %q (available: %v)", name, Names())
	}
	return app, nil
}

// Names returns the demo names in sorted order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
