package demo

import (
	"strconv"

	"github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/transport"
	. "github.com/vango-dev/mvu/pkg/vdom"
)

// CounterMsg is a counter command.
type CounterMsg interface{ counterMsg() }

type (
	Increment struct{}
	Decrement struct{}
	Reset     struct{}
)

func (Increment) counterMsg() {}
func (Decrement) counterMsg() {}
func (Reset) counterMsg()     {}

// Counter returns the counter program.
func Counter() runtime.Program[int, CounterMsg] {
	return runtime.Program[int, CounterMsg]{
		Init:   0,
		Update: UpdateCounter,
		View:   CounterView,
	}
}

// UpdateCounter applies msg to count.
func UpdateCounter(count int, msg CounterMsg) int {
	switch msg.(type) {
	case Increment:
		return count + 1
	case Decrement:
		return count - 1
	case Reset:
		return 0
	default:
		return count
	}
}

// CounterView renders div[button[+], button[-], text(count)], with a reset
// button appended while the count is not zero.
func CounterView(count int) *VNode {
	return Div(Class("counter"),
		Button(OnClick(Increment{}), Text("+")),
		Button(OnClick(Decrement{}), Text("-")),
		Text(strconv.Itoa(count)),
		If(count != 0, Button(Class("reset"), OnClick(Reset{}), Text("reset"))),
	)
}

// CounterTypes registers the counter commands for serialization.
func CounterTypes() *transport.Types {
	return transport.NewTypes().
		MustRegister("counter.increment", Increment{}).
		MustRegister("counter.decrement", Decrement{}).
		MustRegister("counter.reset", Reset{})
}
