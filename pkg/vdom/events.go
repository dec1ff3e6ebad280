package vdom

// On binds cmd to the named DOM event (e.g., "click").
func On(event string, cmd Command) Attr {
	return Attr{Kind: AttrHandler, Name: event, Command: cmd}
}

// Mouse events

// OnClick handles click events.
func OnClick(cmd Command) Attr { return On("click", cmd) }

// OnDblClick handles double-click events.
func OnDblClick(cmd Command) Attr { return On("dblclick", cmd) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(cmd Command) Attr { return On("mouseenter", cmd) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(cmd Command) Attr { return On("mouseleave", cmd) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(cmd Command) Attr { return On("keydown", cmd) }

// OnKeyUp handles keyup events.
func OnKeyUp(cmd Command) Attr { return On("keyup", cmd) }

// Form events

// OnInput handles input events.
func OnInput(cmd Command) Attr { return On("input", cmd) }

// OnChange handles change events.
func OnChange(cmd Command) Attr { return On("change", cmd) }

// OnSubmit handles form submit events.
func OnSubmit(cmd Command) Attr { return On("submit", cmd) }

// OnFocus handles focus events.
func OnFocus(cmd Command) Attr { return On("focus", cmd) }

// OnBlur handles blur events.
func OnBlur(cmd Command) Attr { return On("blur", cmd) }
