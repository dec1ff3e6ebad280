package vdom

import (
	"strconv"
	"strings"
)

// Prop creates a string-valued property attribute.
func Prop(name, value string) Attr {
	return Attr{Kind: AttrProperty, Name: name, Value: value}
}

// boolProp renders a boolean attribute as present ("") or omitted.
func boolProp(name string, on bool) Attr {
	if !on {
		return Attr{}
	}
	return Prop(name, "")
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return Prop("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return Prop("class", strings.Join(classes, " ")) }

// ClassIf sets the class attribute only when cond is true.
func ClassIf(cond bool, classes ...string) Attr {
	if !cond {
		return Attr{}
	}
	return Class(classes...)
}

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return Prop("style", style) }

// Title sets the title attribute.
func Title(title string) Attr { return Prop("title", title) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return Prop("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return Prop("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return Prop("aria-label", label) }

// AriaChecked sets the aria-checked attribute.
func AriaChecked(checked bool) Attr { return Prop("aria-checked", strconv.FormatBool(checked)) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return Prop("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return Prop("target", target) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return Prop("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return Prop("type", t) }

// Value sets the value attribute.
func Value(v string) Attr { return Prop("value", v) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return Prop("placeholder", text) }

// For sets the for attribute on labels.
func For(id string) Attr { return Prop("for", id) }

// Disabled sets the disabled boolean attribute.
func Disabled(on bool) Attr { return boolProp("disabled", on) }

// Checked sets the checked boolean attribute.
func Checked(on bool) Attr { return boolProp("checked", on) }

// Hidden sets the hidden boolean attribute.
func Hidden(on bool) Attr { return boolProp("hidden", on) }
