// Package listview renders a scrolling, selectable window over a slice of
// items for Bubble Tea models. Only rows inside the viewport are rendered.
package listview
