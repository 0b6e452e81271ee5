package ui

import "github.com/hubastard/quadtext/engine/core"

type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerDown
	PointerUp
)

// PointerEvent is a pointer sample in world coordinates.
type PointerEvent struct {
	Kind   PointerKind
	X, Y   float32
	Button core.MouseButton
}

// PointerHandler is implemented by elements that react to the pointer.
type PointerHandler interface {
	HandlePointer(ctx *Context, ev PointerEvent) bool
}

// Dispatch routes ev to the topmost element under the pointer that handles
// it, children before parents and later siblings before earlier ones. It
// reports whether an element consumed the event.
func Dispatch(ctx *Context, root UIElement, ev PointerEvent) bool {
	if root == nil || !root.Node().Contains(ev.X, ev.Y) {
		return false
	}
	kids := root.Node().children
	for i := len(kids) - 1; i >= 0; i-- {
		if Dispatch(ctx, kids[i], ev) {
			return true
		}
	}
	if h, ok := root.(PointerHandler); ok {
		return h.HandlePointer(ctx, ev)
	}
	return false
}
