package richtext

import (
	"image"
	"sync"
	"time"

	"github.com/hubastard/quadtext/engine/core"
)

// DefaultFrameInterval is the time between two frames of an animated object.
const DefaultFrameInterval = 100 * time.Millisecond

// AnimState is the animation state of an inline object.
type AnimState uint8

const (
	Static AnimState = iota
	Animating
)

func (s AnimState) String() string {
	if s == Animating {
		return "animating"
	}
	return "static"
}

// Resolver loads the image for a resource key synchronously.
type Resolver interface {
	Resolve(key string) (image.Image, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(key string) (image.Image, error)

func (f ResolverFunc) Resolve(key string) (image.Image, error) { return f(key) }

// AsyncResolver starts loading key and calls done exactly once, from any
// goroutine, when the image is available or failed to load.
type AsyncResolver interface {
	ResolveAsync(key string, done func(image.Image, error))
}

type completion struct {
	obj  *InlineObject
	gen  uint64
	slot int
	key  string
	img  image.Image
	err  error
}

// Animator cycles the frames of animated inline objects and resolves frame
// images lazily. Each frame is requested once per binding and cached in the
// object; asynchronous results are queued and applied by Drain on the
// owner's thread.
type Animator struct {
	Interval time.Duration

	resolver Resolver
	async    AsyncResolver
	elapsed  time.Duration

	mu      sync.Mutex
	pending []completion
}

// NewAnimator returns an animator resolving through r. When r also
// implements AsyncResolver and preview is false, frames load
// asynchronously.
func NewAnimator(r Resolver, preview bool) *Animator {
	a := &Animator{Interval: DefaultFrameInterval, resolver: r}
	if ar, ok := r.(AsyncResolver); ok && !preview {
		a.async = ar
	}
	return a
}

// Advance drains finished loads and, once Interval has elapsed, steps every
// animated object. It reports whether any displayed frame changed.
func (a *Animator) Advance(dt time.Duration, objs []*InlineObject) bool {
	changed := a.Drain()
	a.elapsed += dt
	if a.Interval > 0 && a.elapsed >= a.Interval {
		a.elapsed = 0
		if a.Step(objs) {
			changed = true
		}
	}
	return changed
}

// Step advances every animated object by one frame.
func (a *Animator) Step(objs []*InlineObject) bool {
	changed := false
	for _, o := range objs {
		if o.State() != Animating {
			continue
		}
		o.index = (o.index + 1) % len(o.Tag.Keys)
		if a.show(o) {
			changed = true
		}
	}
	return changed
}

// Refresh requests the current frame of every object that has none on
// screen yet; static objects get their only frame here.
func (a *Animator) Refresh(objs []*InlineObject) bool {
	changed := false
	for _, o := range objs {
		if o.displayed == nil && a.show(o) {
			changed = true
		}
	}
	return changed
}

// show puts the current frame of o on screen if it is available. While it
// is loading or after it failed, the previous frame stays visible.
func (a *Animator) show(o *InlineObject) bool {
	img := a.request(o, o.index)
	if img == nil {
		return false
	}
	o.displayed = img
	return true
}

func (a *Animator) request(o *InlineObject, i int) image.Image {
	if i < 0 || i >= len(o.frames) || a.resolver == nil {
		return nil
	}
	slot := &o.frames[i]
	switch slot.state {
	case frameReady:
		return slot.img
	case frameLoading, frameFailed:
		return nil
	}
	key := o.Tag.Keys[i]
	if a.async != nil {
		slot.state = frameLoading
		gen := o.generation
		a.async.ResolveAsync(key, func(img image.Image, err error) {
			a.mu.Lock()
			a.pending = append(a.pending, completion{obj: o, gen: gen, slot: i, key: key, img: img, err: err})
			a.mu.Unlock()
		})
		return nil
	}
	img, err := a.resolver.Resolve(key)
	a.store(slot, key, img, err)
	return slot.img
}

func (a *Animator) store(slot *frameSlot, key string, img image.Image, err error) {
	if err != nil || img == nil {
		slot.state = frameFailed
		core.Logger().Debug("richtext: frame unresolved", "key", key, "err", err)
		return
	}
	slot.state = frameReady
	slot.img = img
}

// Drain applies the asynchronous loads finished since the last call.
// Results for objects recycled in the meantime are discarded.
func (a *Animator) Drain() bool {
	a.mu.Lock()
	done := a.pending
	a.pending = nil
	a.mu.Unlock()

	changed := false
	for _, c := range done {
		o := c.obj
		if o.generation != c.gen || c.slot >= len(o.frames) {
			core.Logger().Debug("richtext: stale frame dropped", "key", c.key)
			continue
		}
		slot := &o.frames[c.slot]
		a.store(slot, c.key, c.img, c.err)
		if slot.state == frameReady && o.index == c.slot {
			o.displayed = slot.img
			changed = true
		}
	}
	return changed
}

// Pending reports the number of completions waiting for Drain.
func (a *Animator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
