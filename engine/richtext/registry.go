package richtext

import (
	"image"
	"slices"
)

type frameState uint8

const (
	frameAbsent frameState = iota
	frameLoading
	frameReady
	frameFailed
)

type frameSlot struct {
	state frameState
	img   image.Image
}

// RectInfo is the placement computed for an inline object in the last
// layout pass.
type RectInfo struct {
	// OffsetY is the baseline correction shared with the object's line.
	OffsetY float32
	// VertPosY is the raw y of the placeholder anchor, used to group lines.
	VertPosY float32
	Size     Vec2
	Position Vec2 // center, engine units
	// Placed is false when no placeholder glyph was found for the object.
	Placed bool
}

// InlineObject is the pooled record bound to one inline tag.
type InlineObject struct {
	Tag  InlineTag
	Rect RectInfo

	frames     []frameSlot
	index      int
	displayed  image.Image
	generation uint64
	bound      bool
}

// State reports whether the object cycles frames.
func (o *InlineObject) State() AnimState {
	if o.Tag.Animated() {
		return Animating
	}
	return Static
}

// Index is the current animation frame index.
func (o *InlineObject) Index() int { return o.index }

// Frame returns the frame currently on screen, nil until one resolved.
func (o *InlineObject) Frame() image.Image { return o.displayed }

// Key returns the resource key of the current frame.
func (o *InlineObject) Key() string {
	if o.index < len(o.Tag.Keys) {
		return o.Tag.Keys[o.index]
	}
	return ""
}

// Generation changes whenever the record is recycled for other content.
func (o *InlineObject) Generation() uint64 { return o.generation }

func (o *InlineObject) reset(gen uint64) {
	o.Tag = InlineTag{}
	o.Rect = RectInfo{}
	clear(o.frames)
	o.frames = o.frames[:0]
	o.index = 0
	o.displayed = nil
	o.generation = gen
	o.bound = false
}

// Registry is a per-widget arena of inline-object records. Records are
// recycled positionally: slot i of the active list is reused for the i-th
// tag of every scan.
type Registry struct {
	active []*InlineObject
	free   []*InlineObject
	gen    uint64
}

func (r *Registry) nextGen() uint64 {
	r.gen++
	return r.gen
}

// Sync resizes the active list to len(tags) and binds each record to its
// tag. A record whose keys did not change keeps its frame cache and
// animation index, so re-scanning identical text is a no-op.
func (r *Registry) Sync(tags []InlineTag) []*InlineObject {
	for len(r.active) > len(tags) {
		last := r.active[len(r.active)-1]
		r.active = r.active[:len(r.active)-1]
		last.reset(r.nextGen())
		r.free = append(r.free, last)
	}
	for len(r.active) < len(tags) {
		r.active = append(r.active, r.acquire())
	}
	for i, tag := range tags {
		o := r.active[i]
		if o.bound && slices.Equal(o.Tag.Keys, tag.Keys) {
			o.Tag = tag
			continue
		}
		o.reset(r.nextGen())
		o.Tag = tag
		o.frames = slices.Grow(o.frames, len(tag.Keys))[:len(tag.Keys)]
		o.bound = true
	}
	return r.active
}

func (r *Registry) acquire() *InlineObject {
	if n := len(r.free); n > 0 {
		o := r.free[n-1]
		r.free = r.free[:n-1]
		return o
	}
	return &InlineObject{}
}

// Objects returns the active records in tag order.
func (r *Registry) Objects() []*InlineObject { return r.active }

func (r *Registry) Len() int  { return len(r.active) }
func (r *Registry) Idle() int { return len(r.free) }

// Reload forgets the cached frames of every active record. Frames on screen
// stay until their replacement resolves; loads in flight are discarded.
func (r *Registry) Reload() {
	for _, o := range r.active {
		clear(o.frames)
		o.generation = r.nextGen()
	}
}
