package richtext

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/profiler"
)

// ErrNoShaper is returned by Populate when the Text has no shaper.
var ErrNoShaper = errors.New("richtext: no shaper")

// Alignment is the horizontal alignment of lines inside the layout rect.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

var alignNames = [...]string{"left", "center", "right"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignNames[a]
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts "left", "center" or "right".
func (a *Alignment) UnmarshalText(b []byte) error {
	for i, n := range alignNames {
		if strings.EqualFold(string(b), n) {
			*a = Alignment(i)
			return nil
		}
	}
	return fmt.Errorf("richtext: unknown alignment %q", b)
}

// GenerationSettings is what the shaper needs besides the markup.
type GenerationSettings struct {
	// Extents is the layout rectangle size. Its top-left corner is the
	// layout origin; y grows upward, so lines have negative y.
	Extents     Vec2
	FontSize    float32
	LineSpacing float32
	Alignment   Alignment
	Wrap        bool
	BestFit     bool
	MinSize     int
	MaxSize     int
}

// Shaped is the output of a shaping pass.
type Shaped struct {
	// Verts holds four vertices (TL, TR, BR, BL) per visible character and
	// per inline-object placeholder, in markup order.
	Verts []Vertex
	// FontSizeUsedForBestFit is the font size picked by best fit, zero when
	// best fit is off.
	FontSizeUsedForBestFit float32
}

// Shaper turns tokenized markup into glyph quads.
type Shaper interface {
	Shape(tokens []Token, s GenerationSettings) (Shaped, error)
}

// Settings configures a Text.
type Settings struct {
	FontSize    float32   `toml:"font_size"`
	LineSpacing float32   `toml:"line_spacing"`
	Alignment   Alignment `toml:"alignment"`
	Wrap        bool      `toml:"wrap"`
	BestFit     bool      `toml:"best_fit"`
	MinSize     int       `toml:"min_size"`
	MaxSize     int       `toml:"max_size"`
	// UnitsPerPixel converts shaped pixels to engine units.
	UnitsPerPixel float32       `toml:"units_per_pixel"`
	FrameInterval time.Duration `toml:"-"`
	// Preview resolves frames synchronously even if the resolver can load
	// asynchronously.
	Preview bool `toml:"preview"`
	// PlainText shows the markup literally: no inline objects, links or
	// formatting. Switching it on releases every inline object.
	PlainText bool   `toml:"plain_text"`
	Params    Params `toml:"params"`
}

// Defaults fills zero fields with their default values.
func (s *Settings) Defaults() {
	if s.FontSize <= 0 {
		s.FontSize = 24
	}
	if s.LineSpacing <= 0 {
		s.LineSpacing = 1
	}
	if s.MaxSize <= 0 {
		s.MaxSize = int(s.FontSize)
	}
	if s.MinSize <= 0 {
		s.MinSize = 2
	}
	if s.UnitsPerPixel <= 0 {
		s.UnitsPerPixel = 1
	}
	if s.FrameInterval <= 0 {
		s.FrameInterval = DefaultFrameInterval
	}
	if s.Params == (Params{}) {
		s.Params = DefaultParams()
	}
}

// Placement is where the compositing layer draws one inline object.
type Placement struct {
	// Center is the object's center in engine units, baseline correction
	// applied.
	Center Vec2
	Size   Vec2
	Frame  image.Image
	Key    string
	State  AnimState
}

// Bounds returns the placement rectangle.
func (p Placement) Bounds() Rect {
	return Rect{Min: p.Center.Sub(p.Size.Scale(0.5)), Size: p.Size}
}

// Text lays out one markup string with inline objects and hyperlinks. All
// methods serialize on an internal mutex, so layout, animation ticks and
// pointer events never interleave even if a host calls them from different
// goroutines.
type Text struct {
	Settings Settings
	// OnLink is called with the target of a clicked link.
	OnLink func(url string)
	// Snap moves a point onto the output pixel grid.
	Snap func(Vec2) Vec2

	mu       sync.Mutex
	shaper   Shaper
	animator *Animator

	source      string
	scanned     bool
	scannedSize float32
	scannedRaw  bool
	markup      Markup
	ordinals    map[int]int
	registry    Registry
	links       []Link
	verts       []Vertex
}

// New returns a Text shaping with sh and resolving inline images with r.
// r may be nil, in which case inline objects are laid out but never drawn.
func New(sh Shaper, r Resolver, s Settings) *Text {
	s.Defaults()
	t := &Text{Settings: s, shaper: sh, animator: NewAnimator(r, s.Preview)}
	t.animator.Interval = s.FrameInterval
	return t
}

// SetText replaces the markup. The scan happens on the next Populate.
func (t *Text) SetText(markup string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if markup == t.source && t.scanned {
		return
	}
	t.source = markup
	t.scanned = false
}

// Text returns the current markup.
func (t *Text) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

func (t *Text) rescan() {
	raw := t.Settings.PlainText
	if t.scanned && t.scannedSize == t.Settings.FontSize && t.scannedRaw == raw {
		return
	}
	end := profiler.Start("richtext.Scan")
	defer end()

	if raw {
		t.markup = literal(t.source)
	} else {
		t.markup = Scan(t.source, t.Settings.FontSize)
	}
	t.registry.Sync(t.markup.Tags)
	t.ordinals = Correlate(t.markup.Tags)
	t.links = cloneLinks(t.markup.Links)
	t.scanned = true
	t.scannedSize = t.Settings.FontSize
	t.scannedRaw = raw
}

// literal is the markup of s shown verbatim.
func literal(s string) Markup {
	m := Markup{Source: s, Plain: s, Stripped: s}
	if s != "" {
		m.Tokens = []Token{{Kind: TokenText, Text: s}}
	}
	m.Visible = strings.Join(strings.Fields(s), "")
	return m
}

// Populate runs a full layout pass for the given rectangle size and returns
// the finalized vertex buffer. The returned slice is owned by t and valid
// until the next Populate.
func (t *Text) Populate(extents Vec2) ([]Vertex, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	end := profiler.Start("richtext.Populate")
	defer end()

	if t.shaper == nil {
		return nil, ErrNoShaper
	}
	t.rescan()

	s := t.Settings
	shaped, err := t.shaper.Shape(t.markup.Tokens, GenerationSettings{
		Extents:     extents,
		FontSize:    s.FontSize,
		LineSpacing: s.LineSpacing,
		Alignment:   s.Alignment,
		Wrap:        s.Wrap,
		BestFit:     s.BestFit,
		MinSize:     s.MinSize,
		MaxSize:     s.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("richtext: shape: %w", err)
	}

	bestFit := float32(0)
	if s.BestFit {
		bestFit = shaped.FontSizeUsedForBestFit
	}
	res := Reconcile(ReconcileInput{
		Verts:         shaped.Verts,
		Placeholders:  t.ordinals,
		Objects:       t.markup.Tags,
		FontSize:      s.FontSize,
		BestFitSize:   bestFit,
		LineSpacing:   s.LineSpacing,
		UnitsPerPixel: s.UnitsPerPixel,
		Snap:          t.Snap,
		Params:        s.Params,
	})

	objs := t.registry.Objects()
	for i, o := range objs {
		o.Rect = res.Rects[i]
	}
	t.verts = res.Verts
	TrackLinks(t.links, t.verts)
	t.animator.Refresh(objs)
	return t.verts, nil
}

// Update advances animations by dt and applies finished frame loads. It
// reports whether the placements changed and need to be redrawn.
func (t *Text) Update(dt time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.animator.Interval = t.Settings.FrameInterval
	return t.animator.Advance(dt, t.registry.Objects())
}

// Reload resolves every current frame again, e.g. after the images behind
// the resolver changed on disk. It reports whether anything was redrawn.
func (t *Text) Reload() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	objs := t.registry.Objects()
	t.registry.Reload()
	changed := false
	for _, o := range objs {
		if t.animator.show(o) {
			changed = true
		}
	}
	return changed
}

// Click resolves a layout-local point to a link target and notifies OnLink.
func (t *Text) Click(p Vec2) (string, bool) {
	t.mu.Lock()
	l, ok := HitTest(t.links, p)
	cb := t.OnLink
	t.mu.Unlock()
	if !ok {
		return "", false
	}
	core.Logger().Info("richtext: link activated", "url", l.URL)
	if cb != nil {
		cb(l.URL)
	}
	return l.URL, true
}

// LinkAt returns the target of the link under p without activating it.
func (t *Text) LinkAt(p Vec2) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := HitTest(t.links, p)
	return l.URL, ok
}

// Placements returns the inline objects laid out by the last Populate.
func (t *Text) Placements() []Placement {
	t.mu.Lock()
	defer t.mu.Unlock()
	objs := t.registry.Objects()
	out := make([]Placement, 0, len(objs))
	for _, o := range objs {
		if !o.Rect.Placed {
			continue
		}
		out = append(out, Placement{
			Center: o.Rect.Position.Sub(Vec2{0, o.Rect.OffsetY}),
			Size:   o.Rect.Size,
			Frame:  o.displayed,
			Key:    o.Key(),
			State:  o.State(),
		})
	}
	return out
}

// Links returns a copy of the hyperlinks and their boxes.
func (t *Text) Links() []Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneLinks(t.links)
}

// Vertices returns a copy of the last vertex buffer.
func (t *Text) Vertices() []Vertex {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Vertex(nil), t.verts...)
}

// Stats summarizes the last pass for debug overlays.
type Stats struct {
	Quads     int
	Objects   int
	Animated  int
	Links     int
	LinkBoxes int
	IdleSlots int
}

func (t *Text) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Stats{Quads: len(t.verts) / 4, Objects: t.registry.Len(), Links: len(t.links), IdleSlots: t.registry.Idle()}
	for _, o := range t.registry.Objects() {
		if o.State() == Animating {
			st.Animated++
		}
	}
	for _, l := range t.links {
		st.LinkBoxes += len(l.Boxes)
	}
	return st
}
