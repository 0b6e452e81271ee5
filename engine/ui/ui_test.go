package ui

import (
	"image"
	"testing"
	"unicode"

	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
	"github.com/hubastard/quadtext/engine/richtext"
	"github.com/hubastard/quadtext/engine/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

type fakeHandle struct{ id int }

type fakeRenderer struct {
	next    int
	created int
	deleted []core.Texture
}

func (f *fakeRenderer) handle() *fakeHandle { f.next++; return &fakeHandle{f.next} }

func (f *fakeRenderer) Init() error              { return nil }
func (f *fakeRenderer) Resize(w, h int)          {}
func (f *fakeRenderer) Clear(r, g, b, a float32) {}
func (f *fakeRenderer) CreatePipeline(core.PipelineDesc) (core.Pipeline, error) {
	return f.handle(), nil
}
func (f *fakeRenderer) CreateTexture(core.TextureDesc) (core.Texture, error) {
	f.created++
	return f.handle(), nil
}
func (f *fakeRenderer) DeleteTexture(t core.Texture)                    { f.deleted = append(f.deleted, t) }
func (f *fakeRenderer) CreateMesh(core.MeshDesc) (core.Mesh, error)     { return f.handle(), nil }
func (f *fakeRenderer) UpdateMesh(core.Mesh, []float32, []uint32) error { return nil }
func (f *fakeRenderer) Draw(core.DrawCmd)                               {}
func (f *fakeRenderer) GPUVendor() string                               { return "fake" }
func (f *fakeRenderer) GPURenderer() string                             { return "fake" }
func (f *fakeRenderer) GPUVersion() string                              { return "0" }
func (f *fakeRenderer) Shutdown()                                       {}

func newTestContext(t *testing.T) (*Context, *fakeRenderer) {
	t.Helper()
	fr := &fakeRenderer{}
	r2d, err := renderer2d.New(fr, "vs", "fs", 64)
	require.NoError(t, err)
	return &Context{
		Viewport: [4]float32{100, 50, 400, 300},
		Renderer: r2d,
		Images:   NewImageCache(),
	}, fr
}

// gridShaper lays every rune out on a 10 px grid on one line with the
// baseline at y = -10.
type gridShaper struct{}

func box(v []richtext.Vertex, x, w, h float32) []richtext.Vertex {
	const base = -10
	return append(v,
		richtext.Vertex{Pos: richtext.V2(x, base+h)},
		richtext.Vertex{Pos: richtext.V2(x+w, base+h)},
		richtext.Vertex{Pos: richtext.V2(x+w, base)},
		richtext.Vertex{Pos: richtext.V2(x, base)},
	)
}

func (gridShaper) Shape(tokens []richtext.Token, gs richtext.GenerationSettings) (richtext.Shaped, error) {
	var out []richtext.Vertex
	x := float32(0)
	for _, tok := range tokens {
		switch tok.Kind {
		case richtext.TokenText:
			for _, r := range tok.Text {
				if !unicode.IsSpace(r) {
					out = box(out, x, 10, 10)
				}
				x += 10
			}
		case richtext.TokenQuad:
			tag := richtext.ParseInlineTag(tok.Text, gs.FontSize)
			out = box(out, x, tag.RenderWidth(), tag.RenderHeight())
			x += tag.RenderWidth()
		}
	}
	return richtext.Shaped{Verts: out}, nil
}

func TestBaseContains(t *testing.T) {
	var b Base
	b.SetPos(10, 20)
	b.SetSize(30, 40)
	assert.True(t, b.Contains(10, 20))
	assert.True(t, b.Contains(39.9, 59.9))
	assert.False(t, b.Contains(40, 30))
	assert.False(t, b.Contains(20, 60))
	assert.False(t, b.Contains(9.9, 30))
}

func TestDispatchButton(t *testing.T) {
	ctx, _ := newTestContext(t)
	fr := &fakeRenderer{}
	font, err := text.NewFont(goregular.TTF, 16)
	require.NoError(t, err)
	require.NoError(t, font.Upload(fr))
	ctx.DefaultFont = font

	clicks := 0
	btn := Button("ok").OnClick(func() { clicks++ })
	root := View(btn).Padding(10)
	ctx.Renderer.BeginScene([16]float32{})
	root.Draw(ctx)
	ctx.Renderer.EndScene()

	bx, by := btn.Node().Pos()
	assert.Equal(t, float32(110), bx)
	assert.Equal(t, float32(60), by)

	assert.True(t, Dispatch(ctx, root, PointerEvent{Kind: PointerDown, X: bx + 1, Y: by + 1, Button: core.MouseLeft}))
	assert.Equal(t, 1, clicks)

	assert.False(t, Dispatch(ctx, root, PointerEvent{Kind: PointerDown, X: bx + 1, Y: by + 1, Button: core.MouseRight}))
	assert.False(t, Dispatch(ctx, root, PointerEvent{Kind: PointerDown, X: 101, Y: 51, Button: core.MouseLeft}), "padding area has no handler")
	assert.False(t, Dispatch(ctx, root, PointerEvent{Kind: PointerDown, X: 0, Y: 0, Button: core.MouseLeft}))
	assert.Equal(t, 1, clicks)
}

func TestImageCache(t *testing.T) {
	ctx, fr := newTestContext(t)
	base := fr.created
	c := ctx.Images
	a := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))

	ta, err := c.Texture(ctx.Renderer, a)
	require.NoError(t, err)
	again, err := c.Texture(ctx.Renderer, a)
	require.NoError(t, err)
	assert.Same(t, ta, again)
	_, err = c.Texture(ctx.Renderer, b)
	require.NoError(t, err)
	assert.Equal(t, base+2, fr.created)

	c.Sweep(ctx.Renderer) // both used this round
	assert.Equal(t, 2, c.Len())

	_, err = c.Texture(ctx.Renderer, a)
	require.NoError(t, err)
	c.Sweep(ctx.Renderer) // b unused
	assert.Equal(t, 1, c.Len())
	assert.Len(t, fr.deleted, 1)

	c.Release(ctx.Renderer)
	assert.Zero(t, c.Len())
	assert.Len(t, fr.deleted, 2)
}

func TestRichTextLinkClick(t *testing.T) {
	ctx, _ := newTestContext(t)
	rt := richtext.New(gridShaper{}, nil, richtext.Settings{})
	rt.SetText("go <a href=x>here</a>")
	var clicked string
	rt.OnLink = func(url string) { clicked = url }

	var hovered []string
	w := RichText(rt).OnHover(func(url string) { hovered = append(hovered, url) })
	w.Draw(ctx)
	require.NoError(t, w.Err())

	x, y := w.Node().Pos()
	assert.Equal(t, [2]float32{100, 50}, [2]float32{x, y})
	bw, bh := w.Node().Size()
	assert.Equal(t, float32(70), bw)
	assert.Equal(t, float32(10), bh)

	assert.False(t, Dispatch(ctx, w, PointerEvent{Kind: PointerMove, X: 135, Y: 55}))
	assert.False(t, Dispatch(ctx, w, PointerEvent{Kind: PointerMove, X: 105, Y: 55}))
	assert.Equal(t, []string{"x", ""}, hovered)

	assert.False(t, Dispatch(ctx, w, PointerEvent{Kind: PointerDown, X: 105, Y: 55, Button: core.MouseLeft}))
	assert.Empty(t, clicked)
	assert.True(t, Dispatch(ctx, w, PointerEvent{Kind: PointerDown, X: 135, Y: 55, Button: core.MouseLeft}))
	assert.Equal(t, "x", clicked)
}

type countingShaper struct {
	gridShaper
	calls *int
}

func (c countingShaper) Shape(tokens []richtext.Token, gs richtext.GenerationSettings) (richtext.Shaped, error) {
	*c.calls++
	return c.gridShaper.Shape(tokens, gs)
}

func TestRichTextSnapsWithoutRelayout(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Snap = func(x, y float32) (float32, float32) { return float32(int(x)), float32(int(y)) }

	var calls int
	rt := richtext.New(countingShaper{calls: &calls}, nil, richtext.Settings{})
	rt.SetText("go <a href=x>here</a>")
	w := RichText(rt).Padding4(0.5, 0.25, 0, 0)

	ctx.Renderer.BeginScene([16]float32{})
	w.Draw(ctx)
	ctx.Renderer.EndScene()
	require.NoError(t, w.Err())
	assert.Equal(t, 1, calls, "one shaping pass per frame")

	ox, oy := w.origin()
	assert.Equal(t, [2]float32{100, 50}, [2]float32{ox, oy})
	url, ok := rt.LinkAt(w.toLocal(135, 55))
	assert.True(t, ok)
	assert.Equal(t, "x", url)
}

func TestRichTextDrawsGlyphsAndImages(t *testing.T) {
	ctx, fr := newTestContext(t)
	font, err := text.NewFont(goregular.TTF, 16)
	require.NoError(t, err)
	require.NoError(t, font.Upload(fr))
	ctx.DefaultFont = font
	ctx.Snap = func(x, y float32) (float32, float32) { return x, y }

	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	resolve := richtext.ResolverFunc(func(string) (image.Image, error) { return frame, nil })
	rt := richtext.New(gridShaper{}, resolve, richtext.Settings{})
	rt.SetText("a<quad displaykey=k size=20/>")

	w := RichText(rt)
	ctx.Renderer.BeginScene([16]float32{})
	w.Draw(ctx)
	ctx.Renderer.EndScene()
	require.NoError(t, w.Err())

	assert.Equal(t, 2, ctx.Renderer.Stats().QuadCount, "one glyph and one inline image")
	assert.Equal(t, 1, ctx.Images.Len())

	bw, bh := w.Node().Size()
	assert.Equal(t, float32(30), bw, "the inline object widens the content")
	assert.Equal(t, float32(10), bh)
}

func TestViewPlacesNestedRichText(t *testing.T) {
	ctx, _ := newTestContext(t)
	rt := richtext.New(gridShaper{}, nil, richtext.Settings{})
	rt.SetText("go <a href=x>here</a>")
	w := RichText(rt)
	inner := View(w).Padding(5)
	root := View(Label("title").HeightFixed(20), inner).
		Padding(8).
		Gap(4).
		FlowDirection(LayoutVertical)

	ctx.Renderer.BeginScene([16]float32{})
	root.Draw(ctx)
	ctx.Renderer.EndScene()

	assert.Same(t, UIElement(inner), w.Node().Parent())
	ix, iy := inner.Node().Pos()
	assert.Equal(t, [2]float32{108, 82}, [2]float32{ix, iy})
	x, y := w.Node().Pos()
	assert.Equal(t, [2]float32{113, 87}, [2]float32{x, y}, "moved along with its parent")

	got, ok := rt.LinkAt(richtext.V2(35, -5))
	require.True(t, ok)
	assert.Equal(t, "x", got)
	assert.True(t, Dispatch(ctx, root, PointerEvent{Kind: PointerDown, X: x + 35, Y: y + 5, Button: core.MouseLeft}))
}

func TestViewAlignment(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := View().Size(40, 10).WidthFixed(40).HeightFixed(10)
	b := View().WidthFixed(20).HeightFixed(10)
	root := View(a, b).
		WidthFixed(200).
		HeightFixed(30).
		Gap(0).
		AlignMain(AlignEnd).
		AlignCross(AlignCenter)
	root.Draw(ctx)

	ax, ay := a.Node().Pos()
	bx, by := b.Node().Pos()
	assert.Equal(t, [2]float32{240, 60}, [2]float32{ax, ay})
	assert.Equal(t, [2]float32{280, 60}, [2]float32{bx, by})
}

func TestLabelWithoutFontKeepsFixedSize(t *testing.T) {
	ctx, _ := newTestContext(t)
	require.Nil(t, ctx.DefaultFont)

	l := Label("title").HeightFixed(20).Padding4(3, 0, 0, 0)
	res := l.Layout(ctx, Constraints{Max: [2]float32{400, 300}})
	assert.Equal(t, [2]float32{3, 20}, res.Size)
	assert.Empty(t, l.lines)

	below := View()
	root := View(l, below).Gap(0).FlowDirection(LayoutVertical)
	root.Draw(ctx)
	_, ly := l.Node().Pos()
	_, by := below.Node().Pos()
	assert.Equal(t, ly+20, by)
}

func TestLabelLines(t *testing.T) {
	ctx, fr := newTestContext(t)
	font, err := text.NewFont(goregular.TTF, 16)
	require.NoError(t, err)
	require.NoError(t, font.Upload(fr))
	ctx.DefaultFont = font
	lh := font.LineHeight()

	l := Label("one\ntwo")
	res := l.Layout(ctx, Constraints{Max: [2]float32{400, 300}})
	assert.InDelta(t, 2*lh, res.Size[1], 1e-3)
	assert.Equal(t, []string{"one", "two"}, l.lines)

	l = Label("alpha beta gamma").MaxWidth(70)
	res = l.Layout(ctx, Constraints{Max: [2]float32{400, 300}})
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, l.lines)
	assert.LessOrEqual(t, res.Size[0], float32(70))

	l = Label("alpha beta gamma").Padding(4)
	res = l.Layout(ctx, Constraints{Max: [2]float32{40, 300}})
	assert.Len(t, l.lines, 1, "no wrapping unless asked")
	assert.InDelta(t, lh+8, res.Size[1], 1e-3)

	ctx.Renderer.BeginScene([16]float32{})
	l.Draw(ctx)
	ctx.Renderer.EndScene()
	assert.Equal(t, 14, ctx.Renderer.Stats().QuadCount, "one quad per visible rune")
}
