package richtext

import (
	"errors"
	"image"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monoShaper lays out every visible rune as a FontSize/2 wide, 3/4
// FontSize tall quad on a baseline. Lines are FontSize*LineSpacing apart and
// the first baseline sits one line below the origin.
type monoShaper struct {
	calls int
	err   error
}

func (m *monoShaper) Shape(tokens []Token, s GenerationSettings) (Shaped, error) {
	m.calls++
	if m.err != nil {
		return Shaped{}, m.err
	}
	adv := s.FontSize / 2
	lineH := s.FontSize * s.LineSpacing
	var out Shaped
	x, line := float32(0), float32(1)
	emit := func(w, h float32) {
		if s.Wrap && x > 0 && x+w > s.Extents.X {
			x, line = 0, line+1
		}
		out.Verts = append(out.Verts, quadAt(x, -line*lineH, w, h)...)
		x += w
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenText:
			for _, r := range tok.Text {
				if unicode.IsSpace(r) {
					x += adv
					continue
				}
				emit(adv, s.FontSize*3/4)
			}
		case TokenQuad:
			tag := ParseInlineTag(tok.Text, s.FontSize)
			emit(tag.RenderWidth(), tag.RenderHeight())
		}
	}
	if s.BestFit {
		out.FontSizeUsedForBestFit = float32(s.MinSize)
	}
	return out, nil
}

func newTestText(r Resolver) (*Text, *monoShaper) {
	sh := &monoShaper{}
	return New(sh, r, Settings{FontSize: 20, Wrap: true}), sh
}

func TestTextPopulatePlacesObjects(t *testing.T) {
	res := newFrames("smile")
	txt, _ := newTestText(res)
	txt.SetText("ab<quad size=40 displayKey=smile/>")

	verts, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	require.Len(t, verts, 8, "placeholder quad removed")

	p := txt.Placements()
	require.Len(t, p, 1)
	assert.Equal(t, "smile", p[0].Key)
	assert.Same(t, res.imgs["smile"], p[0].Frame)
	assert.Equal(t, V2(40, 40), p[0].Size)
	// Placeholder anchor (20, -20), half size 20, lowered by 4.6.
	assert.InDelta(t, 40, p[0].Center.X, 1e-5)
	assert.InDelta(t, -4.6, p[0].Center.Y, 1e-5)
	assert.InDelta(t, -24.6, verts[3].Pos.Y, 1e-5)

	b := p[0].Bounds()
	assert.InDelta(t, 20, b.Min.X, 1e-5)
	assert.InDelta(t, -24.6, b.Min.Y, 1e-5)
}

func TestTextPopulateIsIdempotent(t *testing.T) {
	txt, sh := newTestText(newFrames("a", "b"))
	src := "x <a href=u>link</a> <quad displayKey=a,b/> y"
	txt.SetText(src)

	v1, err := txt.Populate(V2(60, 100))
	require.NoError(t, err)
	v1 = append([]Vertex(nil), v1...)
	p1, l1 := txt.Placements(), txt.Links()

	txt.SetText(src)
	v2, err := txt.Populate(V2(60, 100))
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, p1, txt.Placements())
	assert.Equal(t, l1, txt.Links())
	assert.Equal(t, 2, sh.calls)
}

func TestTextKeepsAnimationAcrossRelayout(t *testing.T) {
	res := newFrames("a", "b", "c")
	txt, _ := newTestText(res)
	txt.SetText("<quad displayKey=a,b,c/>")
	_, err := txt.Populate(V2(100, 100))
	require.NoError(t, err)

	assert.True(t, txt.Update(DefaultFrameInterval))
	assert.Equal(t, "b", txt.Placements()[0].Key)

	// New surrounding text, same keys: the animation continues.
	txt.SetText("hi <quad displayKey=a,b,c/>")
	_, err = txt.Populate(V2(100, 100))
	require.NoError(t, err)
	assert.Equal(t, "b", txt.Placements()[0].Key)

	assert.False(t, txt.Update(DefaultFrameInterval/2))
	assert.True(t, txt.Update(DefaultFrameInterval/2))
	assert.Equal(t, "c", txt.Placements()[0].Key)
	assert.Equal(t, Animating, txt.Placements()[0].State)
}

func TestTextPlainTextShowsMarkupLiterally(t *testing.T) {
	res := newFrames("smile")
	txt, _ := newTestText(res)
	const src = "a <quad displayKey=smile/> <a href=u>b</a>"
	txt.SetText(src)
	_, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	require.Len(t, txt.Placements(), 1)
	require.Len(t, txt.Links(), 1)

	txt.Settings.PlainText = true
	verts, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	visible := 0
	for _, r := range src {
		if !unicode.IsSpace(r) {
			visible++
		}
	}
	assert.Len(t, verts, visible*4, "every markup rune is drawn")
	assert.Empty(t, txt.Placements())
	assert.Empty(t, txt.Links())
	st := txt.Stats()
	assert.Zero(t, st.Objects)
	assert.Equal(t, 1, st.IdleSlots, "the record went back to the pool")

	txt.Settings.PlainText = false
	_, err = txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	assert.Len(t, txt.Placements(), 1)
	assert.Len(t, txt.Links(), 1)
}

func TestTextLinks(t *testing.T) {
	txt, _ := newTestText(nil)
	var clicked []string
	txt.OnLink = func(url string) { clicked = append(clicked, url) }

	txt.SetText("<a href=https://x.io>abcd</a>")
	_, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	links := txt.Links()
	require.Len(t, links, 1)
	assert.Equal(t, []Rect{{Min: V2(0, -20), Size: V2(40, 15)}}, links[0].Boxes)

	// Narrow rect: two characters per line.
	_, err = txt.Populate(V2(25, 100))
	require.NoError(t, err)
	links = txt.Links()
	assert.Equal(t, []Rect{
		{Min: V2(0, -20), Size: V2(20, 15)},
		{Min: V2(0, -40), Size: V2(20, 15)},
	}, links[0].Boxes)

	url, ok := txt.Click(V2(5, -35))
	assert.True(t, ok)
	assert.Equal(t, "https://x.io", url)
	assert.Equal(t, []string{"https://x.io"}, clicked)

	_, ok = txt.Click(V2(500, 500))
	assert.False(t, ok)
	assert.Len(t, clicked, 1)

	url, ok = txt.LinkAt(V2(15, -10))
	assert.True(t, ok)
	assert.Equal(t, "https://x.io", url)
	assert.Len(t, clicked, 1)
}

func TestTextLinkAfterInlineObject(t *testing.T) {
	txt, _ := newTestText(nil)
	txt.SetText("a<quad size=10 displayKey=k/> <a href=one>b</a> <a href=two>cd</a>")
	_, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)

	links := txt.Links()
	require.Len(t, links, 2)
	// Finalized buffer: a b c d. The placeholder is gone.
	assert.Equal(t, []Rect{{Min: V2(30, -20), Size: V2(10, 15)}}, links[0].Boxes)
	assert.Equal(t, V2(20, 15), links[1].Boxes[0].Size)

	url, ok := txt.LinkAt(links[1].Boxes[0].Min)
	assert.True(t, ok)
	assert.Equal(t, "two", url)
}

func TestTextBestFitScalesObjects(t *testing.T) {
	sh := &monoShaper{}
	txt := New(sh, nil, Settings{FontSize: 20, BestFit: true, MinSize: 10, MaxSize: 20})
	txt.SetText("<quad displayKey=a/>")
	_, err := txt.Populate(V2(100, 100))
	require.NoError(t, err)
	p := txt.Placements()
	require.Len(t, p, 1)
	assert.Equal(t, V2(10, 10), p[0].Size)
}

func TestTextErrors(t *testing.T) {
	txt := New(nil, nil, Settings{})
	_, err := txt.Populate(V2(10, 10))
	assert.ErrorIs(t, err, ErrNoShaper)

	boom := errors.New("boom")
	txt = New(&monoShaper{err: boom}, nil, Settings{})
	txt.SetText("x")
	_, err = txt.Populate(V2(10, 10))
	assert.ErrorIs(t, err, boom)
}

func TestTextFontSizeChangeRescans(t *testing.T) {
	txt, _ := newTestText(nil)
	txt.SetText("<quad displayKey=a/>")
	_, err := txt.Populate(V2(100, 100))
	require.NoError(t, err)
	assert.Equal(t, V2(20, 20), txt.Placements()[0].Size)

	txt.Settings.FontSize = 30
	_, err = txt.Populate(V2(100, 100))
	require.NoError(t, err)
	assert.Equal(t, V2(30, 30), txt.Placements()[0].Size)
}

func TestTextStats(t *testing.T) {
	txt, _ := newTestText(newFrames("a", "b"))
	txt.SetText("xy <quad displayKey=a,b/><quad displayKey=a/> <a href=u>z</a>")
	_, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)
	assert.Equal(t, Stats{Quads: 3, Objects: 2, Animated: 1, Links: 1, LinkBoxes: 1}, txt.Stats())
	assert.Equal(t, "xy <quad displayKey=a,b/><quad displayKey=a/> <a href=u>z</a>", txt.Text())
}

func TestSettingsDefaults(t *testing.T) {
	var s Settings
	s.Defaults()
	assert.Equal(t, float32(24), s.FontSize)
	assert.Equal(t, float32(1), s.LineSpacing)
	assert.Equal(t, 24, s.MaxSize)
	assert.Equal(t, float32(1), s.UnitsPerPixel)
	assert.Equal(t, 100*time.Millisecond, s.FrameInterval)
	assert.Equal(t, DefaultParams(), s.Params)
}

func TestTextHelloWorldObject(t *testing.T) {
	txt, _ := newTestText(newFrames("a"))
	txt.SetText("Hello <quad displaykey=a size=40/> world")
	_, err := txt.Populate(V2(1000, 100))
	require.NoError(t, err)

	p := txt.Placements()
	require.Len(t, p, 1)
	assert.Equal(t, Static, p[0].State)
	assert.Equal(t, "a", p[0].Key)
	assert.Equal(t, V2(40, 40), p[0].Size)
	assert.Equal(t, 10, txt.Stats().Quads)
}

func TestTextReloadResolvesAgain(t *testing.T) {
	res := newFrames("smile")
	txt, _ := newTestText(res)
	txt.SetText("<quad displayKey=smile/>")
	_, err := txt.Populate(V2(100, 100))
	require.NoError(t, err)
	require.Equal(t, 1, res.calls["smile"])

	_, err = txt.Populate(V2(100, 100))
	require.NoError(t, err)
	assert.Equal(t, 1, res.calls["smile"], "frame cached across passes")

	fresh := image.NewRGBA(image.Rect(0, 0, 2, 2))
	res.imgs["smile"] = fresh
	assert.True(t, txt.Reload())
	assert.Equal(t, 2, res.calls["smile"])
	assert.Same(t, fresh, txt.Placements()[0].Frame)
}

func TestTextReloadKeepsFrameUntilResolved(t *testing.T) {
	res := newDeferred("smile")
	txt := New(&monoShaper{}, res, Settings{FontSize: 20})
	txt.SetText("<quad displayKey=smile/>")
	_, err := txt.Populate(V2(100, 100))
	require.NoError(t, err)
	res.finish("smile")
	require.True(t, txt.Update(0))
	old := txt.Placements()[0].Frame
	require.NotNil(t, old)

	assert.False(t, txt.Reload())
	assert.Same(t, old, txt.Placements()[0].Frame)
	res.finish("smile")
	assert.True(t, txt.Update(0))
}

func TestAlignmentText(t *testing.T) {
	var a Alignment
	require.NoError(t, a.UnmarshalText([]byte("Center")))
	assert.Equal(t, AlignCenter, a)
	b, err := AlignRight.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "right", string(b))
	assert.Error(t, a.UnmarshalText([]byte("justify")))
	assert.Equal(t, "Alignment(7)", Alignment(7).String())
}
