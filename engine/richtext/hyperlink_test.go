package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackLinksSingleLine(t *testing.T) {
	verts := stream(quadAt(0, -20, 10, 15), quadAt(10, -20, 10, 15), quadAt(20, -20, 10, 15))
	links := []Link{{Start: 1, End: 3, URL: "u"}}
	TrackLinks(links, verts)

	require.Len(t, links[0].Boxes, 1)
	assert.Equal(t, Rect{Min: V2(10, -20), Size: V2(20, 15)}, links[0].Boxes[0])
}

func TestTrackLinksWrapped(t *testing.T) {
	verts := stream(
		quadAt(0, -20, 10, 15), quadAt(10, -20, 10, 15),
		quadAt(0, -40, 10, 15), quadAt(10, -40, 10, 15),
	)
	links := []Link{{Start: 0, End: 4, URL: "u"}}
	TrackLinks(links, verts)

	assert.Equal(t, []Rect{
		{Min: V2(0, -20), Size: V2(20, 15)},
		{Min: V2(0, -40), Size: V2(20, 15)},
	}, links[0].Boxes)
}

func TestTrackLinksWrappedBelowStart(t *testing.T) {
	// A centered second line starts right of the link's first glyph.
	verts := stream(
		quadAt(0, -20, 10, 15), quadAt(10, -20, 10, 15), quadAt(20, -20, 10, 15),
		quadAt(5, -40, 10, 15), quadAt(15, -40, 10, 15),
	)
	links := []Link{{Start: 0, End: 5}}
	TrackLinks(links, verts)
	assert.Equal(t, []Rect{
		{Min: V2(0, -20), Size: V2(30, 15)},
		{Min: V2(5, -40), Size: V2(20, 15)},
	}, links[0].Boxes)
}

func TestTrackLinksJumpLeftOfPreviousQuad(t *testing.T) {
	// The link starts mid-line; the wrapped line restarts at the same x.
	verts := stream(
		quadAt(30, -20, 10, 15), quadAt(40, -20, 10, 15),
		quadAt(30, -22, 10, 15),
	)
	links := []Link{{Start: 0, End: 3}}
	TrackLinks(links, verts)
	require.Len(t, links[0].Boxes, 2)
	assert.Equal(t, Rect{Min: V2(30, -22), Size: V2(10, 15)}, links[0].Boxes[1])
}

func TestTrackLinksShearedGlyphs(t *testing.T) {
	// Italic quads lean right: the top corners sit right of the bottom ones.
	lean := func(x float32) []Vertex {
		q := quadAt(x, -20, 10, 15)
		q[0].Pos.X += 3
		q[1].Pos.X += 3
		return q
	}
	links := []Link{{Start: 0, End: 2}}
	TrackLinks(links, stream(lean(0), lean(10)))
	require.Len(t, links[0].Boxes, 1)
	assert.Equal(t, Rect{Min: V2(0, -20), Size: V2(23, 15)}, links[0].Boxes[0])
}

func TestTrackLinksOutOfRange(t *testing.T) {
	verts := quadAt(0, 0, 10, 10)
	links := []Link{
		{Start: 3, End: 5},
		{Start: 0, End: 0},
		{Start: 0, End: 9},
	}
	TrackLinks(links, verts)
	assert.Empty(t, links[0].Boxes)
	assert.Empty(t, links[1].Boxes)
	assert.Len(t, links[2].Boxes, 1)
}

func TestTrackLinksRebuildsBoxes(t *testing.T) {
	links := []Link{{Start: 0, End: 1}}
	TrackLinks(links, quadAt(0, 0, 10, 10))
	TrackLinks(links, quadAt(5, 5, 10, 10))
	assert.Equal(t, []Rect{{Min: V2(5, 5), Size: V2(10, 10)}}, links[0].Boxes)
}

func TestHitTest(t *testing.T) {
	links := []Link{
		{URL: "a", Boxes: []Rect{{Min: V2(0, 0), Size: V2(10, 10)}}},
		{URL: "b", Boxes: []Rect{{Min: V2(0, -20), Size: V2(5, 5)}, {Min: V2(20, 0), Size: V2(5, 5)}}},
	}

	l, ok := HitTest(links, V2(0, 0))
	assert.True(t, ok)
	assert.Equal(t, "a", l.URL)

	l, ok = HitTest(links, V2(22, 3))
	assert.True(t, ok)
	assert.Equal(t, "b", l.URL)

	_, ok = HitTest(links, V2(10, 5))
	assert.False(t, ok, "max edge is exclusive")

	_, ok = HitTest(links, V2(100, 100))
	assert.False(t, ok)

	_, ok = HitTest(nil, V2(0, 0))
	assert.False(t, ok)
}
