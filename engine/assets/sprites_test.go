package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	img, ext, err := DecodeImage(pngBytes(t, 3, 2, color.White))
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, image.Pt(3, 2), img.Bounds().Size())

	_, _, err = DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 2, 6, 5))
	m := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 4, 3), m.Rect)
	assert.Len(t, m.Pix, 4*3*4)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, rgba, ToRGBA(rgba))
}

func TestSpriteLoaderResolve(t *testing.T) {
	l := NewSpriteLoaderFS(fstest.MapFS{
		"smile.png":     {Data: pngBytes(t, 8, 8, color.White)},
		"anim/f1.png":   {Data: pngBytes(t, 4, 4, color.Black)},
		"explicit.webp": {Data: pngBytes(t, 2, 2, color.Black)},
	})

	img, err := l.Resolve("smile")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 8), img.Bounds().Size())

	img, err = l.Resolve(" anim/f1 ")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 4), img.Bounds().Size())

	// The extension is only a lookup hint; the content is sniffed.
	_, err = l.Resolve("explicit.webp")
	require.NoError(t, err)

	assert.Equal(t, 3, l.Len())

	_, err = l.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Resolve("../escape")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, l.Len())
}

func TestSpriteLoaderInvalidate(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: pngBytes(t, 2, 2, color.White)}}
	l := NewSpriteLoaderFS(fsys)

	first, err := l.Resolve("a")
	require.NoError(t, err)
	again, err := l.Resolve("a")
	require.NoError(t, err)
	assert.Same(t, first, again)

	fsys["a.png"] = &fstest.MapFile{Data: pngBytes(t, 5, 5, color.White)}
	l.Invalidate("a")
	assert.Equal(t, 0, l.Len())

	img, err := l.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 5), img.Bounds().Size())

	l.Purge()
	assert.Equal(t, 0, l.Len())
}

func TestSpriteLoaderMaxEdge(t *testing.T) {
	l := NewSpriteLoaderFS(fstest.MapFS{
		"wide.png":  {Data: pngBytes(t, 40, 20, color.White)},
		"small.png": {Data: pngBytes(t, 6, 6, color.White)},
	})
	l.MaxEdge = 10

	img, err := l.Resolve("wide")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 5), img.Bounds().Size())

	img, err = l.Resolve("small")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(6, 6), img.Bounds().Size())
}

// gatedFS blocks opens of one file until the gate is closed.
type gatedFS struct {
	files fstest.MapFS
	name  string
	gate  chan struct{}
	opens atomic.Int32
}

func (g *gatedFS) Open(name string) (fs.File, error) {
	if name == g.name {
		g.opens.Add(1)
		<-g.gate
	}
	return g.files.Open(name)
}

func TestSpriteLoaderAsyncDedupe(t *testing.T) {
	g := &gatedFS{
		files: fstest.MapFS{"a.png": {Data: pngBytes(t, 2, 2, color.White)}},
		name:  "a.png",
		gate:  make(chan struct{}),
	}
	l := NewSpriteLoaderFS(g)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	imgs := make([]image.Image, n)
	for i := 0; i < n; i++ {
		i := i
		l.ResolveAsync("a", func(img image.Image, err error) {
			assert.NoError(t, err)
			imgs[i] = img
			wg.Done()
		})
	}
	close(g.gate)
	wg.Wait()

	assert.Equal(t, int32(1), g.opens.Load())
	for _, img := range imgs {
		assert.Same(t, imgs[0], img)
	}

	// Cached now: completes before returning.
	called := false
	l.ResolveAsync("a", func(img image.Image, err error) { called = err == nil && img != nil })
	assert.True(t, called)
}

func TestSpriteLoaderAsyncMiss(t *testing.T) {
	l := NewSpriteLoaderFS(fstest.MapFS{})
	errc := make(chan error, 1)
	l.ResolveAsync("nope", func(_ image.Image, err error) { errc <- err })
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("no completion")
	}
}

func TestSpriteLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "icon.png")
	require.NoError(t, os.WriteFile(file, pngBytes(t, 2, 2, color.White), 0o644))

	l := NewSpriteLoader(dir)
	_, err := l.Resolve("icon")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() { done <- l.Watch(ctx, func(k string) { changed <- k }) }()

	// The watcher may not be registered yet; keep touching the file.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	var key string
wait:
	for {
		select {
		case key = <-changed:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(file, pngBytes(t, 3, 3, color.White), 0o644))
		case <-deadline:
			t.Fatal("no change event")
		}
	}
	assert.Equal(t, "icon", key)

	img, err := l.Resolve("icon")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(3, 3), img.Bounds().Size())

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchWithoutRoot(t *testing.T) {
	l := NewSpriteLoaderFS(fstest.MapFS{})
	assert.Error(t, l.Watch(context.Background(), nil))
}
