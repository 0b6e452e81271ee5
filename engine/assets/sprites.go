package assets

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/richtext"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when no file exists for a sprite key.
var ErrNotFound = errors.New("assets: sprite not found")

// SpriteLoader resolves inline-object keys to images under a root directory.
// A key maps to "<root>/<key>.<ext>" for the first existing extension of
// ImageExts; keys that already carry an extension are used as is. Results
// are cached until invalidated, and concurrent loads of one key share a
// single read.
//
// SpriteLoader is safe for concurrent use.
type SpriteLoader struct {
	Root string
	// MaxEdge, if positive, downsizes images whose larger side exceeds it.
	MaxEdge int

	fsys  fs.FS
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]image.Image
	gen   map[string]uint64
}

var (
	_ richtext.Resolver      = (*SpriteLoader)(nil)
	_ richtext.AsyncResolver = (*SpriteLoader)(nil)
)

func NewSpriteLoader(root string) *SpriteLoader {
	return &SpriteLoader{
		Root:  root,
		fsys:  os.DirFS(root),
		cache: make(map[string]image.Image),
		gen:   make(map[string]uint64),
	}
}

// NewSpriteLoaderFS loads sprites from fsys instead of the file system. The
// loader cannot be watched.
func NewSpriteLoaderFS(fsys fs.FS) *SpriteLoader {
	return &SpriteLoader{
		fsys:  fsys,
		cache: make(map[string]image.Image),
		gen:   make(map[string]uint64),
	}
}

// Resolve implements richtext.Resolver.
func (l *SpriteLoader) Resolve(key string) (image.Image, error) {
	key = normalizeKey(key)
	if img, ok := l.cached(key); ok {
		return img, nil
	}
	v, err, _ := l.group.Do(key, func() (any, error) { return l.load(key) })
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// ResolveAsync implements richtext.AsyncResolver. Cached images complete
// synchronously; everything else loads on its own goroutine.
func (l *SpriteLoader) ResolveAsync(key string, done func(image.Image, error)) {
	key = normalizeKey(key)
	if img, ok := l.cached(key); ok {
		done(img, nil)
		return
	}
	ch := l.group.DoChan(key, func() (any, error) { return l.load(key) })
	go func() {
		res := <-ch
		if res.Err != nil {
			done(nil, res.Err)
			return
		}
		done(res.Val.(image.Image), nil)
	}()
}

// Invalidate drops the cached image for key. A load of key in flight is not
// cached when it completes.
func (l *SpriteLoader) Invalidate(key string) {
	key = normalizeKey(key)
	l.mu.Lock()
	delete(l.cache, key)
	l.gen[key]++
	l.mu.Unlock()
	l.group.Forget(key)
	core.Logger().Debug("assets: sprite invalidated", "key", key)
}

// Purge empties the cache.
func (l *SpriteLoader) Purge() {
	l.mu.Lock()
	for k := range l.cache {
		l.gen[k]++
	}
	clear(l.cache)
	l.mu.Unlock()
}

// Len returns the number of cached images.
func (l *SpriteLoader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

func (l *SpriteLoader) cached(key string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.cache[key]
	return img, ok
}

func (l *SpriteLoader) load(key string) (image.Image, error) {
	l.mu.RLock()
	gen := l.gen[key]
	l.mu.RUnlock()

	name, data, err := l.read(key)
	if err != nil {
		core.Logger().Debug("assets: sprite miss", "key", key, "err", err)
		return nil, err
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("sprite %q: %s: %w", key, name, err)
	}
	img = fitEdge(img, l.MaxEdge)

	l.mu.Lock()
	if l.gen[key] == gen {
		l.cache[key] = img
	}
	l.mu.Unlock()
	return img, nil
}

func (l *SpriteLoader) read(key string) (string, []byte, error) {
	if key == "" || key == "." || !fs.ValidPath(key) {
		return "", nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if path.Ext(key) != "" {
		b, err := fs.ReadFile(l.fsys, key)
		if err == nil {
			return key, b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("sprite %q: %w", key, err)
		}
	}
	for _, ext := range ImageExts {
		name := key + ext
		b, err := fs.ReadFile(l.fsys, name)
		if err == nil {
			return name, b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("sprite %q: %w", key, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrNotFound, key)
}

// keysForPath maps a file under the loader root back to the keys that may
// have cached it: with and without its extension.
func (l *SpriteLoader) keysForPath(p string) []string {
	rel, err := filepath.Rel(l.Root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{rel, strings.TrimSuffix(rel, path.Ext(rel))}
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(path.Clean(strings.TrimSpace(filepath.ToSlash(key))), "/")
}

// fitEdge scales img down so its larger side is at most edge.
func fitEdge(img image.Image, edge int) image.Image {
	if edge <= 0 {
		return img
	}
	sz := img.Bounds().Size()
	if sz.X <= edge && sz.Y <= edge {
		return img
	}
	w, h := edge, edge
	if sz.X > sz.Y {
		h = max(1, sz.Y*edge/sz.X)
	} else {
		w = max(1, sz.X*edge/sz.Y)
	}
	return transform.Resize(img, w, h, transform.Linear)
}
