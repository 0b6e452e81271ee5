package ui

import (
	"image"

	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
)

type imageEntry struct {
	tex  core.Texture
	used bool
}

// ImageCache uploads images once and frees the textures of images that
// were not drawn since the previous Sweep. Keys are compared by identity, so
// a new frame image always gets a new texture.
type ImageCache struct {
	Filter  string
	entries map[image.Image]*imageEntry
}

func NewImageCache() *ImageCache {
	return &ImageCache{Filter: "linear", entries: make(map[image.Image]*imageEntry)}
}

// Texture returns the texture for img, uploading it on first use.
func (c *ImageCache) Texture(r2d *renderer2d.Renderer2D, img image.Image) (core.Texture, error) {
	if e, ok := c.entries[img]; ok {
		e.used = true
		return e.tex, nil
	}
	tex, err := r2d.UploadImage(img, c.Filter)
	if err != nil {
		return nil, err
	}
	c.entries[img] = &imageEntry{tex: tex, used: true}
	return tex, nil
}

// Sweep frees unused textures and starts a new round. Call it once per
// frame after the scene has been flushed.
func (c *ImageCache) Sweep(r2d *renderer2d.Renderer2D) {
	for img, e := range c.entries {
		if !e.used {
			r2d.DeleteTexture(e.tex)
			delete(c.entries, img)
			continue
		}
		e.used = false
	}
}

// Release frees every texture.
func (c *ImageCache) Release(r2d *renderer2d.Renderer2D) {
	for img, e := range c.entries {
		r2d.DeleteTexture(e.tex)
		delete(c.entries, img)
	}
}

func (c *ImageCache) Len() int { return len(c.entries) }
