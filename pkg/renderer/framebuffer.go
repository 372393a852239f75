package renderer

import (
	"image"
	"image/color"
	"sync"
)

// Framebuffer is the shared pixel destination written by all workers.
// Pixels that were never written keep alpha 0.
type Framebuffer struct {
	mu  sync.Mutex
	img *image.RGBA
}

// NewFramebuffer creates a cleared framebuffer of the given size
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, max(0, width), max(0, height)))}
}

// Width returns the framebuffer width in pixels
func (f *Framebuffer) Width() int {
	return f.img.Rect.Dx()
}

// Height returns the framebuffer height in pixels
func (f *Framebuffer) Height() int {
	return f.img.Rect.Dy()
}

// SetPixel writes one pixel under the framebuffer lock; y grows downward
func (f *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	f.mu.Lock()
	f.img.SetRGBA(x, y, c)
	f.mu.Unlock()
}

// Snapshot returns a copy of the current contents, safe to use while rendering continues
func (f *Framebuffer) Snapshot() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := image.NewRGBA(f.img.Rect)
	copy(snapshot.Pix, f.img.Pix)
	return snapshot
}
