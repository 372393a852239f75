package renderer

import (
	"context"
	"errors"
	"image"
)

// Progress describes how far a render pass has come when a frame is presented
type Progress struct {
	Finished int  // Workers that have left their work loop
	Workers  int  // Workers in the pass
	Done     bool // Set on the final frame of the pass
}

// Surface is an external presentation target for framebuffer snapshots
type Surface interface {
	Present(ctx context.Context, frame *image.RGBA, progress Progress) error
}

// SurfaceFunc adapts a function to the Surface interface
type SurfaceFunc func(ctx context.Context, frame *image.RGBA, progress Progress) error

// Present calls f
func (f SurfaceFunc) Present(ctx context.Context, frame *image.RGBA, progress Progress) error {
	return f(ctx, frame, progress)
}

// MultiSurface presents every frame to each of its surfaces in order
type MultiSurface []Surface

// Present forwards the frame to all surfaces and joins their errors
func (m MultiSurface) Present(ctx context.Context, frame *image.RGBA, progress Progress) error {
	var errs []error
	for _, s := range m {
		if err := s.Present(ctx, frame, progress); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopSurface struct{}

func (nopSurface) Present(context.Context, *image.RGBA, Progress) error { return nil }
