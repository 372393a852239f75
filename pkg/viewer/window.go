// Package viewer shows a render in progress in a desktop window.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-tile-raytracer/pkg/renderer"
)

// ErrClosed is returned by Present once the window has been closed
var ErrClosed = errors.New("viewer window closed")

// Window is an ebiten game that displays the most recently presented frame.
// Present may be called from any goroutine; Run must be called from the main goroutine.
type Window struct {
	width, height int
	title         string

	mu       sync.Mutex
	pending  []byte
	dirty    bool
	progress renderer.Progress
	closed   bool

	// done is closed when the context passed to Run ends
	done  <-chan struct{}
	image *ebiten.Image
}

// NewWindow creates a window sized to the frames it will display
func NewWindow(width, height int, title string) *Window {
	return &Window{
		width:  max(1, width),
		height: max(1, height),
		title:  title,
	}
}

// Present stages frame for the next Draw
func (w *Window) Present(_ context.Context, frame *image.RGBA, progress renderer.Progress) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if frame.Rect.Dx() != w.width || frame.Rect.Dy() != w.height {
		return fmt.Errorf("frame is %dx%d, window is %dx%d", frame.Rect.Dx(), frame.Rect.Dy(), w.width, w.height)
	}

	if w.pending == nil {
		w.pending = make([]byte, len(frame.Pix))
	}
	copy(w.pending, frame.Pix)
	w.dirty = true
	w.progress = progress
	return nil
}

// Update closes the window on Escape or once the run context is cancelled
func (w *Window) Update() error {
	select {
	case <-w.done:
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

// Draw uploads a newly presented frame and draws it with a progress line
func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	if w.dirty {
		if w.image == nil {
			w.image = ebiten.NewImage(w.width, w.height)
		}
		w.image.WritePixels(w.pending)
		w.dirty = false
	}
	progress := w.progress
	w.mu.Unlock()

	if w.image != nil {
		screen.DrawImage(w.image, nil)
	}

	status := fmt.Sprintf("%d/%d workers finished", progress.Finished, progress.Workers)
	if progress.Done {
		status = "done"
	}
	ebitenutil.DebugPrint(screen, status)
}

// Layout keeps the logical screen at the render size
func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

// Run opens the window and blocks until it is closed or ctx is cancelled; onClose is called afterwards
func (w *Window) Run(ctx context.Context, onClose func()) error {
	w.done = ctx.Done()
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(w)

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	if onClose != nil {
		onClose()
	}

	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
