package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// ErrInvalidPass is returned when a pass is configured with a non-positive dimension
var ErrInvalidPass = errors.New("invalid render pass")

// PassConfig contains configuration for a single render pass
type PassConfig struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	SamplesPerPixel int           // Camera rays averaged per pixel
	MaxDepth        int           // Recursion budget per camera ray
	Workers         int           // Number of parallel workers (0 = DefaultWorkers)
	Seed            int64         // Base sampler seed (0 = seed from the clock)
	RefreshInterval time.Duration // Time between presented frames (0 = 1s)
}

// DefaultPassConfig returns the settings the CLI uses when nothing is given
func DefaultPassConfig() PassConfig {
	return PassConfig{
		Width:           400,
		Height:          266,
		SamplesPerPixel: 50,
		MaxDepth:        50,
		Workers:         0,
		RefreshInterval: time.Second,
	}
}

// DefaultWorkers leaves two cores free for the presentation surfaces
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-2)
}

// SamplerFactory returns the sampler owned by worker id
type SamplerFactory func(workerID int) core.Sampler

// Option customises a RenderPass
type Option func(*RenderPass)

// WithSurface presents periodic frames to surface
func WithSurface(surface Surface) Option {
	return func(rp *RenderPass) { rp.surface = surface }
}

// WithLogger sets the logger used for progress messages
func WithLogger(logger *slog.Logger) Option {
	return func(rp *RenderPass) { rp.logger = logger }
}

// WithSamplerFactory replaces the seeded per-worker samplers
func WithSamplerFactory(factory SamplerFactory) Option {
	return func(rp *RenderPass) { rp.samplers = factory }
}

// WithIntegrator replaces the path tracing integrator built from MaxDepth
func WithIntegrator(integratorInst integrator.Integrator) Option {
	return func(rp *RenderPass) { rp.integrator = integratorInst }
}

// RenderPass renders one scene once, splitting rows between workers.
// The scheduler, completion counter and framebuffer belong to the pass.
type RenderPass struct {
	scene       *scene.Scene
	config      PassConfig
	scheduler   *TileScheduler
	framebuffer *Framebuffer
	integrator  integrator.Integrator
	surface     Surface
	samplers    SamplerFactory
	logger      *slog.Logger
	finished    atomic.Int32 // CompletionCounter: workers that left their loop
}

// NewRenderPass creates a pass over sc; it does not start rendering
func NewRenderPass(config PassConfig, sc *scene.Scene, opts ...Option) (*RenderPass, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidPass, config.Width, config.Height)
	}
	if config.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("%w: samples per pixel %d", ErrInvalidPass, config.SamplesPerPixel)
	}
	if config.MaxDepth <= 0 {
		return nil, fmt.Errorf("%w: max depth %d", ErrInvalidPass, config.MaxDepth)
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers()
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = time.Second
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	rp := &RenderPass{
		scene:       sc,
		config:      config,
		scheduler:   NewTileScheduler(config.Height, config.Width, config.Workers),
		framebuffer: NewFramebuffer(config.Width, config.Height),
		integrator:  integrator.NewPathTracingIntegrator(config.MaxDepth),
		surface:     nopSurface{},
		logger:      slog.Default(),
	}
	seed := config.Seed
	rp.samplers = func(workerID int) core.Sampler {
		return core.NewSeededSampler(seed + int64(workerID))
	}

	for _, opt := range opts {
		opt(rp)
	}
	return rp, nil
}

// Config returns the effective configuration after defaults were applied
func (rp *RenderPass) Config() PassConfig {
	return rp.config
}

// Framebuffer returns the pass's shared pixel destination
func (rp *RenderPass) Framebuffer() *Framebuffer {
	return rp.framebuffer
}

// Finished returns how many workers have left their work loop
func (rp *RenderPass) Finished() int {
	return int(rp.finished.Load())
}

// Run renders the pass to completion or until ctx is cancelled.
// Workers check ctx between tiles, so a cancelled pass leaves every written pixel whole.
func (rp *RenderPass) Run(ctx context.Context) (RenderStats, error) {
	start := time.Now()
	workers := rp.config.Workers
	perWorker := make([]WorkerStats, workers)

	rp.logger.Info("Starting render",
		"scene", rp.scene.Name,
		"width", rp.config.Width,
		"height", rp.config.Height,
		"samples", rp.config.SamplesPerPixel,
		"depth", rp.config.MaxDepth,
		"workers", workers,
		"primitives", rp.scene.GetPrimitiveCount())

	group, groupCtx := errgroup.WithContext(ctx)
	for id := 0; id < workers; id++ {
		perWorker[id].ID = id
		group.Go(func() error {
			defer rp.finished.Add(1)
			return rp.work(groupCtx, &perWorker[id])
		})
	}

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- group.Wait()
	}()

	err := rp.monitor(ctx, workersDone)

	stats := RenderStats{
		Workers:    workers,
		TotalTiles: rp.scheduler.Claimed(),
		Elapsed:    time.Since(start),
		PerWorker:  perWorker,
		Cancelled:  err != nil,
	}
	for _, w := range perWorker {
		stats.TotalPixels += w.Pixels
		stats.TotalSamples += w.Samples
	}

	if err != nil {
		rp.logger.Warn("Render stopped early", "error", err, "elapsed", stats.Elapsed)
		return stats, err
	}

	rp.logger.Info("Render complete",
		"elapsed", stats.Elapsed,
		"tiles", stats.TotalTiles,
		"avgSamples", stats.AverageSamples())
	return stats, nil
}

// work is the loop run by each worker until the scheduler runs dry
func (rp *RenderPass) work(ctx context.Context, stats *WorkerStats) error {
	tr := NewTileRenderer(rp.scene, rp.integrator, rp.framebuffer, rp.config.SamplesPerPixel)
	sampler := rp.samplers(stats.ID)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tile := rp.scheduler.NextTile()
		if tile.Done {
			return nil
		}

		stats.add(tr.RenderTile(tile, sampler))
		rp.logger.Debug("Tile rendered", "worker", stats.ID, "rows", fmt.Sprintf("%d-%d", tile.RowStart, tile.RowEnd))
	}
}

// monitor presents a snapshot on every tick until the workers are done, then presents the final frame
func (rp *RenderPass) monitor(ctx context.Context, workersDone <-chan error) error {
	ticker := time.NewTicker(rp.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-workersDone:
			rp.logger.Info("Finished threads", "finished", rp.Finished(), "workers", rp.config.Workers)
			rp.present(ctx, true)
			return err
		case <-ticker.C:
			rp.logger.Info("Finished threads", "finished", rp.Finished(), "workers", rp.config.Workers)
			rp.present(ctx, false)
		}
	}
}

func (rp *RenderPass) present(ctx context.Context, done bool) {
	frame := rp.framebuffer.Snapshot()
	progress := Progress{
		Finished: rp.Finished(),
		Workers:  rp.config.Workers,
		Done:     done,
	}

	// The final frame still goes out after cancellation so surfaces can show the partial image
	presentCtx := ctx
	if done {
		presentCtx = context.WithoutCancel(ctx)
	}
	if err := rp.surface.Present(presentCtx, frame, progress); err != nil {
		rp.logger.Warn("Failed to present frame", "error", err)
	}
	if done {
		rp.logger.Debug("Final frame", "luminance", CalculateAverageLuminance(frame))
	}
}
