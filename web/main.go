package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/logging"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
	"github.com/df07/go-tile-raytracer/web/server"
)

func main() {
	cfg := config.Default()
	port := pflag.Int("port", 8080, "Port to serve on")
	pflag.IntVar(&cfg.Scene, "scene", cfg.Scene, "scene id")
	pflag.IntVar(&cfg.Width, "width", cfg.Width, "image width")
	pflag.IntVar(&cfg.Samples, "samples", cfg.Samples, "samples per pixel")
	pflag.IntVar(&cfg.Depth, "depth", cfg.Depth, "maximum ray bounces")
	pflag.Parse()

	level := logging.LevelFromFlags(false, true, false)
	logger := previewLogger(os.Stderr, level, nil)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, _ := scene.New(cfg.Scene, rand.New(rand.NewSource(time.Now().UnixNano())))
	preview := server.NewServer(fmt.Sprintf(":%d", *port), sc, cfg.Width, cfg.Height(), logger)
	logger = previewLogger(os.Stderr, level, preview.ConsoleHandler)
	logger.Info("Tile Raytracer Web Server", "url", fmt.Sprintf("http://localhost:%d/api/stream", *port))

	pass, err := renderer.NewRenderPass(cfg.PassConfig(), sc,
		renderer.WithSurface(preview),
		renderer.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Cannot start render", "error", err)
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return preview.Start(groupCtx) })
	group.Go(func() error {
		if _, err := pass.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("Error running server", "error", err)
		stop()
		os.Exit(1)
	}
}

// previewLogger writes to w and, when console is set, also to the stream's console messages
func previewLogger(w io.Writer, level slog.Level, console func(slog.Leveler) slog.Handler) *slog.Logger {
	logger := logging.New(w, level)
	if console != nil {
		logger = slog.New(logging.Fanout(logger.Handler(), console(level)))
	}
	return logger
}
