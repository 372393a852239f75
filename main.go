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
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/export"
	"github.com/df07/go-tile-raytracer/pkg/logging"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
	"github.com/df07/go-tile-raytracer/pkg/viewer"
	"github.com/df07/go-tile-raytracer/web/server"
)

// options holds the flags that are not part of the render configuration
type options struct {
	configFile string
	list       bool
	verbose    bool
	debug      bool
	quiet      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// cli is the root command together with the values its flags are bound to
type cli struct {
	cmd        *cobra.Command
	opts       options
	flagValues config.Config
}

func newRootCommand() *cobra.Command {
	return newCLI().cmd
}

func newCLI() *cli {
	c := &cli{flagValues: config.Default()}

	c.cmd = &cobra.Command{
		Use:   "raytracer [scene width samples depth]",
		Short: "Tiled CPU ray tracer",
		Long: `Renders one of the built-in scenes with a recursive path tracer,
splitting image rows between worker goroutines, and saves the result.

Positional arguments override the config file; flags override both.`,
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.opts.list {
				return listScenes(cmd.OutOrStdout())
			}

			cfg, err := c.resolve(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, c.opts, cmd.ErrOrStderr())
		},
	}

	flagValues := &c.flagValues
	flags := c.cmd.Flags()
	flags.IntVar(&flagValues.Scene, "scene", flagValues.Scene, "scene id, see --list")
	flags.IntVar(&flagValues.Width, "width", flagValues.Width, "image width in pixels, height is width/1.5")
	flags.IntVar(&flagValues.Samples, "samples", flagValues.Samples, "samples per pixel")
	flags.IntVar(&flagValues.Depth, "depth", flagValues.Depth, "maximum ray bounces")
	flags.IntVar(&flagValues.Workers, "workers", flagValues.Workers, "render workers (0 = CPU count minus two)")
	flags.Int64Var(&flagValues.Seed, "seed", flagValues.Seed, "random seed for scene and samplers (0 = clock)")
	flags.DurationVar(&flagValues.Refresh.Duration, "refresh", flagValues.Refresh.Duration, "interval between preview frames")
	flags.StringVar(&flagValues.Out, "out", flagValues.Out, "directory for the exported image")
	flags.StringVar(&flagValues.Format, "format", flagValues.Format, "export format: bmp, png or tiff")
	flags.BoolVar(&flagValues.Window, "window", flagValues.Window, "show the render in a desktop window")
	flags.StringVar(&flagValues.Serve, "serve", flagValues.Serve, "serve a live web preview on this address, e.g. :8080")

	flags.StringVar(&c.opts.configFile, "config", "", "TOML file with render settings")
	flags.BoolVar(&c.opts.list, "list", false, "list the built-in scenes and exit")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "log progress (default)")
	flags.BoolVar(&c.opts.debug, "vv", false, "log every tile")
	flags.BoolVarP(&c.opts.quiet, "quiet", "q", false, "only log errors")

	return c
}

// resolve builds the render configuration from the parsed command line
func (c *cli) resolve(args []string) (config.Config, error) {
	return resolveConfig(c.cmd.Flags(), c.flagValues, c.opts.configFile, args)
}

// resolveConfig layers defaults, the config file, positional arguments and explicitly set flags
func resolveConfig(flags *pflag.FlagSet, flagValues config.Config, configFile string, args []string) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		if err := config.LoadFile(configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	positional := []*int{&cfg.Scene, &cfg.Width, &cfg.Samples, &cfg.Depth}
	names := []string{"scene", "width", "samples", "depth"}
	for i, arg := range args {
		value, err := strconv.Atoi(arg)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s %q is not a number", config.ErrInvalid, names[i], arg)
		}
		*positional[i] = value
	}

	overrides := map[string]func(){
		"scene":   func() { cfg.Scene = flagValues.Scene },
		"width":   func() { cfg.Width = flagValues.Width },
		"samples": func() { cfg.Samples = flagValues.Samples },
		"depth":   func() { cfg.Depth = flagValues.Depth },
		"workers": func() { cfg.Workers = flagValues.Workers },
		"seed":    func() { cfg.Seed = flagValues.Seed },
		"refresh": func() { cfg.Refresh = flagValues.Refresh },
		"out":     func() { cfg.Out = flagValues.Out },
		"format":  func() { cfg.Format = flagValues.Format },
		"window":  func() { cfg.Window = flagValues.Window },
		"serve":   func() { cfg.Serve = flagValues.Serve },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	return cfg, cfg.Validate()
}

// newLogger builds the CLI logger, also feeding console when the web preview is on
func newLogger(w io.Writer, opts options, console func(slog.Leveler) slog.Handler) *slog.Logger {
	level := logging.LevelFromFlags(opts.debug, opts.verbose, opts.quiet)
	if !opts.debug && !opts.verbose && !opts.quiet {
		level = slog.LevelInfo
	}

	logger := logging.New(w, level)
	if console != nil {
		logger = slog.New(logging.Fanout(logger.Handler(), console(level)))
	}
	return logger
}

func listScenes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, info := range scene.ListScenes() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", info.ID, info.Name, info.Description)
	}
	return tw.Flush()
}

// run renders cfg, presenting to the configured surfaces, and exports the finished image
func run(ctx context.Context, cfg config.Config, opts options, stderr io.Writer) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sc, known := scene.New(cfg.Scene, rand.New(rand.NewSource(seed)))

	var surfaces renderer.MultiSurface
	var preview *server.Server
	var window *viewer.Window

	logger := newLogger(stderr, opts, nil)
	if cfg.Serve != "" {
		preview = server.NewServer(cfg.Serve, sc, cfg.Width, cfg.Height(), logger)
		logger = newLogger(stderr, opts, preview.ConsoleHandler)
		surfaces = append(surfaces, preview)
	}
	if cfg.Window {
		window = viewer.NewWindow(cfg.Width, cfg.Height(), fmt.Sprintf("raytracer: %s", sc.Name))
		surfaces = append(surfaces, window)
	}
	slog.SetDefault(logger)

	if !known {
		logger.Warn("Unknown scene id, using perlin", "scene", cfg.Scene)
	}

	pass, err := renderer.NewRenderPass(cfg.PassConfig(), sc,
		renderer.WithSurface(surfaces),
		renderer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)

	if preview != nil {
		group.Go(func() error {
			return preview.Start(groupCtx)
		})
	}

	group.Go(func() error {
		if err := renderAndExport(groupCtx, pass, cfg, logger); err != nil {
			return err
		}
		if preview != nil {
			logger.Info("Web preview still running, interrupt to exit", "addr", cfg.Serve)
			<-groupCtx.Done()
		}
		return nil
	})

	// ebiten needs the main goroutine
	if window != nil {
		if err := window.Run(groupCtx, cancel); err != nil {
			logger.Error("Window failed", "error", err)
		}
	}

	return group.Wait()
}

func renderAndExport(ctx context.Context, pass *renderer.RenderPass, cfg config.Config, logger *slog.Logger) error {
	stats, err := pass.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Render interrupted, export skipped", "tiles", stats.TotalTiles, "pixels", stats.TotalPixels)
		return nil
	}
	if err != nil {
		return err
	}

	path := cfg.ExportPath()
	if err := export.Save(pass.Framebuffer().Snapshot(), path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	logger.Info("Image saved", "path", path, "elapsed", stats.Elapsed.Round(time.Millisecond))
	return nil
}
