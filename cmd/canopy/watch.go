package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tylerclair/canopy/internal/config"
	"github.com/tylerclair/canopy/internal/generator"
)

func newWatchCmd() *cobra.Command {
	var (
		specDir, output string
		debounce        time.Duration
		opts            generator.BuildOptions
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild API wrappers whenever a spec file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if specDir == "" {
				specDir = cfg.Generator.SpecDir
			}
			if output == "" {
				output = cfg.Generator.OutputDir
			}
			opts.Models = opts.Models || cfg.Generator.Models

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := &specWatcher{
				cfg:      cfg.Generator,
				output:   output,
				opts:     opts,
				debounce: debounce,
				blocked:  cfg.Generator.Blacklist,
				pending:  make(map[string]*time.Timer),
			}
			return w.run(ctx, specDir)
		},
	}
	cmd.Flags().StringVar(&specDir, "specfile-path", "", "Folder holding the spec files (defaults to generator.specDir)")
	cmd.Flags().StringVar(&output, "output-folder", "", "Output folder (defaults to generator.outputDir)")
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Delay before rebuilding a changed file")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "Generate the async variants")
	cmd.Flags().BoolVar(&opts.Models, "models", false, "Also generate model structs")
	return cmd
}

// specWatcher rebuilds one spec file at a time, coalescing bursts of events
// on the same file.
type specWatcher struct {
	cfg      config.GeneratorConfig
	output   string
	opts     generator.BuildOptions
	debounce time.Duration
	blocked  []string

	mu      sync.Mutex
	pending map[string]*time.Timer
	build   sync.Mutex
}

func (w *specWatcher) run(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("watching spec files")

	for {
		select {
		case <-ctx.Done():
			w.stopAll()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *specWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	name := filepath.Base(event.Name)
	if filepath.Ext(name) != ".json" || slices.Contains(w.blocked, name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.rebuild(event.Name)
		w.done(event.Name, &timer)
	})
	w.pending[event.Name] = timer
}

// done forgets the pending timer for name unless a newer event re-armed it.
// timer is read under the lock since handle assigns it after arming.
func (w *specWatcher) done(name string, timer **time.Timer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[name] == *timer {
		delete(w.pending, name)
	}
}

func (w *specWatcher) rebuild(path string) {
	w.build.Lock()
	defer w.build.Unlock()

	gen := generator.New(w.cfg, log)
	if _, err := gen.BuildAPI(path, w.output, w.opts); err != nil {
		log.Error().Err(err).Str("spec", path).Msg("rebuild failed")
		return
	}
	if _, err := gen.BuildClient(w.output); err != nil {
		log.Error().Err(err).Msg("client rebuild failed")
	}
}

func (w *specWatcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
}
