package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/c360studio/addonsmith/watch"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Build, then rebuild behavior files as they change",
		Long: `Watch builds every file matching build.include under each directory, then
rebuilds a file whenever it changes. Files the build writes itself do not
trigger another build.

When metrics.addr is set, Prometheus metrics are served on /metrics while
watching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app.Connect(ctx)
			app.serveMetrics(ctx)

			dirs := args
			if len(dirs) == 0 {
				dirs = []string{"."}
			}
			return app.Watch(ctx, dirs, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write built files under this directory instead of in place")

	return cmd
}

// Watch runs an initial build of every dir and then rebuilds changed files
// until ctx is done.
func (a *App) Watch(ctx context.Context, dirs []string, out string) error {
	w, err := watch.New(watch.Options{
		Debounce:    a.cfg.Watch.DebounceDuration(),
		Extensions:  a.cfg.Watch.Extensions,
		ExcludeDirs: a.cfg.Watch.ExcludeDirs,
	}, dirs, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	for _, dir := range dirs {
		opts, err := resolveBuildOptions(dir, out, false)
		if err != nil {
			return err
		}
		opts.onWrite = w.Remember
		if err := a.runBuild(ctx, nil, "", opts); err != nil {
			a.logger.Warn("Initial build incomplete", "root", opts.root, "error", err)
		}
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped")
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.handleChange(ctx, w, ev, out)
		}
	}
}

// handleChange rebuilds or removes the output for one changed file.
func (a *App) handleChange(ctx context.Context, w *watch.Watcher, ev watch.Event, out string) {
	opts, err := resolveBuildOptions(ev.Root, out, true)
	if err != nil {
		a.logger.Error("Cannot rebuild", "path", ev.Path, "error", err)
		return
	}
	if !opts.inPlace() && within(opts.out, ev.Path) {
		return
	}

	rel, err := filepath.Rel(ev.Root, ev.Path)
	if err != nil || !a.included(rel) {
		a.logger.Debug("Ignoring change", "path", ev.Path, "op", ev.Op)
		return
	}

	if ev.Op == watch.OpDelete {
		a.removeOutput(ctx, opts, rel, ev.Path)
		return
	}

	opts.onWrite = w.Remember
	if _, err := a.Build(ctx, []string{rel}, opts); err != nil {
		a.logger.Warn("Rebuild interrupted", "path", ev.Path, "error", err)
	}
}

// removeOutput drops the mirrored output and build record of a deleted
// source file.
func (a *App) removeOutput(ctx context.Context, opts buildOptions, rel, source string) {
	if a.records != nil {
		if err := a.records.Delete(ctx, source); err != nil {
			a.logger.Warn("Failed to delete build record", "path", source, "error", err)
		}
	}
	if opts.inPlace() {
		return
	}
	target := filepath.Join(opts.out, rel)
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("Failed to remove output", "path", target, "error", err)
		return
	}
	a.logger.Info("Removed output", "path", target)
}

// included reports whether rel matches one of the build.include patterns.
func (a *App) included(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range a.cfg.Build.Include {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), rel); ok {
			return true
		}
	}
	return false
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
