package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/addonsmith/behavior"
	"github.com/c360studio/addonsmith/events"
	"github.com/c360studio/addonsmith/expand"
	"github.com/c360studio/addonsmith/schema"
	"github.com/c360studio/addonsmith/storage"
)

// buildOptions control one build run.
type buildOptions struct {
	// root is the directory file paths are relative to
	root string
	// out mirrors built files into this directory; empty builds in place
	out string
	// force rebuilds files a build record marks as unchanged
	force bool
	// onWrite sees every file before it is written
	onWrite func(path string, data []byte)
}

func (o buildOptions) inPlace() bool { return o.out == "" }

// buildResult is the outcome of building one file.
type buildResult struct {
	Path       string
	Out        string
	Identifier string
	Stats      expand.Stats
	Lang       []string
	// Skipped is the reason the file was not built, empty otherwise
	Skipped string
	Err     error
}

// kind classifies a failure for metrics and events.
func (r buildResult) kind() string {
	if r.Err == nil {
		return ""
	}
	if k := schema.KindOf(r.Err); k != "" {
		return string(k)
	}
	if errors.Is(r.Err, storage.ErrNotFound) {
		return "not_found"
	}
	if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "io"
}

// buildSummary counts the results of a build run.
type buildSummary struct {
	Built   int
	Skipped int
	Failed  int
}

func summarize(results []buildResult) buildSummary {
	var s buildSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Skipped != "":
			s.Skipped++
		default:
			s.Built++
		}
	}
	return s
}

// Build expands files concurrently, bounded by build.workers. A failing
// file does not stop the others; the returned error is only set when ctx
// is canceled.
func (a *App) Build(ctx context.Context, files []string, opts buildOptions) ([]buildResult, error) {
	store := storage.NewStore(opts.root, a.cfg.Build.Indent)
	results := make([]buildResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Build.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = buildResult{Path: file, Err: err}
				return err
			}
			results[i] = a.buildFile(gctx, store, file, opts)
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func (a *App) buildFile(ctx context.Context, store *storage.Store, rel string, opts buildOptions) (res buildResult) {
	start := time.Now()
	res = buildResult{Path: rel, Out: rel}
	if !opts.inPlace() {
		res.Out = filepath.Join(opts.out, rel)
	}
	defer func() { a.report(res, time.Since(start)) }()

	raw, err := store.ReadRaw(rel)
	if err != nil {
		res.Err = err
		return res
	}
	source := store.Path(rel)
	sourceHash := storage.Hash(raw)
	if !opts.force && a.upToDate(ctx, source, sourceHash, store.Exists(res.Out)) {
		res.Skipped = "unchanged"
		return res
	}

	doc, err := behavior.Parse(raw)
	if errors.Is(err, behavior.ErrNoAsset) {
		res.Skipped = "not an asset"
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", rel, err)
		return res
	}
	res.Identifier, _ = doc.Identifier()

	out, stats, err := a.expander.Expand(doc.Data())
	res.Stats = stats
	if err != nil {
		res.Err = err
		return res
	}
	if opts.inPlace() && stats.Total() == 0 {
		res.Skipped = "no components"
		return res
	}
	if expanded, err := behavior.New(out); err == nil {
		res.Lang = expanded.LangEntries()
	}

	data, err := store.Encode(out)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", rel, err)
		return res
	}
	if opts.onWrite != nil {
		opts.onWrite(store.Path(res.Out), data)
	}
	if err := store.WriteRaw(res.Out, data); err != nil {
		res.Err = err
		return res
	}

	a.saveRecord(ctx, source, sourceHash, data, res, opts.inPlace())
	return res
}

// upToDate reports whether a build record says source is unchanged since
// its last build and the output is still there.
func (a *App) upToDate(ctx context.Context, source, sourceHash string, outExists bool) bool {
	if a.records == nil || !outExists {
		return false
	}
	rec, err := a.records.Get(ctx, source)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("Failed to read build record", "path", source, "error", err)
		}
		return false
	}
	return rec.SourceHash == sourceHash
}

func (a *App) saveRecord(ctx context.Context, source, sourceHash string, data []byte, res buildResult, inPlace bool) {
	if a.records == nil {
		return
	}
	rec := &storage.BuildRecord{
		Path:       source,
		SourceHash: sourceHash,
		OutputHash: storage.Hash(data),
		Identifier: res.Identifier,
		Expanded:   res.Stats.Expanded,
	}
	// Built in place, the output is the next build's input.
	if inPlace {
		rec.SourceHash = rec.OutputHash
	}
	if err := a.records.Put(ctx, rec); err != nil {
		a.logger.Warn("Failed to save build record", "path", source, "error", err)
	}
}

// report logs a result and feeds it to metrics and the event publisher.
func (a *App) report(res buildResult, d time.Duration) {
	if res.Skipped != "" {
		a.logger.Debug("Skipped file", "path", res.Path, "reason", res.Skipped)
		return
	}

	kind := res.kind()
	a.metrics.BuildFinished(d, kind)

	ev := events.BuildEvent{
		Path:       res.Path,
		Identifier: res.Identifier,
		Success:    res.Err == nil,
		Kind:       kind,
		Expanded:   res.Stats.Expanded,
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
		a.logger.Error("Build failed", "path", res.Path, "kind", kind, "error", res.Err)
	} else {
		a.logger.Info("Built file",
			"path", res.Path,
			"out", res.Out,
			"identifier", res.Identifier,
			"expanded", res.Stats.Total(),
			"passes", res.Stats.Passes,
			"duration", d)
	}

	if err := a.publisher.Publish(ev); err != nil {
		a.logger.Warn("Failed to publish build event", "path", res.Path, "error", err)
	}
}

// appendLangEntries adds the entries missing from a .lang file and
// returns how many were added. The file is created if needed.
func appendLangEntries(path string, entries []string) (int, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	have := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(existing))
	for scanner.Scan() {
		have[strings.TrimSpace(scanner.Text())] = true
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		buf.WriteByte('\n')
	}
	added := 0
	for _, e := range entries {
		if have[e] {
			continue
		}
		have[e] = true
		buf.WriteString(e)
		buf.WriteByte('\n')
		added++
	}
	if added == 0 {
		return 0, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := storage.NewStore(filepath.Dir(abs), 0).WriteRaw(filepath.Base(abs), buf.Bytes()); err != nil {
		return 0, err
	}
	return added, nil
}

// langEntries collects the lang entries of successful results.
func langEntries(results []buildResult) []string {
	var out []string
	for _, r := range results {
		if r.Err == nil && r.Skipped == "" {
			out = append(out, r.Lang...)
		}
	}
	return out
}

// excludeDir drops files under dir, given relative to root.
func excludeDir(files []string, root, dir string) []string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return files
	}
	prefix := rel + string(filepath.Separator)
	kept := files[:0]
	for _, f := range files {
		if !strings.HasPrefix(f, prefix) {
			kept = append(kept, f)
		}
	}
	return kept
}

func buildCmd(flags *globalFlags) *cobra.Command {
	var (
		root  string
		out   string
		force bool
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "build [globs...]",
		Short: "Expand virtual components in behavior files",
		Long: `Build expands every virtual component reference in the matching behavior
files. Globs are doublestar patterns relative to --root; without any, the
build.include patterns from the config are used.

Files are rewritten in place unless --out is given, in which case the
directory layout under --root is mirrored there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			app.Connect(ctx)

			opts, err := resolveBuildOptions(root, out, force)
			if err != nil {
				return err
			}
			return app.runBuild(ctx, args, lang, opts)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Directory the globs are relative to")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write built files under this directory instead of in place")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild files recorded as unchanged")
	cmd.Flags().StringVar(&lang, "lang", "", "Append generated text entries to this .lang file")

	return cmd
}

func resolveBuildOptions(root, out string, force bool) (buildOptions, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return buildOptions{}, fmt.Errorf("resolve root: %w", err)
	}
	opts := buildOptions{root: absRoot, force: force}
	if out != "" {
		if opts.out, err = filepath.Abs(out); err != nil {
			return buildOptions{}, fmt.Errorf("resolve out: %w", err)
		}
	}
	return opts, nil
}

// runBuild globs, builds and reports one batch of files.
func (a *App) runBuild(ctx context.Context, patterns []string, lang string, opts buildOptions) error {
	if len(patterns) == 0 {
		patterns = a.cfg.Build.Include
	}

	files, err := storage.NewStore(opts.root, a.cfg.Build.Indent).Glob(patterns...)
	if err != nil {
		return err
	}
	if !opts.inPlace() {
		files = excludeDir(files, opts.root, opts.out)
	}
	if len(files) == 0 {
		a.logger.Warn("No files matched", "root", opts.root, "patterns", patterns)
		return nil
	}

	results, err := a.Build(ctx, files, opts)
	if err != nil {
		return fmt.Errorf("build interrupted: %w", err)
	}

	sum := summarize(results)
	a.logger.Info("Build complete",
		"built", sum.Built,
		"skipped", sum.Skipped,
		"failed", sum.Failed)

	if lang != "" {
		added, err := appendLangEntries(lang, langEntries(results))
		if err != nil {
			return err
		}
		if added > 0 {
			a.logger.Info("Updated lang file", "path", lang, "added", added)
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to build", sum.Failed, len(files))
	}
	return nil
}
