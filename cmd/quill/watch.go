package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/quill-lang/quill/pkg/driver"
)

// projectEntries roots a project at the directory of the first file and
// returns the files relative to it.
func projectEntries(files []string) (string, []string, error) {
	first, err := filepath.Abs(files[0])
	if err != nil {
		return "", nil, err
	}
	dir := filepath.Dir(first)
	entries := make([]string, len(files))
	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return "", nil, err
		}
		rel, err := filepath.Rel(dir, abs)
		if err != nil || !filepath.IsLocal(rel) {
			return "", nil, fmt.Errorf("%s is outside %s", f, dir)
		}
		entries[i] = filepath.ToSlash(rel)
	}
	return dir, entries, nil
}

func (c *cli) watch(ctx context.Context, files []string) int {
	dir, entries, err := projectEntries(files)
	if err != nil {
		fmt.Fprintf(c.stderr, "quill: %v\n", err)
		return exitUsage
	}
	p, err := driver.NewDirProject(dir, c.cfg)
	if err != nil {
		fmt.Fprintf(c.stderr, "quill: %v\n", err)
		return exitUsage
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(c.stderr, "quill: %v\n", err)
		return exitInternal
	}
	defer w.Close()

	c.build(ctx, p, dir, entries)
	c.watchDirs(w, dir, p.Modules())
	slog.Warn("watching for changes", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return exitOK
		case event, ok := <-w.Events:
			if !ok {
				return exitOK
			}
			if filepath.Ext(event.Name) != ".ql" || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			rel, err := filepath.Rel(dir, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			p.Invalidate(rel)
			slog.Info("rebuilding", "changed", rel)
			c.build(ctx, p, dir, entries)
			c.watchDirs(w, dir, p.Modules())
		case err, ok := <-w.Errors:
			if !ok {
				return exitOK
			}
			slog.Error("watcher", "err", err)
		}
	}
}

// build compiles the project and writes every module that compiled.
// Outputs without an outdir land next to their sources.
func (c *cli) build(ctx context.Context, p *driver.Project, dir string, entries []string) int {
	results, err := p.Build(ctx, entries...)
	code := exitOK
	for _, res := range results {
		if res == nil {
			continue
		}
		c.warn(res)
		if !filepath.IsAbs(res.OutputPath) && c.cfg.OutDir == "" {
			res.OutputPath = filepath.Join(dir, filepath.FromSlash(res.OutputPath))
		}
		if werr := driver.WriteJavaScriptFile(res); werr != nil {
			fmt.Fprintf(c.stderr, "quill: %v\n", werr)
			code = exitInternal
		}
	}
	if rc := c.report(nil, err); rc > code {
		code = rc
	}
	return code
}

// watchDirs adds dir and the directory of every loaded module.
func (c *cli) watchDirs(w *fsnotify.Watcher, dir string, mods []string) {
	dirs := map[string]bool{dir: true}
	for _, m := range mods {
		dirs[filepath.Join(dir, filepath.Dir(filepath.FromSlash(m)))] = true
	}
	watched := make(map[string]bool)
	for _, d := range w.WatchList() {
		watched[d] = true
	}
	for d := range dirs {
		if watched[d] {
			continue
		}
		if err := w.Add(d); err != nil {
			slog.Warn("cannot watch directory", "dir", d, "err", err)
		}
	}
}
