package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	tex2png "github.com/alnah/go-tex2png"
	"github.com/alnah/go-tex2png/internal/logging"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// runWatch renders once, then re-reads the expression file and renders again
// after every change until ctx is cancelled. Conversion failures are reported
// and watching continues.
func runWatch(ctx context.Context, conv *tex2png.Converter, flags *renderFlags, req tex2png.Request, env *Environment) error {
	logger := logging.FromContext(ctx)

	render := func(req tex2png.Request) {
		if err := renderOnce(ctx, conv, req, flags, env); err != nil && ctx.Err() == nil {
			fmt.Fprintln(env.Stderr, err)
		}
	}
	render(req)

	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Watching %s (Ctrl-C to stop)\n", flags.input.file)
	}

	return watchFile(ctx, flags.input.file, watchDebounce, func() {
		expr, err := readExpression(flags.input.file)
		if err != nil {
			logger.Warn("skipping change", "err", err)
			return
		}
		req.Expression = expr
		render(req)
	})
}

// watchFile calls onChange, at most once per debounce window, after path is
// written or replaced. It watches the parent directory so that editors that
// save by rename are followed. onChange runs on the watching goroutine, so
// calls never overlap. Returns nil when ctx is cancelled.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving watched file: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	logger := logging.FromContext(ctx)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Debug("file changed", "file", ev.Name, "op", ev.Op.String())
				fire = time.After(debounce)
			}

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				fire = time.After(debounce)
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
