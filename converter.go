package tex2png

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alnah/go-tex2png/internal/logging"
)

// Converter runs the document -> DVI -> PNG pipeline.
// A Converter holds no per-conversion state and may be reused.
type Converter struct {
	cfg        converterConfig
	composer   Composer
	rasterizer Rasterizer
}

// converterConfig holds the settings options write into.
type converterConfig struct {
	runner        CommandRunner
	latexCommand  []string
	dvipngCommand []string
	document      DocumentOptions
	workDir       string
	keepWorkDir   bool
	timeout       time.Duration
	stdout        io.Writer
	stderr        io.Writer
}

// Result describes a successful conversion.
type Result struct {
	Output   string // absolute path of the PNG
	Document string // absolute path of the formula.tex that was compiled
	WorkDir  string // directory holding the intermediates
	Removed  bool   // WorkDir was deleted after the conversion
	Duration time.Duration
}

// ConvertError wraps a failure that happened after the work directory was
// set up, recording where the intermediates were.
type ConvertError struct {
	WorkDir string
	Kept    bool // WorkDir still exists after Convert returned
	Err     error
}

func (e *ConvertError) Error() string { return e.Err.Error() }

func (e *ConvertError) Unwrap() error { return e.Err }

// NewConverter creates a Converter. Without options it runs latex and dvipng
// from PATH in a temporary directory that is removed afterwards.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			runner:   &ExecRunner{},
			document: DefaultDocumentOptions(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.composer == nil {
		c.composer = &LatexComposer{
			Runner:  c.cfg.runner,
			Command: c.cfg.latexCommand,
			Stdout:  c.cfg.stdout,
			Stderr:  c.cfg.stderr,
		}
	}
	if c.rasterizer == nil {
		c.rasterizer = &DvipngRasterizer{
			Runner:  c.cfg.runner,
			Command: c.cfg.dvipngCommand,
			Stdout:  c.cfg.stdout,
			Stderr:  c.cfg.stderr,
		}
	}

	return c
}

// Convert writes the document, composes it, then rasterizes the result.
// Rasterization only runs after composition succeeded. The work directory is
// released on every return path.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	output, err := filepath.Abs(req.Output)
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	ws, err := c.openWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := ws.release(); relErr != nil {
			logger.Warn("releasing work directory", "dir", ws.dir, "err", relErr)
		}
	}()
	logger.Debug("work directory ready", "dir", ws.dir, "scoped", ws.scoped)

	kept := !ws.scoped || c.cfg.keepWorkDir
	fail := func(err error) (*Result, error) {
		return nil, &ConvertError{WorkDir: ws.dir, Kept: kept, Err: err}
	}

	texPath, err := WriteDocument(ws.dir, req.Expression, c.cfg.document)
	if err != nil {
		return fail(err)
	}

	p := logging.NewProgress(logger)
	dviPath, err := c.composer.Compose(ctx, texPath)
	if err != nil {
		return fail(err)
	}
	p.Done("composition finished")

	p = logging.NewProgress(logger)
	if err := c.rasterizer.Rasterize(ctx, dviPath, RasterOptions{Size: req.Size, Output: output}); err != nil {
		return fail(err)
	}
	p.Done("rasterization finished")

	return &Result{
		Output:   output,
		Document: texPath,
		WorkDir:  ws.dir,
		Removed:  !kept,
		Duration: time.Since(start),
	}, nil
}

func (c *Converter) openWorkspace(ctx context.Context) (*workspace, error) {
	if c.cfg.workDir != "" {
		return openShared(ctx, c.cfg.workDir)
	}
	return openScoped(logging.FromContext(ctx), c.cfg.keepWorkDir)
}
