package tex2png

import (
	"io"
	"time"
)

// Option configures a Converter.
type Option func(*Converter)

// WithRunner sets the CommandRunner used by the default backends.
// Ignored for a backend replaced with WithComposer or WithRasterizer.
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) {
		c.cfg.runner = r
	}
}

// WithComposer replaces the latex backend.
func WithComposer(comp Composer) Option {
	return func(c *Converter) {
		c.composer = comp
	}
}

// WithRasterizer replaces the dvipng backend.
func WithRasterizer(r Rasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = r
	}
}

// WithLatexCommand sets the latex argv prefix, e.g.
// []string{"latex", "-interaction=nonstopmode"}. The document name is
// appended as the last argument.
func WithLatexCommand(argv []string) Option {
	return func(c *Converter) {
		c.cfg.latexCommand = argv
	}
}

// WithDvipngCommand sets the dvipng argv prefix. Resolution, crop, output and
// DVI arguments are appended after it.
func WithDvipngCommand(argv []string) Option {
	return func(c *Converter) {
		c.cfg.dvipngCommand = argv
	}
}

// WithDocumentOptions sets the LaTeX preamble.
func WithDocumentOptions(opts DocumentOptions) Option {
	return func(c *Converter) {
		c.cfg.document = opts
	}
}

// WithWorkDir writes formula.tex and formula.dvi to dir and leaves them there,
// instead of using a temporary directory. Conversions sharing dir are
// serialised with a file lock.
func WithWorkDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.workDir = dir
	}
}

// WithKeepWorkDir keeps the temporary directory after the conversion.
// Has no effect together with WithWorkDir.
func WithKeepWorkDir(keep bool) Option {
	return func(c *Converter) {
		c.cfg.keepWorkDir = keep
	}
}

// WithTimeout bounds the whole conversion. Without it, a hung tool blocks
// until the context is cancelled.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2png: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithToolOutput redirects the tools' stdout and stderr. nil keeps the
// process's own streams.
func WithToolOutput(stdout, stderr io.Writer) Option {
	return func(c *Converter) {
		c.cfg.stdout = stdout
		c.cfg.stderr = stderr
	}
}
