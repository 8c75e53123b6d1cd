package tex2png

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Default tool commands.
var (
	DefaultLatexCommand  = []string{"latex"}
	DefaultDvipngCommand = []string{"dvipng"}
)

// Composer turns a LaTeX document into a device-independent file.
// Compose returns the path of the produced DVI.
type Composer interface {
	Compose(ctx context.Context, texPath string) (dviPath string, err error)
}

// RasterOptions configures one rasterization.
type RasterOptions struct {
	Size   string // resolution passed to -D, verbatim
	Output string // absolute path of the PNG to write
}

// Rasterizer turns a device-independent file into a PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, dviPath string, opts RasterOptions) error
}

// Compile-time interface implementation checks.
var (
	_ Composer   = (*LatexComposer)(nil)
	_ Rasterizer = (*DvipngRasterizer)(nil)
)

// LatexComposer runs latex on the document. latex writes formula.dvi next to
// formula.tex because it runs with the document directory as working
// directory.
type LatexComposer struct {
	Runner  CommandRunner
	Command []string // argv prefix; nil = DefaultLatexCommand
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewLatexComposer creates a LatexComposer running the default latex binary.
func NewLatexComposer() *LatexComposer {
	return &LatexComposer{Runner: &ExecRunner{}}
}

func (c *LatexComposer) Compose(ctx context.Context, texPath string) (string, error) {
	argv := c.Command
	if len(argv) == 0 {
		argv = DefaultLatexCommand
	}

	// A DVI left by an earlier run in a shared work directory would pass the
	// output check below when latex produces nothing.
	dviPath := dviPathFor(texPath)
	if err := os.Remove(dviPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: removing stale DVI: %w", ErrComposeFailed, err)
	}

	cmd := Command{
		Name:   argv[0],
		Args:   append(append([]string{}, argv[1:]...), filepath.Base(texPath)),
		Dir:    filepath.Dir(texPath),
		Stdout: c.Stdout,
		Stderr: c.Stderr,
	}
	if err := c.Runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("%w: %w", ErrComposeFailed, err)
	}

	// latex exits 0 on an empty page ("No pages of output"), leaving nothing
	// for dvipng to read.
	if _, err := os.Stat(dviPath); err != nil {
		return "", fmt.Errorf("%w: no DVI output: %w", ErrComposeFailed, err)
	}
	return dviPath, nil
}

// DvipngRasterizer runs dvipng -D <size> -T tight -o <output> <dvi>.
type DvipngRasterizer struct {
	Runner  CommandRunner
	Command []string // argv prefix; nil = DefaultDvipngCommand
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewDvipngRasterizer creates a DvipngRasterizer running the default dvipng
// binary.
func NewDvipngRasterizer() *DvipngRasterizer {
	return &DvipngRasterizer{Runner: &ExecRunner{}}
}

func (r *DvipngRasterizer) Rasterize(ctx context.Context, dviPath string, opts RasterOptions) error {
	argv := r.Command
	if len(argv) == 0 {
		argv = DefaultDvipngCommand
	}

	args := append([]string{}, argv[1:]...)
	args = append(args, "-D", opts.Size, "-T", "tight", "-o", opts.Output, filepath.Base(dviPath))

	cmd := Command{
		Name:   argv[0],
		Args:   args,
		Dir:    filepath.Dir(dviPath),
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	}
	if err := r.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrRasterizeFailed, err)
	}
	return nil
}
