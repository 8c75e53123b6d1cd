package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlag wraps flag parsing failures.
var ErrInvalidFlag = errors.New("invalid flag")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// inputFlags holds the mutually exclusive expression sources. expSet and
// fileSet record presence, so an explicitly empty --exp still counts.
type inputFlags struct {
	exp     string
	file    string
	expSet  bool
	fileSet bool
}

// runFlags holds options controlling how the tools run.
type runFlags struct {
	workDir string
	keep    bool
	timeout string
	logFile string
	watch   bool
}

// renderFlags holds every flag of the render command.
type renderFlags struct {
	common commonFlags
	input  inputFlags
	size   string
	output string
	run    runFlags

	// sizeSet and outputSet record presence; the values are passed on as
	// given, even when empty.
	sizeSet   bool
	outputSet bool
}

// addCommonFlags registers flags shared across commands.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timings")
}

// addInputFlags registers --exp and --file.
func addInputFlags(fs *flag.FlagSet, f *inputFlags) {
	fs.StringVar(&f.exp, "exp", "", "mathematical expression to render")
	fs.StringVarP(&f.file, "file", "f", "", "file containing the expression")
}

// addRunFlags registers work directory, timeout, logging and watch flags.
func addRunFlags(fs *flag.FlagSet, f *runFlags) {
	fs.StringVar(&f.workDir, "workdir", "", "fixed work directory for formula.tex (default: temporary)")
	fs.BoolVar(&f.keep, "keep", false, "keep the temporary work directory")
	fs.StringVar(&f.timeout, "timeout", "", "timeout per conversion (e.g. 30s, 2m)")
	fs.StringVar(&f.logFile, "log-file", "", "write JSON logs to a rotated file")
	fs.BoolVar(&f.watch, "watch", false, "re-render when --file changes")
}

// newRenderFlagSet builds the render FlagSet bound to f.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	addInputFlags(fs, &f.input)
	fs.StringVar(&f.size, "size", "", "resolution in dpi passed to dvipng -D")
	fs.StringVar(&f.output, "output", "", "PNG file to write")
	addCommonFlags(fs, &f.common)
	addRunFlags(fs, &f.run)

	return fs
}

// parseRenderFlags parses render arguments. Positional arguments are rejected.
// flag.ErrHelp is returned unwrapped for -h/--help.
func parseRenderFlags(args []string) (*renderFlags, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlag, fs.Arg(0))
	}

	f.input.expSet = fs.Changed("exp")
	f.input.fileSet = fs.Changed("file")
	f.sizeSet = fs.Changed("size")
	f.outputSet = fs.Changed("output")
	return f, nil
}
