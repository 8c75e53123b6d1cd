package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	tex2png "github.com/alnah/go-tex2png"
	"github.com/alnah/go-tex2png/internal/config"
	"github.com/alnah/go-tex2png/internal/fileutil"
	"github.com/alnah/go-tex2png/internal/hints"
	"github.com/alnah/go-tex2png/internal/logging"
)

// successFormat is the confirmation printed after a PNG is written.
const successFormat = "PNG successfully created at %s\n"

// keptFormat names the directory holding formula.tex, .log and .dvi.
const keptFormat = "Intermediate files kept in %s\n"

// runRender executes the render command: resolve arguments, build the
// converter from config, convert once or watch.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRenderUsage(env.Stdout)
			return nil
		}
		return err
	}

	// Argument errors and the expression read come before config, logs or
	// any other file I/O.
	req, err := resolveRequest(flags)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog := newLogger(flags, cfg, env.Stderr)
	defer func() { _ = closeLog.Close() }()
	logger, _ = logging.WithRunID(logger)
	ctx = logging.WithLogger(ctx, logger)
	warnUnknownEnvVars(logger)
	logger.Debug("runtime", "gomaxprocs", runtime.GOMAXPROCS(0), "os", runtime.GOOS)

	conv, err := newConverter(cfg, env)
	if err != nil {
		return err
	}

	if flags.run.watch {
		return runWatch(ctx, conv, flags, req, env)
	}
	return renderOnce(ctx, conv, req, flags, env)
}

// renderOnce runs one conversion and prints the confirmation.
func renderOnce(ctx context.Context, conv *tex2png.Converter, req tex2png.Request, flags *renderFlags, env *Environment) error {
	res, err := conv.Convert(ctx, req)
	if err != nil {
		return withHint(err, req.Output)
	}

	logging.FromContext(ctx).Debug("converted", "output", res.Output, "workdir", res.WorkDir,
		"removed", res.Removed, "took", res.Duration)
	if flags.common.quiet {
		return nil
	}
	fmt.Fprintf(env.Stdout, successFormat, req.Output)
	if !res.Removed {
		fmt.Fprintf(env.Stderr, keptFormat, res.WorkDir)
	}
	return nil
}

// loadConfig loads the config named by flag or TEX2PNG_CONFIG, or returns
// the defaults when neither is set.
func loadConfig(name string, env *envConfig) (*config.Config, error) {
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		var nf *config.NotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nf.Tried))
		}
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies CLI flag values over config values. Only flags that were
// set override.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.run.workDir != "" {
		cfg.WorkDir = flags.run.workDir
	}
	if flags.run.keep {
		cfg.Keep = true
	}
	if flags.run.timeout != "" {
		cfg.Timeout = flags.run.timeout
	}
	if flags.run.logFile != "" {
		cfg.Log.File = flags.run.logFile
	}
}

// newLogger returns the console logger, or a JSON file logger when a log file
// is configured. The returned closer releases the file.
func newLogger(flags *renderFlags, cfg *config.Config, stderr io.Writer) (*log.Logger, io.Closer) {
	if cfg.Log.File != "" {
		w := logging.NewFileWriter(cfg.Log.File)
		return logging.NewJSON(w, log.DebugLevel), w
	}
	return logging.New(stderr, logging.Level(flags.common.verbose, flags.common.quiet)), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newConverter builds a converter from the merged config.
func newConverter(cfg *config.Config, env *Environment) (*tex2png.Converter, error) {
	latex, err := tex2png.ParseCommand(cfg.Tools.Latex)
	if err != nil {
		return nil, fmt.Errorf("tools.latex: %w", err)
	}
	dvipng, err := tex2png.ParseCommand(cfg.Tools.Dvipng)
	if err != nil {
		return nil, fmt.Errorf("tools.dvipng: %w", err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []tex2png.Option{
		tex2png.WithLatexCommand(latex),
		tex2png.WithDvipngCommand(dvipng),
		tex2png.WithDocumentOptions(tex2png.DocumentOptions{
			Class:    cfg.Document.Class,
			Packages: cfg.Document.Packages,
		}),
		tex2png.WithWorkDir(cfg.WorkDir),
		tex2png.WithKeepWorkDir(cfg.Keep),
		tex2png.WithToolOutput(env.Stdout, env.Stderr),
	}
	if timeout > 0 {
		opts = append(opts, tex2png.WithTimeout(timeout))
	}
	if env.Runner != nil {
		opts = append(opts, tex2png.WithRunner(env.Runner))
	}
	return tex2png.NewConverter(opts...), nil
}

// withHint appends an actionable hint to conversion errors. output is the
// requested PNG path.
func withHint(err error, output string) error {
	var hint string
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		hint = hints.ForTimeout()
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, tex2png.ErrToolStart):
		tool := "dvipng"
		if errors.Is(err, tex2png.ErrComposeFailed) {
			tool = "latex"
		}
		hint = hints.ForToolStart(tool)
	case errors.Is(err, tex2png.ErrComposeFailed):
		var ce *tex2png.ConvertError
		if errors.As(err, &ce) {
			hint = hints.ForComposeFailed(ce.WorkDir, ce.Kept)
		} else {
			hint = hints.ForComposeFailed("", false)
		}
	case errors.Is(err, tex2png.ErrRasterizeFailed):
		if fileutil.DirWritable(fileutil.ParentDir(output)) != nil {
			hint = hints.ForOutputDirectory()
		}
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
