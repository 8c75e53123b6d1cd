package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2png [render] (--exp <expr> | -f <file>) --size <dpi> --output <file.png> [flags]")
	fmt.Fprintln(w, "       tex2png <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render       Render an expression to PNG (default)")
	fmt.Fprintln(w, "  doctor       Check that latex and dvipng are usable")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tex2png help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2png [render] (--exp <expr> | -f <file>) --size <dpi> --output <file.png> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a LaTeX math expression to a tightly cropped PNG with latex and dvipng.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input (exactly one):")
	fmt.Fprintln(w, "      --exp <expr>          Expression, placed verbatim between $ delimiters")
	fmt.Fprintln(w, "  -f, --file <path>         File whose whole content is the expression")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output (required):")
	fmt.Fprintln(w, "      --size <dpi>          Resolution passed to dvipng -D (e.g. 300)")
	fmt.Fprintln(w, "      --output <path>       PNG file to write (overwritten if present)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (.yaml, .yml, .toml)")
	fmt.Fprintln(w, "      --workdir <dir>       Keep formula.tex and formula.dvi in dir (default: temporary)")
	fmt.Fprintln(w, "      --keep                Keep the temporary work directory")
	fmt.Fprintln(w, "      --timeout <d>         Abort after duration, e.g. 30s (default: none)")
	fmt.Fprintln(w, "      --watch               Re-render when --file changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timings")
	fmt.Fprintln(w, "      --log-file <path>     Write JSON logs to a rotated file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEX2PNG_CONFIG, TEX2PNG_LATEX, TEX2PNG_DVIPNG, TEX2PNG_WORKDIR,")
	fmt.Fprintln(w, "  TEX2PNG_TIMEOUT, TEX2PNG_LOG_FILE (also read from ./.env)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 error, 2 usage, 3 I/O, 4 latex failed, 5 dvipng failed,")
	fmt.Fprintln(w, "  6 latex or dvipng could not be started")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2png doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the configured latex and dvipng commands resolve and run,")
	fmt.Fprintln(w, "and that the temporary directory is writable.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case cmdRender:
		printRenderUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdCompletion:
		printCompletionUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: tex2png version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: tex2png help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
