package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdRender     = "render"
	cmdDoctor     = "doctor"
	cmdVersion    = "version"
	cmdHelp       = "help"
	cmdCompletion = "completion"
)

// ErrUnknownCommand is returned by help for a command that does not exist.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if err := loadDotEnv(dotEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: loading %s: %v\n", dotEnvFile, err)
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches args (including the program name) and returns the
// process exit code. Without a known command name, args are render flags.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	var err error
	switch args[0] {
	case cmdRender:
		err = runRender(ctx, args[1:], env)
	case cmdDoctor:
		if hasHelpFlag(args[1:]) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		return runDoctorCmd(ctx, args[1:], env)
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "tex2png %s\n", Version)
		return ExitSuccess
	case cmdHelp:
		err = runHelp(args[1:], env)
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	case cmdCompletion:
		err = runCompletion(args[1:], env)
	default:
		if !strings.HasPrefix(args[0], "-") {
			err = fmt.Errorf("%w: %s (run 'tex2png help')", ErrUnknownCommand, args[0])
			break
		}
		err = runRender(ctx, args, env)
	}

	if err != nil {
		fmt.Fprintln(env.Stderr, err)
	}
	return exitCodeFor(err)
}

func hasHelpFlag(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}
