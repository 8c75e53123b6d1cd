package main

import (
	"context"
	"errors"
	"os"

	tex2png "github.com/alnah/go-tex2png"
	"github.com/alnah/go-tex2png/internal/config"
)

// Exit codes for the tex2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // PNG written
	ExitGeneral   = 1 // General/unexpected error, interrupted run
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // Expression file unreadable, work directory or document unwritable
	ExitCompose   = 4 // latex exited non-zero
	ExitRasterize = 5 // dvipng exited non-zero
	ExitToolStart = 6 // latex or dvipng could not be started
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Interrupted or timed out: the tool was killed, its status is meaningless.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitGeneral
	}

	// Start failures are also stage failures and often wrap os.ErrNotExist,
	// so they are checked first.
	if errors.Is(err, tex2png.ErrToolStart) {
		return ExitToolStart
	}
	if errors.Is(err, tex2png.ErrComposeFailed) {
		return ExitCompose
	}
	if errors.Is(err, tex2png.ErrRasterizeFailed) {
		return ExitRasterize
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInputConflict) ||
		errors.Is(err, ErrMissingFlag) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrWatchNeedsFile) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, tex2png.ErrEmptySize) ||
		errors.Is(err, tex2png.ErrEmptyOutput) ||
		errors.Is(err, tex2png.ErrEmptyCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, ErrReadExpression) ||
		errors.Is(err, tex2png.ErrWriteDocument) ||
		errors.Is(err, tex2png.ErrWorkDir) ||
		errors.Is(err, tex2png.ErrWorkDirLock) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
