package main

import (
	"errors"
	"fmt"
	"os"

	tex2png "github.com/alnah/go-tex2png"
	"github.com/alnah/go-tex2png/internal/hints"
)

// Sentinel errors for argument resolution.
var (
	ErrNoInput        = errors.New("one of --exp or --file is required")
	ErrInputConflict  = errors.New("--exp and --file cannot be used together")
	ErrMissingFlag    = errors.New("missing required flag")
	ErrReadExpression = errors.New("failed to read expression file")
	ErrWatchNeedsFile = errors.New("--watch requires --file")
)

// checkInputGroup enforces that exactly one of --exp and --file is present.
func checkInputGroup(in inputFlags) error {
	switch {
	case in.expSet && in.fileSet:
		return fmt.Errorf("%w%s", ErrInputConflict, hints.ForInputGroup())
	case !in.expSet && !in.fileSet:
		return fmt.Errorf("%w%s", ErrNoInput, hints.ForInputGroup())
	}
	return nil
}

// validateRequestFlags checks everything about the request that does not
// need the filesystem.
func validateRequestFlags(f *renderFlags) error {
	if err := checkInputGroup(f.input); err != nil {
		return err
	}
	if !f.sizeSet {
		return fmt.Errorf("%w: --size", ErrMissingFlag)
	}
	if !f.outputSet {
		return fmt.Errorf("%w: --output", ErrMissingFlag)
	}
	if f.run.watch && !f.input.fileSet {
		return ErrWatchNeedsFile
	}
	return nil
}

// readExpression returns the file contents verbatim.
func readExpression(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadExpression, err)
	}
	return string(data), nil
}

// resolveRequest turns validated flags into a conversion request, reading
// the expression file if one was given.
func resolveRequest(f *renderFlags) (tex2png.Request, error) {
	if err := validateRequestFlags(f); err != nil {
		return tex2png.Request{}, err
	}

	expr := f.input.exp
	if f.input.fileSet {
		var err error
		if expr, err = readExpression(f.input.file); err != nil {
			return tex2png.Request{}, err
		}
	}

	return tex2png.Request{Expression: expr, Size: f.size, Output: f.output}, nil
}
