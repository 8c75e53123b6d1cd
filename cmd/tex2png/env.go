package main

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	tex2png "github.com/alnah/go-tex2png"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// Runner executes latex and dvipng. nil means real processes.
	Runner tex2png.CommandRunner

	// LookPath and ToolVersion back the doctor checks.
	LookPath    func(file string) (string, error)
	ToolVersion func(ctx context.Context, path string) (string, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookPath:    exec.LookPath,
		ToolVersion: toolVersion,
	}
}

// toolVersion returns the first line printed by "<path> --version".
func toolVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}
