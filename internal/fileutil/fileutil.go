// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotADirectory is returned by DirWritable for a path that is a file.
var ErrNotADirectory = errors.New("not a directory")

// probePattern names the throwaway file DirWritable creates.
const probePattern = ".tex2png-probe-*"

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "tex2png" -> false (name)
//   - "./tex2png.yaml" -> true (relative path)
//   - "/etc/tex2png.toml" -> true (absolute)
//   - "C:\config\tex2png.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// DirWritable reports whether a file can be created in dir by creating and
// removing a probe file.
func DirWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	f, err := os.CreateTemp(dir, probePattern)
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// ParentDir returns the directory a file at path would be created in,
// "." for a bare file name.
func ParentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
