// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-tex2png/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// envForTool maps a tool name to the environment variable overriding it.
var envForTool = map[string]string{
	"latex":  "TEX2PNG_LATEX",
	"dvipng": "TEX2PNG_DVIPNG",
}

// ForToolStart returns hints for a tool that could not be started.
func ForToolStart(tool string) string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "install texlive-latex-base and dvipng in the image")
	} else {
		hints = append(hints, "install a TeX distribution providing "+tool+" (TeX Live, MiKTeX)")
	}

	if env, ok := envForTool[tool]; ok && os.Getenv(env) == "" {
		hints = append(hints, "set "+env+" to use a custom command")
	}

	hints = append(hints, "run 'tex2png doctor' to check your setup")
	return formatHints(hints)
}

// ForComposeFailed points at the LaTeX log. If the work directory survives the
// run, the log path is given; otherwise --keep is suggested.
func ForComposeFailed(workDir string, kept bool) string {
	if kept && workDir != "" {
		return format("see " + filepath.Join(workDir, "formula.log"))
	}
	return format("rerun with --keep to inspect formula.log")
}

// ForInputGroup returns the hint for a bad --exp/--file combination.
func ForInputGroup() string {
	return format("pass exactly one of --exp or --file")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("first runs may generate fonts; use --timeout to allow more time")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-tex2png/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "go-tex2png/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
