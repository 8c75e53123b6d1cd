package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-tex2png/internal/confcodec"
	"github.com/alnah/go-tex2png/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// userConfigSubdir is searched under os.UserConfigDir().
const userConfigSubdir = "go-tex2png"

// Field length limits.
const (
	MaxCommandLength = 1024 // tool command line
	MaxNameLength    = 64   // document class or package name
	MaxPackages      = 32
	MaxPathLength    = 4096
	MaxTimeoutLength = 32
)

// Config holds tex2png settings read from a config file.
// The expression, size and output are never read from config: they are
// per-invocation and must come from the command line.
type Config struct {
	Tools    ToolsConfig    `yaml:"tools" toml:"tools"`
	Document DocumentConfig `yaml:"document" toml:"document"`
	WorkDir  string         `yaml:"workdir" toml:"workdir"` // empty = temporary directory
	Keep     bool           `yaml:"keep" toml:"keep"`       // keep the temporary directory
	Timeout  string         `yaml:"timeout" toml:"timeout"` // Go duration; empty or "0" = none
	Log      LogConfig      `yaml:"log" toml:"log"`
}

// ToolsConfig holds the external tool command lines.
type ToolsConfig struct {
	Latex  string `yaml:"latex" toml:"latex"`   // e.g. "latex -interaction=nonstopmode"
	Dvipng string `yaml:"dvipng" toml:"dvipng"` // e.g. "dvipng -q"
}

// DocumentConfig defines the generated LaTeX preamble.
type DocumentConfig struct {
	Class    string   `yaml:"class" toml:"class"`       // default "standalone"
	Packages []string `yaml:"packages" toml:"packages"` // default [amsmath]
}

// LogConfig defines log file output.
type LogConfig struct {
	File string `yaml:"file" toml:"file"` // empty = console only
}

// DefaultConfig returns the configuration used without a config file:
// latex and dvipng from PATH, standalone/amsmath preamble, temporary
// work directory, no timeout.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			Latex:  "latex",
			Dvipng: "dvipng",
		},
		Document: DocumentConfig{
			Class:    "standalone",
			Packages: []string{"amsmath"},
		},
	}
}

// Validate checks field lengths and values that end up in the LaTeX preamble
// or on a command line.
func (c *Config) Validate() error {
	if err := validateFieldLength("tools.latex", c.Tools.Latex, MaxCommandLength); err != nil {
		return err
	}
	if err := validateFieldLength("tools.dvipng", c.Tools.Dvipng, MaxCommandLength); err != nil {
		return err
	}
	if err := validatePreambleName("document.class", c.Document.Class); err != nil {
		return err
	}
	if len(c.Document.Packages) > MaxPackages {
		return fmt.Errorf("%w: document.packages: %d entries (max %d)", ErrInvalidField, len(c.Document.Packages), MaxPackages)
	}
	for i, pkg := range c.Document.Packages {
		field := fmt.Sprintf("document.packages[%d]", i)
		if pkg == "" {
			return fmt.Errorf("%w: %s: empty package name", ErrInvalidField, field)
		}
		if err := validatePreambleName(field, pkg); err != nil {
			return err
		}
	}
	if err := validateFieldLength("workdir", c.WorkDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("log.file", c.Log.File, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("timeout", c.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout: %v", ErrInvalidField, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout: must not be negative, got %s", ErrInvalidField, c.Timeout)
	}
	return d, nil
}

// validatePreambleName rejects characters that would break out of
// \documentclass{...} or \usepackage{...}.
func validatePreambleName(fieldName, value string) error {
	if err := validateFieldLength(fieldName, value, MaxNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(value, "{}\\%\n\r") {
		return fmt.Errorf("%w: %s: %q contains LaTeX special characters", ErrInvalidField, fieldName, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) || hasConfigExtension(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	format, err := confcodec.FormatFor(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := confcodec.UnmarshalStrict(data, format, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func hasConfigExtension(s string) bool {
	_, err := confcodec.FormatFor(s)
	return err == nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in confcodec.Extensions order, in the current directory
// first and then in ~/.config/go-tex2png/.
func resolveConfigPath(name string) (string, error) {
	triedPaths := make([]string, 0, len(confcodec.Extensions)*2)

	for _, ext := range confcodec.Extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range confcodec.Extensions {
			userPath := filepath.Join(userConfigDir, userConfigSubdir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
