// Package confcodec decodes config files in the formats tex2png accepts,
// isolating the YAML and TOML libraries from callers.
package confcodec

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// MaxInputSize limits config input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("confcodec: nil or empty data")
	ErrNilDestination = errors.New("confcodec: nil destination pointer")
	ErrInputTooLarge  = errors.New("confcodec: input exceeds maximum size")
	ErrUnknownFormat  = errors.New("confcodec: unknown config format")
	ErrUnknownField   = errors.New("confcodec: unknown field")
)

// Format is a config file syntax.
type Format int

const (
	FormatYAML Format = iota + 1
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// Extensions lists recognised config extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".toml"}

// FormatFor picks the format from the file extension (case-insensitive).
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q (want %s)", ErrUnknownFormat, path, strings.Join(Extensions, ", "))
	}
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict decodes data into v and rejects fields v does not declare.
// YAML uses `yaml` struct tags, TOML uses `toml` tags.
func UnmarshalStrict(data []byte, format Format, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
			return fmt.Errorf("confcodec: yaml: %w", err)
		}
		return nil
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(v)
		if err != nil {
			return fmt.Errorf("confcodec: toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(keys, ", "))
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
}
