// Package config loads inspector settings from YAML or CUE files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ftr/internal/ftr"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds settings shared by every command.
type Config struct {
	// Format is "text" or "json".
	Format string `yaml:"format" json:"format"`

	// Verbose enables debug logging of chunk events.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Workers bounds the number of files decoded in parallel.
	Workers int `yaml:"workers" json:"workers"`

	// MaxDecompressedSize bounds the declared size of a compressed chunk.
	MaxDecompressedSize int64 `yaml:"max_decompressed_size" json:"max_decompressed_size"`

	// Database is the default SQLite path for import, imports and tx.
	Database string `yaml:"database" json:"database"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:              FormatText,
		Workers:             runtime.GOMAXPROCS(0),
		MaxDecompressedSize: ftr.DefaultMaxDecompressedSize,
	}
}

// Load reads a config file over the defaults. The format is chosen by
// extension: .yaml and .yml are YAML, .cue is CUE. Unknown fields are
// rejected in both.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".cue":
		err = decodeCUE(path, data, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

var cueFields = map[string]bool{
	"format":                true,
	"verbose":               true,
	"workers":               true,
	"max_decompressed_size": true,
	"database":              true,
}

func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}

	iter, err := v.Fields()
	if err != nil {
		return fmt.Errorf("config must be a CUE struct: %w", err)
	}
	for iter.Next() {
		if label := iter.Label(); !cueFields[label] {
			return fmt.Errorf("unknown config field %q", label)
		}
	}

	if err := v.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode CUE: %w", err)
	}
	return nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Format != FormatText && c.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxDecompressedSize <= 0 {
		errs = append(errs, fmt.Errorf("max_decompressed_size must be positive, got %d", c.MaxDecompressedSize))
	}
	return errors.Join(errs...)
}
