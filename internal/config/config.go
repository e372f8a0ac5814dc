// Package config handles layered YAML/TOML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Sort orders for the card list.
const (
	SortFile = "file" // Order of appearance in the input.
	SortName = "name" // Case-insensitive by card title.
)

// Config holds all vcfview configuration.
type Config struct {
	Display Display `yaml:"display" toml:"display"`
	Browse  Browse  `yaml:"browse" toml:"browse"`
	Log     Log     `yaml:"log" toml:"log"`
}

// Display holds output selection settings.
type Display struct {
	Plain            bool `yaml:"plain" toml:"plain"`                           // Force plain text output
	ShowCustomFields bool `yaml:"show_custom_fields" toml:"show_custom_fields"` // Render unrecognized fields
}

// Browse holds card list settings.
type Browse struct {
	Sort       string `yaml:"sort" toml:"sort"`               // "file" | "name"
	WrapCursor bool   `yaml:"wrap_cursor" toml:"wrap_cursor"` // Cursor wraps at list ends
}

// Log holds log file settings.
type Log struct {
	File  string `yaml:"file" toml:"file"`   // Empty disables logging
	Level string `yaml:"level" toml:"level"` // zerolog level name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Display: Display{
			Plain:            false,
			ShowCustomFields: true,
		},
		Browse: Browse{
			Sort: SortFile,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPaths returns the config layers searched by the CLI, lowest priority first.
func DefaultPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		filepath.Join(home, ".config", "vcfview", "config.yaml"),
		filepath.Join(home, ".config", "vcfview", "config.toml"),
		".vcfview.yaml",
	}
}

// Load reads a single config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file is malformed or has unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Browse.Sort {
	case SortFile, SortName:
		// valid
	default:
		return fmt.Errorf("config: browse.sort must be %q or %q, got %q", SortFile, SortName, c.Browse.Sort)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		// valid
	default:
		return fmt.Errorf("config: log.level %q is not a known level", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: VCFVIEW_PLAIN, VCFVIEW_SORT, VCFVIEW_LOG_FILE, VCFVIEW_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("VCFVIEW_PLAIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid VCFVIEW_PLAIN %q: %w", v, err)
		}
		c.Display.Plain = b
	}
	if v := os.Getenv("VCFVIEW_SORT"); v != "" {
		c.Browse.Sort = v
	}
	if v := os.Getenv("VCFVIEW_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("VCFVIEW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Display *rawDisplay `yaml:"display" toml:"display"`
	Browse  *rawBrowse  `yaml:"browse" toml:"browse"`
	Log     *rawLog     `yaml:"log" toml:"log"`
}

type rawDisplay struct {
	Plain            *bool `yaml:"plain" toml:"plain"`
	ShowCustomFields *bool `yaml:"show_custom_fields" toml:"show_custom_fields"`
}

type rawBrowse struct {
	Sort       *string `yaml:"sort" toml:"sort"`
	WrapCursor *bool   `yaml:"wrap_cursor" toml:"wrap_cursor"`
}

type rawLog struct {
	File  *string `yaml:"file" toml:"file"`
	Level *string `yaml:"level" toml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return decodeTOML(path, data)
	}
	return decodeYAML(path, data)
}

func decodeYAML(path string, data []byte) (*rawConfig, error) {
	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &raw, nil
}

func decodeTOML(path string, data []byte) (*rawConfig, error) {
	var raw rawConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: parsing %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Display != nil {
		if layer.Display.Plain != nil {
			c.Display.Plain = *layer.Display.Plain
		}
		if layer.Display.ShowCustomFields != nil {
			c.Display.ShowCustomFields = *layer.Display.ShowCustomFields
		}
	}
	if layer.Browse != nil {
		if layer.Browse.Sort != nil {
			c.Browse.Sort = *layer.Browse.Sort
		}
		if layer.Browse.WrapCursor != nil {
			c.Browse.WrapCursor = *layer.Browse.WrapCursor
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
}
