// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/logging"
	"github.com/smileynet/contactbook/internal/store"
)

// Config holds all contactbook configuration.
type Config struct {
	Store   Store   `yaml:"store"`
	Phone   Phone   `yaml:"phone"`
	Display Display `yaml:"display"`
	Log     Log     `yaml:"log"`
}

// Store holds backing-file settings.
type Store struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // "" infers from the extension; "json" | "csv"
}

// Phone holds the accepted digit-count range for phone numbers.
type Phone struct {
	MinDigits int `yaml:"min_digits"`
	MaxDigits int `yaml:"max_digits"`
}

// Display holds default list ordering.
type Display struct {
	Sort       string `yaml:"sort"` // "name" | "phone" | "email" | "recent"
	Descending bool   `yaml:"descending"`
}

// Log holds structured logging settings.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty disables logging.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			Path: "contacts.json",
		},
		Phone: Phone{
			MinDigits: contact.DefaultMinDigits,
			MaxDigits: contact.DefaultMaxDigits,
		},
		Display: Display{
			Sort: "name",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// SortOrder returns the configured default list ordering.
func (c *Config) SortOrder() (contact.SortKey, contact.Direction) {
	key, err := contact.ParseSortKey(c.Display.Sort)
	if err != nil {
		key = contact.SortKey(contact.FieldName)
	}
	if c.Display.Descending {
		return key, contact.Descending
	}
	return key, contact.Ascending
}

// Policy returns the validation policy described by the phone settings.
func (c *Config) Policy() contact.Policy {
	return contact.Policy{MinDigits: c.Phone.MinDigits, MaxDigits: c.Phone.MaxDigits}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
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
	if c.Store.Path == "" {
		return errors.New("config: store.path cannot be empty")
	}
	if c.Store.Format != "" {
		if _, err := store.DefaultRegistry().Codec(c.Store.Format); err != nil {
			return fmt.Errorf("config: store.format: %w", err)
		}
	}
	if c.Phone.MinDigits < 1 {
		return fmt.Errorf("config: phone.min_digits must be positive, got %d", c.Phone.MinDigits)
	}
	if c.Phone.MaxDigits < c.Phone.MinDigits {
		return fmt.Errorf("config: phone.max_digits (%d) must be >= phone.min_digits (%d)", c.Phone.MaxDigits, c.Phone.MinDigits)
	}
	if _, err := contact.ParseSortKey(c.Display.Sort); err != nil {
		return fmt.Errorf("config: display.sort: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTBOOK_FILE, CONTACTBOOK_FORMAT,
// CONTACTBOOK_PHONE_MIN, CONTACTBOOK_PHONE_MAX, CONTACTBOOK_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTBOOK_FILE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CONTACTBOOK_FORMAT"); v != "" {
		c.Store.Format = v
	}
	if v := os.Getenv("CONTACTBOOK_PHONE_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTBOOK_PHONE_MIN %q: %w", v, err)
		}
		c.Phone.MinDigits = n
	}
	if v := os.Getenv("CONTACTBOOK_PHONE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTBOOK_PHONE_MAX %q: %w", v, err)
		}
		c.Phone.MaxDigits = n
	}
	if v := os.Getenv("CONTACTBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store   *rawStore   `yaml:"store"`
	Phone   *rawPhone   `yaml:"phone"`
	Display *rawDisplay `yaml:"display"`
	Log     *rawLog     `yaml:"log"`
}

type rawStore struct {
	Path   *string `yaml:"path"`
	Format *string `yaml:"format"`
}

type rawPhone struct {
	MinDigits *int `yaml:"min_digits"`
	MaxDigits *int `yaml:"max_digits"`
}

type rawDisplay struct {
	Sort       *string `yaml:"sort"`
	Descending *bool   `yaml:"descending"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Store != nil {
		if layer.Store.Path != nil {
			c.Store.Path = *layer.Store.Path
		}
		if layer.Store.Format != nil {
			c.Store.Format = *layer.Store.Format
		}
	}
	if layer.Phone != nil {
		if layer.Phone.MinDigits != nil {
			c.Phone.MinDigits = *layer.Phone.MinDigits
		}
		if layer.Phone.MaxDigits != nil {
			c.Phone.MaxDigits = *layer.Phone.MaxDigits
		}
	}
	if layer.Display != nil {
		if layer.Display.Sort != nil {
			c.Display.Sort = *layer.Display.Sort
		}
		if layer.Display.Descending != nil {
			c.Display.Descending = *layer.Display.Descending
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
}
