package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
)

// maxRecentFiles caps the recent-files list
const maxRecentFiles = 10

// TimeSignatureConfig is the time signature written into new files
type TimeSignatureConfig struct {
	Numerator   uint8 `json:"numerator"`
	Denominator uint8 `json:"denominator"`
}

// Config is the main configuration structure
type Config struct {
	OutputPort           string              `json:"outputPort,omitempty"`
	Palette              string              `json:"palette,omitempty"` // path to a .gpl file, empty for built-in
	Debug                bool                `json:"debug,omitempty"`
	DefaultTempo         uint16              `json:"defaultTempo,omitempty"`
	DefaultTimeSignature TimeSignatureConfig `json:"defaultTimeSignature"`
	NoteLength           uint64              `json:"noteLength,omitempty"` // ticks
	NoteVelocity         uint8               `json:"noteVelocity,omitempty"`
	RecentFiles          []string            `json:"recentFiles,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DefaultTempo:         120,
		DefaultTimeSignature: TimeSignatureConfig{Numerator: 4, Denominator: 4},
		NoteLength:           480,
		NoteVelocity:         100,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midiedit"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	return cfg, nil
}

// fillDefaults repairs zero values that would make editing impossible
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.DefaultTempo == 0 {
		c.DefaultTempo = def.DefaultTempo
	}
	if c.DefaultTimeSignature.Numerator == 0 || c.DefaultTimeSignature.Denominator == 0 {
		c.DefaultTimeSignature = def.DefaultTimeSignature
	}
	if c.NoteLength == 0 {
		c.NoteLength = def.NoteLength
	}
	if c.NoteVelocity == 0 || c.NoteVelocity > 127 {
		c.NoteVelocity = def.NoteVelocity
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AddRecentFile moves path to the front of the recent list
func (c *Config) AddRecentFile(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.RecentFiles = slices.DeleteFunc(c.RecentFiles, func(p string) bool { return p == path })
	c.RecentFiles = slices.Insert(c.RecentFiles, 0, path)
	if len(c.RecentFiles) > maxRecentFiles {
		c.RecentFiles = c.RecentFiles[:maxRecentFiles]
	}
}
