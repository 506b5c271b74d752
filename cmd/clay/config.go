package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorldConfig is one world entry in clay.yaml
type WorldConfig struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type,omitempty"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Character string `yaml:"character,omitempty"`
	Password  string `yaml:"password,omitempty"`
	SSL       bool   `yaml:"ssl,omitempty"`
}

// Config is the host configuration read from ~/.clay/clay.yaml
type Config struct {
	Worlds        []WorldConfig `yaml:"worlds"`
	Autoload      []string      `yaml:"autoload"`
	Watch         bool          `yaml:"watch"`
	LoopLimit     int           `yaml:"loop_limit"`
	MaxMacroDepth int           `yaml:"max_macro_depth"`
	Debug         []string      `yaml:"debug"`
	ScriptDir     string        `yaml:"script_dir"`
	Background    string        `yaml:"term_background"`
	HistoryFile   string        `yaml:"history_file"`
	KeyBuffer     int           `yaml:"key_buffer"`
}

const defaultConfig = `# Clay configuration
#
# worlds:
#   - name: mud
#     host: mud.example.org
#     port: 4000
#     ssl: false
worlds: []

# scripts loaded at startup, relative to script_dir
autoload:
  - clayrc.tf

# reload autoload scripts when they change on disk
watch: false

loop_limit: 10000
max_macro_depth: 64

# debug log categories: parse, command, variable, macro, trigger, flow,
# hook, key, io, world, app, or all
debug: []

script_dir: ~/.clay
term_background: auto
history_file: ~/.clay/history
key_buffer: 64
`

// defaults returns the configuration used when the file leaves a field unset
func defaults() *Config {
	return &Config{
		LoopLimit:     10000,
		MaxMacroDepth: 64,
		ScriptDir:     "~/.clay",
		Background:    "auto",
		HistoryFile:   "~/.clay/history",
		KeyBuffer:     64,
	}
}

// configDir returns ~/.clay, or "" when the home directory is unknown
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".clay")
}

// expandHome replaces a leading "~" with the home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// createDefaultConfig writes the default clay.yaml if none exists
func createDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfig), 0644)
}

// loadConfig reads path over the defaults. A missing file is created first.
func loadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	if err := createDefaultConfig(path); err != nil {
		return cfg, fmt.Errorf("cannot create %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := parseConfig(data, cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parseConfig decodes YAML into cfg, keeping defaults for zero fields
func parseConfig(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	d := defaults()
	if cfg.LoopLimit <= 0 {
		cfg.LoopLimit = d.LoopLimit
	}
	if cfg.MaxMacroDepth <= 0 {
		cfg.MaxMacroDepth = d.MaxMacroDepth
	}
	if cfg.KeyBuffer <= 0 {
		cfg.KeyBuffer = d.KeyBuffer
	}
	seen := make(map[string]bool)
	for i, w := range cfg.Worlds {
		if w.Name == "" {
			return fmt.Errorf("world %d has no name", i+1)
		}
		if seen[w.Name] {
			return fmt.Errorf("world %q is listed twice", w.Name)
		}
		seen[w.Name] = true
		if w.Host == "" || w.Port <= 0 {
			return fmt.Errorf("world %q needs host and port", w.Name)
		}
	}
	return nil
}

// autoloadPaths resolves the autoload list against the script directory
func (c *Config) autoloadPaths() []string {
	dir := expandHome(c.ScriptDir)
	paths := make([]string, 0, len(c.Autoload))
	for _, p := range c.Autoload {
		p = expandHome(p)
		if !filepath.IsAbs(p) && dir != "" {
			p = filepath.Join(dir, p)
		}
		paths = append(paths, p)
	}
	return paths
}
