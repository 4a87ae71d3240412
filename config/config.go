// Package config provides configuration loading and management for addonsmith.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete addonsmith configuration
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Plugins   PluginsConfig   `yaml:"plugins"`
	Templates TemplatesConfig `yaml:"templates"`
	Project   ProjectConfig   `yaml:"project"`
	Build     BuildConfig     `yaml:"build"`
	Watch     WatchConfig     `yaml:"watch"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// EngineConfig configures component expansion
type EngineConfig struct {
	// Namespace prefixes virtual component keys (default: custom)
	Namespace string `yaml:"namespace"`
	// MaxPasses caps fixed-point expansion passes per location (default: 16)
	MaxPasses int `yaml:"max_passes"`
	// OnConflict is "error" or "overwrite" (default: error)
	OnConflict string `yaml:"on_conflict"`
}

// PluginsConfig configures declarative component discovery
type PluginsConfig struct {
	// Dirs are searched for component plugin files, in order
	Dirs []string `yaml:"dirs"`
	// Patterns select plugin files inside each dir (doublestar globs)
	Patterns []string `yaml:"patterns"`
}

// TemplatesConfig configures extra asset templates
type TemplatesConfig struct {
	Dirs []string `yaml:"dirs"`
}

// ProjectConfig configures project scaffolding
type ProjectConfig struct {
	// ProjectsPath is where new projects are created (default: cwd)
	ProjectsPath string `yaml:"projects_path"`
	// FormatVersion is written into generated behavior files
	FormatVersion string `yaml:"format_version"`
	// MinEngineVersion is written into pack manifests
	MinEngineVersion []int `yaml:"min_engine_version"`
}

// BuildConfig configures the build command
type BuildConfig struct {
	// Workers is the number of files built concurrently
	Workers int `yaml:"workers"`
	// Indent is the JSON indent width of written files
	Indent int `yaml:"indent"`
	// Include are the default globs built when none are given
	Include []string `yaml:"include"`
}

// WatchConfig configures file watching
type WatchConfig struct {
	// Debounce is how long to wait for more changes before rebuilding
	Debounce string `yaml:"debounce"`
	// Extensions lists the file extensions that trigger rebuilds
	Extensions []string `yaml:"extensions"`
	// ExcludeDirs lists directory names that are never watched
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// NATSConfig configures build event publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// SubjectPrefix prefixes build event subjects
	SubjectPrefix string `yaml:"subject_prefix"`
	// Records keeps build records in JetStream KV when true
	Records bool `yaml:"records"`
}

// MetricsConfig configures Prometheus exposition
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Namespace:  "custom",
			MaxPasses:  16,
			OnConflict: "error",
		},
		Plugins: PluginsConfig{
			Dirs:     nil,
			Patterns: []string{"**/*.yaml", "**/*.yml"},
		},
		Project: ProjectConfig{
			ProjectsPath:     "",
			FormatVersion:    "1.19.0",
			MinEngineVersion: []int{1, 19, 0},
		},
		Build: BuildConfig{
			Workers: 4,
			Indent:  4,
			Include: []string{"**/entities/**/*.json", "**/items/**/*.json", "**/blocks/**/*.json"},
		},
		Watch: WatchConfig{
			Debounce:    "500ms",
			Extensions:  []string{".json"},
			ExcludeDirs: []string{".git", "node_modules", "build"},
		},
		NATS: NATSConfig{
			URL:           "",
			SubjectPrefix: "addonsmith.build",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.Namespace == "" {
		return fmt.Errorf("engine.namespace is required")
	}
	if c.Engine.MaxPasses < 1 {
		return fmt.Errorf("engine.max_passes must be at least 1")
	}
	if c.Engine.OnConflict != "error" && c.Engine.OnConflict != "overwrite" {
		return fmt.Errorf("engine.on_conflict must be \"error\" or \"overwrite\"")
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1")
	}
	if c.Build.Indent < 0 || c.Build.Indent > 8 {
		return fmt.Errorf("build.indent must be between 0 and 8")
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
	}
	if n := len(c.Project.MinEngineVersion); n != 0 && n != 3 {
		return fmt.Errorf("project.min_engine_version must have 3 elements")
	}
	return nil
}

// DebounceDuration returns the watch debounce as a duration.
func (c *WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadOverlay parses a YAML file onto an empty Config, so only the keys the
// file sets are non-zero. Environment references are expanded first.
func loadOverlay(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	config.resolvePaths(filepath.Dir(path))
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// resolvePaths makes relative directories absolute against base.
func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, d := range c.Plugins.Dirs {
		c.Plugins.Dirs[i] = abs(d)
	}
	for i, d := range c.Templates.Dirs {
		c.Templates.Dirs[i] = abs(d)
	}
	c.Project.ProjectsPath = abs(c.Project.ProjectsPath)
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Engine
	if other.Engine.Namespace != "" {
		c.Engine.Namespace = other.Engine.Namespace
	}
	if other.Engine.MaxPasses != 0 {
		c.Engine.MaxPasses = other.Engine.MaxPasses
	}
	if other.Engine.OnConflict != "" {
		c.Engine.OnConflict = other.Engine.OnConflict
	}

	// Plugins and templates accumulate across layers
	c.Plugins.Dirs = append(c.Plugins.Dirs, other.Plugins.Dirs...)
	if len(other.Plugins.Patterns) > 0 {
		c.Plugins.Patterns = other.Plugins.Patterns
	}
	c.Templates.Dirs = append(c.Templates.Dirs, other.Templates.Dirs...)

	// Project
	if other.Project.ProjectsPath != "" {
		c.Project.ProjectsPath = other.Project.ProjectsPath
	}
	if other.Project.FormatVersion != "" {
		c.Project.FormatVersion = other.Project.FormatVersion
	}
	if len(other.Project.MinEngineVersion) > 0 {
		c.Project.MinEngineVersion = other.Project.MinEngineVersion
	}

	// Build
	if other.Build.Workers != 0 {
		c.Build.Workers = other.Build.Workers
	}
	if other.Build.Indent != 0 {
		c.Build.Indent = other.Build.Indent
	}
	if len(other.Build.Include) > 0 {
		c.Build.Include = other.Build.Include
	}

	// Watch
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.SubjectPrefix != "" {
		c.NATS.SubjectPrefix = other.NATS.SubjectPrefix
	}
	if other.NATS.Records {
		c.NATS.Records = true
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
