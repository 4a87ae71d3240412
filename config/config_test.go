package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine.Namespace != "custom" {
		t.Errorf("expected default namespace custom, got %s", cfg.Engine.Namespace)
	}
	if cfg.Engine.MaxPasses != 16 {
		t.Errorf("expected default max passes 16, got %d", cfg.Engine.MaxPasses)
	}
	if cfg.Engine.OnConflict != "error" {
		t.Errorf("expected default conflict policy error, got %s", cfg.Engine.OnConflict)
	}
	if cfg.Build.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Build.Workers)
	}
	if cfg.NATS.URL != "" {
		t.Error("expected event publishing disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing namespace",
			modify:  func(c *Config) { c.Engine.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "zero max passes",
			modify:  func(c *Config) { c.Engine.MaxPasses = 0 },
			wantErr: true,
		},
		{
			name:    "unknown conflict policy",
			modify:  func(c *Config) { c.Engine.OnConflict = "merge" },
			wantErr: true,
		},
		{
			name:    "overwrite conflict policy",
			modify:  func(c *Config) { c.Engine.OnConflict = "overwrite" },
			wantErr: false,
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Build.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "bad debounce",
			modify:  func(c *Config) { c.Watch.Debounce = "soon" },
			wantErr: true,
		},
		{
			name:    "short engine version",
			modify:  func(c *Config) { c.Project.MinEngineVersion = []int{1, 19} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
engine:
  namespace: acme
  max_passes: 4
  on_conflict: overwrite
plugins:
  dirs: [plugins]
build:
  workers: 8
watch:
  debounce: 250ms
nats:
  url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Engine.Namespace != "acme" {
		t.Errorf("expected namespace acme, got %s", cfg.Engine.Namespace)
	}
	if cfg.Engine.MaxPasses != 4 {
		t.Errorf("expected max passes 4, got %d", cfg.Engine.MaxPasses)
	}
	if cfg.Build.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Build.Workers)
	}
	if cfg.Build.Indent != 4 {
		t.Errorf("expected default indent to survive, got %d", cfg.Build.Indent)
	}
	if cfg.Watch.DebounceDuration() != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", cfg.Watch.DebounceDuration())
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
}

func TestWatchConfig_DebounceDuration(t *testing.T) {
	tests := []struct {
		delay  string
		expect time.Duration
	}{
		{"100ms", 100 * time.Millisecond},
		{"", 500 * time.Millisecond},
		{"invalid", 500 * time.Millisecond},
		{"-1s", 500 * time.Millisecond},
	}

	for _, tt := range tests {
		c := WatchConfig{Debounce: tt.delay}
		if got := c.DebounceDuration(); got != tt.expect {
			t.Errorf("DebounceDuration(%q) = %v, want %v", tt.delay, got, tt.expect)
		}
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Plugins.Dirs = []string{"/user/plugins"}
	override := &Config{
		Engine:  EngineConfig{Namespace: "acme"},
		Plugins: PluginsConfig{Dirs: []string{"/project/plugins"}},
		Metrics: MetricsConfig{Addr: ":9090"},
	}

	base.Merge(override)

	if base.Engine.Namespace != "acme" {
		t.Errorf("expected namespace acme, got %s", base.Engine.Namespace)
	}
	// MaxPasses should remain from base since override didn't set it
	if base.Engine.MaxPasses != 16 {
		t.Errorf("expected max passes to remain default, got %d", base.Engine.MaxPasses)
	}
	if len(base.Plugins.Dirs) != 2 || base.Plugins.Dirs[1] != "/project/plugins" {
		t.Errorf("expected plugin dirs to accumulate, got %v", base.Plugins.Dirs)
	}
	if base.Metrics.Addr != ":9090" {
		t.Errorf("expected metrics addr :9090, got %s", base.Metrics.Addr)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Engine.Namespace = "saved"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Engine.Namespace != "saved" {
		t.Errorf("expected namespace saved, got %s", loaded.Engine.Namespace)
	}
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "packs", "frog_BP")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := os.MkdirAll(filepath.Dir(userPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userPath, []byte("engine:\n  max_passes: 8\nbuild:\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("build:\n  workers: 6\nplugins:\n  dirs: [components]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	l := &Loader{logger: slog.Default(), homeDir: home, workDir: work}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.MaxPasses != 8 {
		t.Errorf("expected user max passes 8, got %d", cfg.Engine.MaxPasses)
	}
	if cfg.Build.Workers != 6 {
		t.Errorf("expected project workers 6, got %d", cfg.Build.Workers)
	}
	want := filepath.Join(project, "components")
	if len(cfg.Plugins.Dirs) != 1 || cfg.Plugins.Dirs[0] != want {
		t.Errorf("expected plugin dir %s, got %v", want, cfg.Plugins.Dirs)
	}
	if cfg.Project.ProjectsPath != work {
		t.Errorf("expected projects path to default to the working dir, got %s", cfg.Project.ProjectsPath)
	}

	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	if err := os.WriteFile(explicit, []byte("engine:\n  on_conflict: bogus\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(explicit); err == nil {
		t.Error("expected invalid explicit config to fail validation")
	}
	if _, err := l.Load(filepath.Join(home, "missing.yaml")); err == nil {
		t.Error("expected missing explicit config to fail")
	}
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	l := &Loader{logger: slog.Default(), homeDir: t.TempDir()}

	path, err := l.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("created config does not load: %v", err)
	}
}
