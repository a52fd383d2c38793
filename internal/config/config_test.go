package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "master", cfg.Ref)
	assert.Equal(t, "/tree-list/branch/{ref}", cfg.ListPath)
	assert.Equal(t, "/raw/branch/{ref}/", cfg.RawPath)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 16, cfg.HTTP.MaxIdleConnsPerHost)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
repo: https://gitea.example.com/owner/repo
ref: main
dest: ./checkout
workers: 8
manifest: manifest.json
progress: true
progress_bar: true
http:
  timeout: 5s
  max_idle_conns_per_host: 4
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gitea.example.com/owner/repo", cfg.Repo)
	assert.Equal(t, "main", cfg.Ref)
	assert.Equal(t, "./checkout", cfg.Dest)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "manifest.json", cfg.Manifest)
	assert.True(t, cfg.Progress)
	assert.True(t, cfg.Bar)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 4, cfg.HTTP.MaxIdleConnsPerHost)

	// Unset keys keep their defaults.
	assert.Equal(t, "/tree-list/branch/{ref}", cfg.ListPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REPOSLURP_REPO", "https://gitea.example.com/a/b")
	t.Setenv("REPOSLURP_WORKERS", "64")
	t.Setenv("REPOSLURP_PROGRESS", "1")
	t.Setenv("REPOSLURP_HTTP_TIMEOUT", "500ms")
	t.Setenv("REPOSLURP_RAW_PATH", "/raw/{ref}/")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "https://gitea.example.com/a/b", cfg.Repo)
	assert.Equal(t, 64, cfg.Workers)
	assert.True(t, cfg.Progress)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.Timeout)
	assert.Equal(t, "/raw/{ref}/", cfg.RawPath)
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("REPOSLURP_WORKERS", "many")

	cfg := Default()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "workers: 8\nref: main\n")
	t.Setenv("REPOSLURP_WORKERS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Workers, "env overrides file")
	assert.Equal(t, "main", cfg.Ref, "file overrides defaults")

	cfg = cfg.Merge(Config{Workers: 2})
	assert.Equal(t, 2, cfg.Workers, "flags override env")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "master", cfg.Ref)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Repo = "https://gitea.example.com/owner/repo"
	valid.Dest = "checkout"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing repo", func(c *Config) { c.Repo = "" }, true},
		{"missing dest", func(c *Config) { c.Dest = "" }, true},
		{"invalid workers", func(c *Config) { c.Workers = 0 }, true},
		{"invalid timeout", func(c *Config) { c.HTTP.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Repo = "https://gitea.example.com/owner/repo"
	base.Dest = "checkout"

	merged := base.Merge(Config{Workers: 32})

	assert.Equal(t, "https://gitea.example.com/owner/repo", merged.Repo)
	assert.Equal(t, "checkout", merged.Dest)
	assert.Equal(t, 30*time.Second, merged.HTTP.Timeout)
	assert.Equal(t, 32, merged.Workers)
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadYAMLInvalid(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "invalid: [yaml: content"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "http:\n  timeout: soon\n"))
	assert.Error(t, err)
}
