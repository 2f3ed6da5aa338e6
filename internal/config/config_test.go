package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is checked explicitly.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is English Wikipedia", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://en.wikipedia.org" {
			t.Errorf("expected BaseURL to be 'https://en.wikipedia.org', got '%s'", cfg.BaseURL)
		}
	})

	t.Run("default MaxDepth is 6", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 6 {
			t.Errorf("expected MaxDepth to be 6, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default MaxPagesFetched is 5000", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPagesFetched != 5000 {
			t.Errorf("expected MaxPagesFetched to be 5000, got %d", cfg.MaxPagesFetched)
		}
	})

	t.Run("default RequestDelay is 100ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestDelay != 100*time.Millisecond {
			t.Errorf("expected RequestDelay to be 100ms, got %v", cfg.RequestDelay)
		}
	})

	t.Run("default FetchRetryLimit is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchRetryLimit != 3 {
			t.Errorf("expected FetchRetryLimit to be 3, got %d", cfg.FetchRetryLimit)
		}
	})

	t.Run("default Workers is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 4 {
			t.Errorf("expected Workers to be 4, got %d", cfg.Workers)
		}
	})

	t.Run("default Iterations is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.Iterations != DefaultIterations {
			t.Errorf("expected %d, got %d", DefaultIterations, cfg.Iterations)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("cache and history are enabled", func(t *testing.T) {
		t.Parallel()
		if !cfg.UseCache || !cfg.SaveHistory || !cfg.Canonicalize {
			t.Errorf("expected cache, history and canonicalize enabled, got %v %v %v",
				cfg.UseCache, cfg.SaveHistory, cfg.Canonicalize)
		}
	})

	t.Run("user agent carries contact URL", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cfg.UserAgent, "https://") {
			t.Errorf("expected UserAgent with contact URL, got %q", cfg.UserAgent)
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are valid with a start and target", func(t *testing.T) {
		t.Parallel()
		c := NewConfig()
		c.StartPage = "Go"
		c.Targets = []string{"Rust"}
		if err := c.Validate(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "random start without start page", modify: func(c *Config) {
			c.StartPage = ""
			c.RandomStart = true
		}},
		{name: "zero max pages means unlimited", modify: func(c *Config) { c.MaxPagesFetched = 0 }},
		{name: "zero delay disables rate limiting", modify: func(c *Config) { c.RequestDelay = 0 }},
		{name: "missing start page", modify: func(c *Config) { c.StartPage = "" }, wantErr: ErrNoStartPage},
		{name: "start page with random", modify: func(c *Config) { c.RandomStart = true }, wantErr: ErrConflictingStart},
		{name: "no targets", modify: func(c *Config) { c.Targets = nil }, wantErr: ErrNoTarget},
		{name: "continuous without start page", modify: func(c *Config) {
			c.StartPage = ""
			c.Continuous = true
			c.Iterations = 0
			c.QueueStarts = []string{"Tea"}
			c.ShareStarts = true
		}},
		{name: "random rounds", modify: func(c *Config) {
			c.StartPage = ""
			c.RandomStart = true
			c.Iterations = 5
		}},
		{name: "start page with continuous", modify: func(c *Config) { c.Continuous = true }, wantErr: ErrConflictingStart},
		{name: "negative iterations", modify: func(c *Config) { c.Iterations = -1 }, wantErr: ErrInvalidIterations},
		{name: "unlimited iterations without continuous", modify: func(c *Config) { c.Iterations = 0 }, wantErr: ErrInvalidIterations},
		{name: "iterations from a fixed start", modify: func(c *Config) { c.Iterations = 2 }, wantErr: ErrRepeatedStart},
		{name: "queued starts without continuous", modify: func(c *Config) { c.QueueStarts = []string{"Tea"} }, wantErr: ErrQueueNeedsContinuous},
		{name: "shared starts without continuous", modify: func(c *Config) { c.ShareStarts = true }, wantErr: ErrQueueNeedsContinuous},
		{name: "zero max depth", modify: func(c *Config) { c.MaxDepth = 0 }, wantErr: ErrInvalidMaxDepth},
		{name: "negative max pages", modify: func(c *Config) { c.MaxPagesFetched = -1 }, wantErr: ErrInvalidMaxPages},
		{name: "negative delay", modify: func(c *Config) { c.RequestDelay = -time.Second }, wantErr: ErrInvalidRequestDelay},
		{name: "negative retries", modify: func(c *Config) { c.FetchRetryLimit = -1 }, wantErr: ErrInvalidRetryLimit},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "json and markdown", modify: func(c *Config) {
			c.JSONReport = true
			c.MarkdownReport = true
		}, wantErr: ErrConflictingReportFormats},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "negative cache age", modify: func(c *Config) { c.CacheMaxAge = -time.Hour }, wantErr: ErrInvalidCacheMaxAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.StartPage = "Go (programming language)"
			cfg.Targets = []string{"Rust (programming language)"}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetWikiConfig tests merging wiki profiles over the defaults.
func TestFileGetWikiConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: WikiConfig{
			UserAgent:    "Default/1.0",
			RequestDelay: 200 * time.Millisecond,
			Headers:      map[string]string{"X-Default": "1"},
		},
		Wikis: map[string]WikiConfig{
			"simple": {
				BaseURL: "https://simple.wikipedia.org",
				Workers: 2,
				Headers: map[string]string{"X-Wiki": "simple"},
			},
		},
	}

	t.Run("empty name returns defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetWikiConfig("")
		if got.UserAgent != "Default/1.0" {
			t.Errorf("expected default user agent, got %q", got.UserAgent)
		}
		if got.BaseURL != "" {
			t.Errorf("expected empty base URL, got %q", got.BaseURL)
		}
	})

	t.Run("unknown name returns defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetWikiConfig("klingon")
		if got.RequestDelay != 200*time.Millisecond {
			t.Errorf("expected default delay, got %v", got.RequestDelay)
		}
	})

	t.Run("profile overrides defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetWikiConfig("simple")
		if got.BaseURL != "https://simple.wikipedia.org" {
			t.Errorf("expected simple base URL, got %q", got.BaseURL)
		}
		if got.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", got.Workers)
		}
		if got.UserAgent != "Default/1.0" {
			t.Errorf("expected inherited user agent, got %q", got.UserAgent)
		}
		if got.Headers["X-Default"] != "1" || got.Headers["X-Wiki"] != "simple" {
			t.Errorf("expected merged headers, got %v", got.Headers)
		}
	})

	t.Run("merging does not modify defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetWikiConfig("simple")
		if _, ok := cf.Defaults.Headers["X-Wiki"]; ok {
			t.Error("expected defaults headers to be unchanged")
		}
	})
}

// TestApplyWiki tests that only set profile values change the config.
func TestApplyWiki(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.ApplyWiki(WikiConfig{
		BaseURL:  "https://de.wikipedia.org",
		MaxDepth: 4,
		Headers:  map[string]string{"Accept-Language": "de"},
		Proxy:    "127.0.0.1:1080",
	})

	if cfg.BaseURL != "https://de.wikipedia.org" {
		t.Errorf("expected German base URL, got %q", cfg.BaseURL)
	}
	if cfg.MaxDepth != 4 {
		t.Errorf("expected MaxDepth 4, got %d", cfg.MaxDepth)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected default workers, got %d", cfg.Workers)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.Headers["Accept-Language"] != "de" {
		t.Errorf("expected Accept-Language header, got %v", cfg.Headers)
	}
	if cfg.ProxyAddress != "127.0.0.1:1080" {
		t.Errorf("expected proxy address, got %q", cfg.ProxyAddress)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.wikicrawler")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikicrawler")
		content := `defaults:
  requestDelay: 250ms
  maxDepth: 5
wikis:
  simple:
    baseURL: https://simple.wikipedia.org
    workers: 8
    headers:
      Api-User-Agent: "tester@example.com"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.RequestDelay != 250*time.Millisecond {
			t.Errorf("expected default delay 250ms, got %v", cfg.Defaults.RequestDelay)
		}
		if cfg.Defaults.MaxDepth != 5 {
			t.Errorf("expected default depth 5, got %d", cfg.Defaults.MaxDepth)
		}

		wiki, ok := cfg.Wikis["simple"]
		if !ok {
			t.Fatal("expected simple in wikis")
		}
		if wiki.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", wiki.Workers)
		}
		if wiki.Headers["Api-User-Agent"] != "tester@example.com" {
			t.Errorf("expected Api-User-Agent header, got %v", wiki.Headers)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikicrawler")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Wikis map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".wikicrawler")
		if err := os.WriteFile(configPath, []byte("defaults:\n  workers: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Wikis == nil {
			t.Error("expected Wikis map to be initialized")
		}
	})
}

// TestConfigLoad tests finding a file and applying the selected profile.
func TestConfigLoad(t *testing.T) {
	t.Parallel()

	writeConfig := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "wikis.yaml")
		content := `defaults:
  maxDepth: 5
wikis:
  simple:
    baseURL: https://simple.wikipedia.org
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("applies selected profile", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = writeConfig(t)
		cfg.Wiki = "simple"

		if err := cfg.Load(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BaseURL != "https://simple.wikipedia.org" {
			t.Errorf("expected simple base URL, got %q", cfg.BaseURL)
		}
		if cfg.MaxDepth != 5 {
			t.Errorf("expected MaxDepth 5, got %d", cfg.MaxDepth)
		}
		if cfg.WikiConfigs == nil {
			t.Error("expected WikiConfigs to be set")
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = writeConfig(t)
		cfg.Wiki = "missing"

		if err := cfg.Load(); !errors.Is(err, ErrUnknownWiki) {
			t.Errorf("expected ErrUnknownWiki, got %v", err)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = filepath.Join(t.TempDir(), "absent.yaml")

		if err := cfg.Load(); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	dirs := map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	}
	for name, dir := range dirs {
		if dir == "" {
			t.Errorf("expected non-empty XDG %s dir", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("expected XDG %s dir to end in %q, got %q", name, AppName, dir)
		}
	}

	if got := DefaultMirrorDir(); filepath.Dir(got) != XDGCacheDir() {
		t.Errorf("expected mirror dir inside cache dir, got %q", got)
	}
}
