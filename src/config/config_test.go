package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestFindTheRighConfigFile(t *testing.T) {
	cfg := new(Config)
	cfg.UserPath = filepath.FromSlash("/some/path")

	found := cfg.UserConfigPath()
	expected := filepath.Join(cfg.UserPath, "config.json")

	if found != expected {
		t.Errorf("Expected %s but found %s", expected, found)
	}

	cfg.UserPath = "relative/path"
	found = cfg.UserConfigPath()
	if !strings.HasSuffix(found, filepath.Join(".aquarelle", "config.json")) {
		t.Errorf("relative user path was not ignored: %s", found)
	}

	cfg.UserPath = ""
	found = cfg.UserConfigPath()

	if !filepath.IsAbs(found) {
		t.Errorf("User config path was not rooted: %s", found)
	}
}

func TestMergingConfigs(t *testing.T) {
	cfg := new(Config)
	merged := new(Config)

	cfg.Retries = 1

	cfg.merge(merged)

	if cfg.Retries != 1 {
		t.Errorf("Zero value from the merged has been copied over")
	}

	merged.Listen = ":http"

	cfg.merge(merged)

	if cfg.Listen != ":http" {
		t.Errorf("NonZero value has not been copied over")
	}

	cfg.Listen = ":80"
	cfg.LogFile = "logfile"
	cfg.RequestDelay = 1000
	cfg.RequestTimeout = 30
	cfg.SqliteDatabase = "aquarelle.db"
	cfg.UserAgent = "default agent"

	merged.Listen = ":8080"
	merged.DiscogsURL = "http://127.0.0.1:8000"
	merged.RequestDelay = 200
	merged.Retries = 3

	cfg.merge(merged)

	if cfg.Listen != ":8080" {
		t.Errorf("Listen was %s", cfg.Listen)
	}

	if cfg.DiscogsURL != "http://127.0.0.1:8000" {
		t.Errorf("DiscogsURL was %s", cfg.DiscogsURL)
	}

	if cfg.RequestDelayDuration() != 200*time.Millisecond {
		t.Errorf("RequestDelay was %d", cfg.RequestDelay)
	}

	if cfg.RequestTimeoutDuration() != 30*time.Second {
		t.Errorf("RequestTimeout was %d", cfg.RequestTimeout)
	}

	if cfg.Retries != 3 {
		t.Errorf("Retries was %d", cfg.Retries)
	}

	if cfg.SqliteDatabase != "aquarelle.db" {
		t.Errorf("SqliteDatabase was %s", cfg.SqliteDatabase)
	}

	if cfg.UserAgent != "default agent" {
		t.Errorf("UserAgent was %s", cfg.UserAgent)
	}
}

// TestFindAndParseCreatesUserConfig makes sure the default config is copied in
// the user directory on the first run.
func TestFindAndParseCreatesUserConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	userDir := filepath.FromSlash("/home/user/.aquarelle")

	cfg := &Config{UserPath: userDir}
	if cfg.UserConfigExists(fs) {
		t.Fatalf("user config was not expected to exist yet")
	}

	if err := cfg.CopyDefaultOverUser(fs); err != nil {
		t.Fatalf("copying default config: %s", err)
	}

	if !cfg.UserConfigExists(fs) {
		t.Errorf("user config was expected to exist after copying it")
	}

	parsed := new(Config)
	if err := parsed.FindAndParse(fs, cfg.UserConfigPath()); err != nil {
		t.Fatalf("parsing config: %s", err)
	}

	if parsed.DiscogsURL != "https://www.discogs.com" {
		t.Errorf("unexpected default discogs_url: %s", parsed.DiscogsURL)
	}

	if parsed.Retries != 1 {
		t.Errorf("expected one retry by default but got %d", parsed.Retries)
	}

	if parsed.RequestDelayDuration() != time.Second {
		t.Errorf("expected one second delay by default but got %s",
			parsed.RequestDelayDuration())
	}
}

// TestFindAndParseUserValues checks that user values override the defaults.
func TestFindAndParseUserValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	userConfig := filepath.FromSlash("/etc/aquarelle.json")

	err := afero.WriteFile(fs, userConfig, []byte(`{
		"user_path": "/var/lib/aquarelle",
		"sqlite_database": "artwork.db",
		"retries": 2
	}`), 0600)
	if err != nil {
		t.Fatalf("writing user config: %s", err)
	}

	cfg := new(Config)
	if err := cfg.FindAndParse(fs, userConfig); err != nil {
		t.Fatalf("parsing config: %s", err)
	}

	if cfg.Retries != 2 {
		t.Errorf("Retries was %d", cfg.Retries)
	}

	expectedDB := filepath.Join(filepath.FromSlash("/var/lib/aquarelle"), "artwork.db")
	if cfg.DatabasePath() != expectedDB {
		t.Errorf("expected database path %s but got %s", expectedDB, cfg.DatabasePath())
	}

	if cfg.UserAgent == "" {
		t.Errorf("default user agent was not kept")
	}

	if err := cfg.FindAndParse(fs, "/not/existing.json"); err == nil {
		t.Errorf("expected an error for missing user config")
	}

	if err := afero.WriteFile(fs, userConfig, []byte(`{not json`), 0600); err != nil {
		t.Fatalf("writing user config: %s", err)
	}
	if err := new(Config).FindAndParse(fs, userConfig); err == nil {
		t.Errorf("expected an error for broken user config")
	}
}
