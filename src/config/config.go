// Package config is resposible for finding, parsing and merging the Aquarelle user
// configuration with the default one. The default configuration is compiled into
// the binary.
//
// Linux/BSD configurations should be in $HOME/.aquarelle/config.json
// Windows configurations should be in %APPDATA%/aquarelle/config.json
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"reflect"
	"time"

	"github.com/spf13/afero"

	"github.com/ironsmile/aquarelle/src/helpers"
)

// ConfigName is the name of the user configuration file in the user directory.
const ConfigName = "config.json"

//go:embed config.default.json
var defaultConfig []byte

// Config represents everything which could be found in the config.json file.
type Config struct {
	Listen         string `json:"listen"`
	UserPath       string `json:"user_path"`
	LogFile        string `json:"log_file"`
	LogMaxSizeMB   int    `json:"log_max_size_mb"`
	SqliteDatabase string `json:"sqlite_database"`

	// DiscogsURL is the base URL of the site searched for artwork.
	DiscogsURL string `json:"discogs_url"`
	UserAgent  string `json:"user_agent"`

	// RequestDelay is the minimal time between two requests to DiscogsURL
	// in milliseconds.
	RequestDelay int `json:"request_delay"`

	// RequestTimeout is in seconds.
	RequestTimeout int `json:"request_timeout"`

	ReadTimeout  int `json:"read_timeout"`
	WriteTimeout int `json:"write_timeout"`

	// FaceCascade is a path to a pigo face detection cascade file. Artwork is
	// cropped without face detection when it is empty or could not be loaded.
	FaceCascade string `json:"face_cascade"`

	// Retries is how many times a failed artwork download is retried while
	// processing the whole catalog.
	Retries int `json:"retries"`
}

// FindAndParse reads the default configuration and merges the user configuration
// on top of it. When `userConfig` is empty the user configuration is looked for in
// the user directory and created from the default when missing.
func (cfg *Config) FindAndParse(fs afero.Fs, userConfig string) error {
	if err := cfg.parse(defaultConfig); err != nil {
		return fmt.Errorf("parsing default config: %w", err)
	}

	if userConfig == "" {
		userConfig = cfg.UserConfigPath()

		if !cfg.UserConfigExists(fs) {
			if err := cfg.CopyDefaultOverUser(fs); err != nil {
				return err
			}
		}
	}

	usrData, err := afero.ReadFile(fs, userConfig)
	if err != nil {
		return fmt.Errorf("reading user config: %w", err)
	}

	usrCfg := new(Config)
	if err := usrCfg.parse(usrData); err != nil {
		return fmt.Errorf("parsing %s: %w", userConfig, err)
	}

	cfg.merge(usrCfg)

	return nil
}

func (cfg *Config) parse(data []byte) error {
	return json.Unmarshal(data, cfg)
}

// Merges an other config on top of itself. Only non-zero values will be merged.
func (cfg *Config) merge(merged *Config) {
	cfgVal := reflect.ValueOf(cfg).Elem()
	mergedVal := reflect.ValueOf(merged).Elem()

	for i := 0; i < mergedVal.NumField(); i++ {
		mergedField := mergedVal.Field(i)
		if !mergedField.IsValid() || mergedField.IsZero() {
			continue
		}

		cfgField := cfgVal.Field(i)
		if !cfgField.CanSet() {
			continue
		}

		cfgField.Set(mergedField)
	}
}

// UserDir returns the directory in which the user configuration, the database and
// the logs are kept.
func (cfg *Config) UserDir() string {
	if len(cfg.UserPath) > 0 {
		if filepath.IsAbs(cfg.UserPath) {
			return cfg.UserPath
		}
		log.Printf("User path %s was invalid as it was not rooted", cfg.UserPath)
	}

	path, err := helpers.ProjectUserPath()
	if err != nil {
		log.Println(err)
		return ""
	}
	return path
}

// UserConfigPath returns the full path to the place where the user's configuration
// file should be.
func (cfg *Config) UserConfigPath() string {
	return filepath.Join(cfg.UserDir(), ConfigName)
}

// DatabasePath returns the absolute path of the SQLite database file.
func (cfg *Config) DatabasePath() string {
	return helpers.AbsolutePath(cfg.SqliteDatabase, cfg.UserDir())
}

// LogFilePath returns the absolute path of the log file.
func (cfg *Config) LogFilePath() string {
	return helpers.AbsolutePath(cfg.LogFile, cfg.UserDir())
}

// UserConfigExists returns true if the user configuration is present and in order.
// Otherwise false.
func (cfg *Config) UserConfigExists(fs afero.Fs) bool {
	st, err := fs.Stat(cfg.UserConfigPath())
	if err != nil {
		return false
	}
	return !st.IsDir()
}

// CopyDefaultOverUser will create (or replace if neccessery) the user configuration
// using the default config compiled into the binary.
func (cfg *Config) CopyDefaultOverUser(fs afero.Fs) error {
	userConfig := cfg.UserConfigPath()

	if err := fs.MkdirAll(filepath.Dir(userConfig), 0700); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}

	if err := afero.WriteFile(fs, userConfig, defaultConfig, 0600); err != nil {
		return fmt.Errorf("creating user config: %w", err)
	}

	return nil
}

// RequestDelayDuration returns RequestDelay as time.Duration.
func (cfg *Config) RequestDelayDuration() time.Duration {
	return time.Duration(cfg.RequestDelay) * time.Millisecond
}

// RequestTimeoutDuration returns RequestTimeout as time.Duration.
func (cfg *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(cfg.RequestTimeout) * time.Second
}
