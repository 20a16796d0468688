// Package config loads pagedoc settings from defaults, an optional TOML file
// and PAGEDOC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pagedoc/internal/dbclient"
	"pagedoc/internal/editor"
	"pagedoc/internal/history"
	"pagedoc/internal/pagination"
	"pagedoc/internal/service"
	"pagedoc/internal/storage"
)

// Config holds application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	History    HistoryConfig    `mapstructure:"history"`
	Focus      FocusConfig      `mapstructure:"focus"`
	Autosave   AutosaveConfig   `mapstructure:"autosave"`
	Watch      WatchConfig      `mapstructure:"watch"`
}

// StorageConfig holds the local SQLite file and the optional remote backend.
// An empty driver disables the remote backend. When PasswordKey is set the
// backend password is read from the secret store instead of the config.
type StorageConfig struct {
	Path            string `mapstructure:"path"`
	dbclient.Config `mapstructure:",squash"`
	PasswordKey     string `mapstructure:"password_key"`
	SecretStore     string `mapstructure:"secret_store"`
}

// PaginationConfig holds the packing parameters and the relayout debounce.
type PaginationConfig struct {
	pagination.Params `mapstructure:",squash"`
	Debounce          time.Duration `mapstructure:"debounce"`
}

// HistoryConfig holds undo settings. Persist stores every committed snapshot.
type HistoryConfig struct {
	Depth    int           `mapstructure:"depth"`
	Debounce time.Duration `mapstructure:"debounce"`
	Persist  bool          `mapstructure:"persist"`
}

type FocusConfig struct {
	Retries int `mapstructure:"retries"`
}

// AutosaveConfig holds the cron schedule. Empty disables autosave.
type AutosaveConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// WatchConfig names a document file to live-reload.
type WatchConfig struct {
	Path string `mapstructure:"path"`
}

// DataDir is where pagedoc keeps its database by default.
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "pagedoc")
}

func setDefaults(v *viper.Viper) {
	p := pagination.DefaultParams()

	v.SetDefault("storage.path", filepath.Join(DataDir(), "pagedoc.db"))
	v.SetDefault("storage.driver", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.host", "")
	v.SetDefault("storage.port", 0)
	v.SetDefault("storage.username", "")
	v.SetDefault("storage.password", "")
	v.SetDefault("storage.database", "")
	v.SetDefault("storage.ssl_mode", "")
	v.SetDefault("storage.table", "")
	v.SetDefault("storage.password_key", "")
	v.SetDefault("storage.secret_store", "")

	v.SetDefault("pagination.capacity", p.Capacity)
	v.SetDefault("pagination.safety_margin", p.SafetyMargin)
	v.SetDefault("pagination.gap", p.Gap)
	v.SetDefault("pagination.tall_threshold", p.TallThreshold)
	v.SetDefault("pagination.fill_ratio", p.FillRatio)
	v.SetDefault("pagination.default_height", p.DefaultHeight)
	v.SetDefault("pagination.debounce", 20*time.Millisecond)

	v.SetDefault("history.depth", storage.DefaultHistoryDepth)
	v.SetDefault("history.debounce", time.Second)
	v.SetDefault("history.persist", false)

	v.SetDefault("focus.retries", 5)
	v.SetDefault("autosave.schedule", service.DefaultAutosaveSchedule)
	v.SetDefault("watch.path", "")
}

// Load reads configuration from file and env. An empty file falls back to
// $PAGEDOC_CONFIG, then ~/.config/pagedoc/config.toml when present. Env var
// overrides use prefix PAGEDOC_, e.g. PAGEDOC_PAGINATION_CAPACITY.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if file == "" {
		file = os.Getenv("PAGEDOC_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".config", "pagedoc"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PAGEDOC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// EditorOptions is the editor template every opened document starts from.
func (c Config) EditorOptions() editor.Options {
	params := c.Pagination.Params
	return editor.Options{
		Params:        &params,
		PaginateDelay: c.Pagination.Debounce,
		History: history.Options{
			Depth:    c.History.Depth,
			Debounce: c.History.Debounce,
		},
		FocusRetries: c.Focus.Retries,
	}
}
