// Package config loads application configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type SyncConfig struct {
	// ProjectID is the GCP project holding the remote document store.
	ProjectID string `mapstructure:"project_id"`

	// UserID scopes every remote document. Empty means signed out; sync
	// refuses to run.
	UserID string `mapstructure:"user_id"`
}

type BackupConfig struct {
	// Bucket is the GCS bucket snapshots are written to.
	Bucket string `mapstructure:"bucket"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Log      LogConfig      `mapstructure:"log"`
}

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the current working
// directory; a missing file is fine, defaults and environment apply.
// Environment overrides use the LEDGERLY prefix, e.g. LEDGERLY_SERVER_ADDRESS.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Every key gets a default so it is known to viper; keys without one
	// would be invisible to Unmarshal when set only through the environment.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.path", "ledgerly.db")
	v.SetDefault("sync.project_id", "")
	v.SetDefault("sync.user_id", "")
	v.SetDefault("backup.bucket", "")
	v.SetDefault("log.level", "info")

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("LEDGERLY")
	// Dots separate config sections; underscores separate env var words.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Only an explicitly named file is required to exist.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &c, nil
}
