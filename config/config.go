// Package config loads trackerd settings from defaults, an optional
// YAML file and TRACKER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	HttpAddr     string `mapstructure:"httpaddr"`
	AllowOrigins string `mapstructure:"alloworigins"`
	PostgresDsn  string `mapstructure:"postgresdsn"`
	BuntdbPath   string `mapstructure:"buntdbpath"`
	Debug        bool   `mapstructure:"debug"`
	DbVerbose    bool   `mapstructure:"dbverbose"`
	Syslog       bool   `mapstructure:"syslog"`
	// Serve from in-memory stores; nothing survives a restart.
	InMem bool `mapstructure:"inmem"`
}

var ErrMissingPostgresDsn = errors.New("postgres dsn is not set (TRACKER_POSTGRES_DSN)")

func (c Config) Validate() error {
	if !c.InMem && c.PostgresDsn == "" {
		return ErrMissingPostgresDsn
	}
	if c.HttpAddr == "" {
		return errors.New("http address is empty")
	}
	return nil
}

// New returns a viper instance with defaults and env bindings set up.
// Flags may be bound on top of it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("httpaddr", ":2137")
	v.SetDefault("alloworigins", "*")
	v.SetDefault("postgresdsn", "")
	v.SetDefault("buntdbpath", "kv.db")
	v.SetDefault("debug", false)
	v.SetDefault("dbverbose", false)
	v.SetDefault("syslog", false)
	v.SetDefault("inmem", false)

	_ = v.BindEnv("httpaddr", "TRACKER_HTTP_ADDR")
	_ = v.BindEnv("alloworigins", "TRACKER_ALLOW_ORIGINS")
	_ = v.BindEnv("postgresdsn", "TRACKER_POSTGRES_DSN")
	_ = v.BindEnv("buntdbpath", "TRACKER_BUNTDB_PATH")
	_ = v.BindEnv("debug", "TRACKER_DEBUG")
	_ = v.BindEnv("dbverbose", "TRACKER_DB_VERBOSE")
	_ = v.BindEnv("syslog", "TRACKER_SYSLOG")
	_ = v.BindEnv("inmem", "TRACKER_INMEM")
	return v
}

// Load reads configFile (when not empty) and decodes the result.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
