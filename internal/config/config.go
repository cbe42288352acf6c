package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/kickshopping/internal/log"
)

type Application struct {
	Env            string        `mapstructure:"env"              json:"env"`
	BaseURL        string        `mapstructure:"base_url"         json:"base_url"`
	Variant        string        `mapstructure:"variant"          json:"variant"`
	EmailDomain    string        `mapstructure:"email_domain"     json:"email_domain"`
	FallbackUserID int           `mapstructure:"fallback_user_id" json:"fallback_user_id"`
	Timeout        time.Duration `mapstructure:"timeout"          json:"timeout"`
}

type Session struct {
	Driver    string `mapstructure:"driver"    json:"driver"`
	Path      string `mapstructure:"path"      json:"path"`
	Namespace string `mapstructure:"namespace" json:"namespace"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
}

type Log struct {
	Path string `mapstructure:"path" json:"path"`
}

type Metric struct {
	TextfilePath string `mapstructure:"textfile_path" json:"textfile_path"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Session     `mapstructure:"session"     json:"session"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Log         `mapstructure:"log"         json:"log"`
	Metric      `mapstructure:"metric"      json:"metric"`
}

var (
	once   sync.Once
	config *Config
)

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".kickshopping")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.base_url", "http://localhost:8000")
	v.SetDefault("application.variant", "catalog")
	v.SetDefault("application.email_domain", "@gmail.com")
	v.SetDefault("application.fallback_user_id", 1)
	v.SetDefault("application.timeout", time.Duration(0))
	v.SetDefault("session.driver", "file")
	v.SetDefault("session.path", filepath.Join(homeDir(), "session.yaml"))
	v.SetDefault("session.namespace", "default")
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.database", 0)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.host", "localhost")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("log.path", filepath.Join(homeDir(), "kickshopping.log"))
	v.SetDefault("metric.textfile_path", "")
}

// Load reads the named yaml config from ./env or ~/.kickshopping, or the explicit
// file when configFile is set. A missing file falls back to the defaults.
// Every key can be overridden by KICKSHOPPING_<SECTION>_<KEY>.
func Load(c context.Context, filename string, configFile string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str(log.KeyFilename, filename).
		Logger()

	v := viper.New()
	setDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(filename)
		v.SetConfigType("yaml")
		v.AddConfigPath("./env")
		v.AddConfigPath(homeDir())
	}
	v.SetEnvPrefix("KICKSHOPPING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		notFound := viper.ConfigFileNotFoundError{}
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("config file not found, using defaults")
	} else {
		logger.Info().Msg("read config")
	}

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Any(log.KeyConfig, cfg).Msg("unmarshaled config")
	return &cfg, nil
}

// InitConfig loads the process config once and exits on failure.
func InitConfig(c context.Context, filename string, configFile string) *Config {
	once.Do(func() {
		cfg, err := Load(c, filename, configFile)
		if err != nil {
			zerolog.Ctx(c).Fatal().Err(err).Msg(err.Error())
		}
		config = cfg
	})
	return config
}
