// Package config resolves settings from defaults, an optional YAML file,
// a .env file, FREENOTE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freenote/freenote/internal/api"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyServerURL        = "server.url"
	KeyServerToken      = "server.token"
	KeyServerUser       = "server.user"
	KeyHTTPTimeout      = "http.timeout"
	KeyHTTPMaxRetries   = "http.max_retries"
	KeyAutosaveInterval = "autosave.interval"
	KeyStatusTTL        = "status.ttl"
	KeyLogFile          = "log.file"
	KeyLogLevel         = "log.level"
	KeyServeAddr        = "serve.addr"
	KeyServeDriver      = "serve.driver"
	KeyServeDB          = "serve.db"
	KeyServeDSN         = "serve.dsn"
	KeyServeTokenHash   = "serve.token_hash"
)

// Storage drivers for the reference server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the resolved configuration.
type Config struct {
	Server   ServerConfig
	HTTP     HTTPConfig
	Autosave time.Duration
	Status   time.Duration
	Log      LogConfig
	Serve    ServeConfig

	// File is the config file that was read, if any.
	File string
}

type ServerConfig struct {
	URL   string
	Token string
	User  string
}

type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
}

type LogConfig struct {
	File  string // "" disables logging, "-" writes to stderr
	Level string
}

type ServeConfig struct {
	Addr      string
	Driver    string
	DB        string
	DSN       string
	TokenHash string
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path. When empty,
	// ~/.freenote/config.yaml is read if it exists.
	ConfigFile string

	// EnvFile is loaded into the environment first. Defaults to ".env";
	// a missing file is ignored.
	EnvFile string

	// Flags binds command-line flags to keys.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	def := api.DefaultConfig()
	v.SetDefault(KeyServerURL, def.BaseURL)
	v.SetDefault(KeyServerToken, "")
	v.SetDefault(KeyServerUser, "")
	v.SetDefault(KeyHTTPTimeout, def.Timeout)
	v.SetDefault(KeyHTTPMaxRetries, def.MaxRetries)
	v.SetDefault(KeyAutosaveInterval, 5*time.Second)
	v.SetDefault(KeyStatusTTL, 3*time.Second)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyServeAddr, ":5000")
	v.SetDefault(KeyServeDriver, DriverSQLite)
	v.SetDefault(KeyServeDB, "freenote.db")
	v.SetDefault(KeyServeDSN, "")
	v.SetDefault(KeyServeTokenHash, "")
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FREENOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
	} else if dir, err := DefaultDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	cfg := decode(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, ignoring files, the
// environment and flags.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return decode(v)
}

func decode(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			URL:   v.GetString(KeyServerURL),
			Token: v.GetString(KeyServerToken),
			User:  v.GetString(KeyServerUser),
		},
		HTTP: HTTPConfig{
			Timeout:    v.GetDuration(KeyHTTPTimeout),
			MaxRetries: v.GetInt(KeyHTTPMaxRetries),
		},
		Autosave: v.GetDuration(KeyAutosaveInterval),
		Status:   v.GetDuration(KeyStatusTTL),
		Log: LogConfig{
			File:  v.GetString(KeyLogFile),
			Level: v.GetString(KeyLogLevel),
		},
		Serve: ServeConfig{
			Addr:      v.GetString(KeyServeAddr),
			Driver:    strings.ToLower(v.GetString(KeyServeDriver)),
			DB:        v.GetString(KeyServeDB),
			DSN:       v.GetString(KeyServeDSN),
			TokenHash: v.GetString(KeyServeTokenHash),
		},
		File: v.ConfigFileUsed(),
	}
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q", KeyServerURL, c.Server.URL)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyHTTPTimeout)
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("%s must not be negative", KeyHTTPMaxRetries)
	}
	if c.Autosave <= 0 {
		return fmt.Errorf("%s must be positive", KeyAutosaveInterval)
	}
	if c.Status <= 0 {
		return fmt.Errorf("%s must be positive", KeyStatusTTL)
	}
	switch c.Serve.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown %s %q (want %s or %s)", KeyServeDriver, c.Serve.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

// API returns the client settings.
func (c *Config) API() api.Config {
	return api.Config{
		BaseURL:    c.Server.URL,
		Token:      c.Server.Token,
		User:       c.Server.User,
		Timeout:    c.HTTP.Timeout,
		MaxRetries: c.HTTP.MaxRetries,
	}
}

// DefaultDir is ~/.freenote.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".freenote"), nil
}
