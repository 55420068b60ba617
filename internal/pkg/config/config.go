package config

import (
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"indengsvc/backend/internal/pkg/errs"
)

// Prefix is prepended to every environment variable, e.g. INDENG_DB_CONN.
const Prefix = "INDENG"

type Config struct {
	ConfigFile string `conf:"help:optional yaml file filling unset values"`
	DB         DB
	Legacy     Legacy
	Auth       Auth
	Web        Web
	Redis      Redis
	Log        Log
}

type DB struct {
	Conn        string        `conf:"noprint"`
	PoolSize    int           `conf:"default:40"`
	MaxOverflow int           `conf:"default:10"`
	Recycle     time.Duration `conf:"default:5m"`
	Debug       bool          `conf:"default:false"`
}

type Legacy struct {
	Endpoint      string
	Authorization string        `conf:"noprint"`
	ManifestName  string        `conf:"help:defaults to tokens.xlsx"`
	Timeout       time.Duration `conf:"default:30s"`
	Workers       int           `conf:"default:1"`
	TempDir       string
}

type Auth struct {
	Username string
	Password string `conf:"noprint"`
}

type Web struct {
	Port            string `conf:"default::8000"`
	AllowedOrigins  []string
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Redis struct {
	Addr     string
	Password string        `conf:"noprint"`
	DB       int           `conf:"default:0"`
	LockTTL  time.Duration `conf:"default:10m"`
}

type Log struct {
	File       string `conf:"help:defaults to indengsvc.log"`
	MaxSizeMB  int    `conf:"default:50"`
	MaxBackups int    `conf:"default:3"`
}

// Defaults for settings the yaml file may also provide. They are applied
// after the file merge so a file value is not shadowed by a default.
const (
	DefaultManifestName = "tokens.xlsx"
	DefaultLogFile      = "indengsvc.log"
)

// NewConfig loads .env (if present), parses flags and environment, merges the
// optional yaml file, applies the remaining defaults and validates the result.
func NewConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := conf.Parse(args, Prefix, &c); err != nil {
		return nil, err
	}

	if c.ConfigFile != "" {
		if err := c.mergeFile(c.ConfigFile); err != nil {
			return nil, err
		}
	}

	fill(&c.Legacy.ManifestName, DefaultManifestName)
	fill(&c.Log.File, DefaultLogFile)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Usage returns the flag/env help text.
func Usage() string {
	var c Config
	usage, err := conf.Usage(Prefix, &c)
	if err != nil {
		return err.Error()
	}
	return usage
}

// String renders the configuration with secrets omitted.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return err.Error()
	}
	return out
}

// Validate checks the settings every command needs. The legacy endpoint is
// checked by the legacy client and the API credentials by auth.New, because
// only sync and serve use them.
func (c *Config) Validate() error {
	if c.DB.Conn == "" {
		return &errs.ConfigurationError{Setting: Prefix + "_DB_CONN"}
	}
	return nil
}

type fileConfig struct {
	DBConn              string   `yaml:"db_conn"`
	LegacyEndpoint      string   `yaml:"legacy_endpoint"`
	LegacyAuthorization string   `yaml:"legacy_authorization"`
	ManifestName        string   `yaml:"manifest_name"`
	TempDir             string   `yaml:"temp_dir"`
	AuthUsername        string   `yaml:"auth_username"`
	AuthPassword        string   `yaml:"auth_password"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
	RedisAddr           string   `yaml:"redis_addr"`
	RedisPassword       string   `yaml:"redis_password"`
	LogFile             string   `yaml:"log_file"`
}

// mergeFile fills values that neither flags nor environment provided.
func (c *Config) mergeFile(path string) error {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}

	var f fileConfig
	if err = yaml.Unmarshal(yamlFile, &f); err != nil {
		return errors.Wrap(err, "parsing config file")
	}

	fill(&c.DB.Conn, f.DBConn)
	fill(&c.Legacy.Endpoint, f.LegacyEndpoint)
	fill(&c.Legacy.Authorization, f.LegacyAuthorization)
	fill(&c.Legacy.ManifestName, f.ManifestName)
	fill(&c.Legacy.TempDir, f.TempDir)
	fill(&c.Auth.Username, f.AuthUsername)
	fill(&c.Auth.Password, f.AuthPassword)
	fill(&c.Redis.Addr, f.RedisAddr)
	fill(&c.Redis.Password, f.RedisPassword)
	fill(&c.Log.File, f.LogFile)
	if len(c.Web.AllowedOrigins) == 0 {
		c.Web.AllowedOrigins = f.AllowedOrigins
	}

	return nil
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
