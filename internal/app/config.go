package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	goRotate "github.com/MrEthical07/goRotate"
	"github.com/MrEthical07/goRotate/envelope"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends accepted in Config.Store.
const (
	StoreRedis  = "redis"
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// Config is the service configuration. Values come from defaults, then the
// optional YAML file, then ROTATE_* environment variables (a .env file in the
// working directory is loaded first when present).
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	Store         string `yaml:"store"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
	BoltPath      string `yaml:"bolt_path"`

	// DatabaseURL enables the Postgres permission source when set.
	DatabaseURL string `yaml:"database_url"`

	SigningKey  string        `yaml:"signing_key"`
	EnvelopeKey string        `yaml:"envelope_key"`
	Issuer      string        `yaml:"issuer"`
	Audience    string        `yaml:"audience"`
	AccessTTL   time.Duration `yaml:"access_ttl"`
	RefreshTTL  time.Duration `yaml:"refresh_ttl"`
	HashAlgo    string        `yaml:"hash_algorithm"`

	// IdentityHeader names a header set by a trusted upstream authenticator.
	// When empty, POST /auth/session is not served.
	IdentityHeader string `yaml:"identity_header"`
	ContextHeader  string `yaml:"context_header"`

	CORSOrigins    []string `yaml:"cors_origins"`
	CookieDomain   string   `yaml:"cookie_domain"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	LogoutRedirect string   `yaml:"logout_redirect"`

	MetricsEnabled bool `yaml:"metrics_enabled"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DefaultServiceConfig returns the defaults applied before any file or
// environment value.
func DefaultServiceConfig() Config {
	engine := goRotate.DefaultConfig()
	return Config{
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		Store:             StoreRedis,
		RedisAddr:         "127.0.0.1:6379",
		RedisPrefix:       engine.Session.RedisPrefix,
		BoltPath:          "rotated.db",
		Issuer:            "gorotate",
		AccessTTL:         engine.JWT.AccessTTL,
		RefreshTTL:        engine.Session.RefreshTTL,
		HashAlgo:          string(goRotate.HashBcrypt),
		CookieSecure:      true,
		LogoutRedirect:    "/",
		MetricsEnabled:    true,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// LoadConfig resolves the service configuration. path may be empty.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultServiceConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = EnvString("ROTATE_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = EnvString("ROTATE_LOG_LEVEL", c.LogLevel)
	c.Store = EnvString("ROTATE_STORE", c.Store)
	c.RedisAddr = EnvString("ROTATE_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = EnvString("ROTATE_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = EnvInt("ROTATE_REDIS_DB", c.RedisDB)
	c.RedisPrefix = EnvString("ROTATE_REDIS_PREFIX", c.RedisPrefix)
	c.BoltPath = EnvString("ROTATE_BOLT_PATH", c.BoltPath)
	c.DatabaseURL = EnvString("ROTATE_DATABASE_URL", c.DatabaseURL)
	c.SigningKey = EnvString("ROTATE_SIGNING_KEY", c.SigningKey)
	c.EnvelopeKey = EnvString("ROTATE_ENVELOPE_KEY", c.EnvelopeKey)
	c.Issuer = EnvString("ROTATE_ISSUER", c.Issuer)
	c.Audience = EnvString("ROTATE_AUDIENCE", c.Audience)
	c.AccessTTL = EnvDuration("ROTATE_ACCESS_TTL", c.AccessTTL)
	c.RefreshTTL = EnvDuration("ROTATE_REFRESH_TTL", c.RefreshTTL)
	c.HashAlgo = EnvString("ROTATE_HASH_ALGORITHM", c.HashAlgo)
	c.IdentityHeader = EnvString("ROTATE_IDENTITY_HEADER", c.IdentityHeader)
	c.ContextHeader = EnvString("ROTATE_CONTEXT_HEADER", c.ContextHeader)
	c.CORSOrigins = EnvList("ROTATE_CORS_ORIGINS", c.CORSOrigins)
	c.CookieDomain = EnvString("ROTATE_COOKIE_DOMAIN", c.CookieDomain)
	c.CookieSecure = EnvBool("ROTATE_COOKIE_SECURE", c.CookieSecure)
	c.LogoutRedirect = EnvString("ROTATE_LOGOUT_REDIRECT", c.LogoutRedirect)
	c.MetricsEnabled = EnvBool("ROTATE_METRICS_ENABLED", c.MetricsEnabled)
}

func (c Config) validate() error {
	switch c.Store {
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	case StoreBolt:
		if c.BoltPath == "" {
			return errors.New("bolt_path is required for the bolt store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.SigningKey == "" {
		return errors.New("signing_key is required")
	}
	if c.EnvelopeKey == "" {
		return errors.New("envelope_key is required")
	}
	return nil
}

// EngineConfig translates the service configuration into the engine's.
func (c Config) EngineConfig() (goRotate.Config, error) {
	cfg := goRotate.DefaultConfig()

	signing, err := envelope.ParseKey(c.SigningKey)
	if err != nil {
		return goRotate.Config{}, fmt.Errorf("signing_key: %w", err)
	}
	envKey, err := envelope.ParseKey(c.EnvelopeKey)
	if err != nil {
		return goRotate.Config{}, fmt.Errorf("envelope_key: %w", err)
	}

	cfg.JWT.PrivateKey = signing
	cfg.JWT.Issuer = c.Issuer
	cfg.JWT.Audience = c.Audience
	cfg.JWT.AccessTTL = c.AccessTTL
	cfg.Session.RefreshTTL = c.RefreshTTL
	cfg.Session.RedisPrefix = c.RedisPrefix
	cfg.Envelope.Key = envKey
	cfg.Hash.Algorithm = goRotate.HashAlgorithm(c.HashAlgo)
	cfg.Metrics.Enabled = c.MetricsEnabled

	if err := cfg.Validate(); err != nil {
		return goRotate.Config{}, err
	}
	return cfg, nil
}
