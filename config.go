package goRotate

import (
	"errors"
	"time"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/password"
)

// Config holds every engine setting. Build validates it once; the engine
// treats its copy as immutable afterwards.
type Config struct {
	JWT        JWTConfig
	Session    SessionConfig
	Envelope   EnvelopeConfig
	Hash       HashConfig
	Permission PermissionConfig
	Validation ValidationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// JWTConfig configures access-token signing. PrivateKey is the HS256
// secret, or the Ed25519 private key when SigningMethod is "ed25519".
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
}

// SessionConfig configures refresh-session persistence.
type SessionConfig struct {
	RefreshTTL  time.Duration
	RedisPrefix string
}

// EnvelopeConfig carries the 32-byte AES-256-GCM key that seals rotation
// envelopes.
type EnvelopeConfig struct {
	Key []byte
}

// HashAlgorithm selects the slow hash used on the root fingerprint.
type HashAlgorithm string

const (
	HashBcrypt   HashAlgorithm = "bcrypt"
	HashArgon2id HashAlgorithm = "argon2id"
)

// HashConfig configures the slow hash.
type HashConfig struct {
	Algorithm  HashAlgorithm
	BcryptCost int
	Argon2     password.Argon2Config
}

/*
====================================
PERMISSION CONFIG
====================================
*/

// PermissionConfig sizes the permission snapshot cache the engine builds
// when none is injected.
type PermissionConfig struct {
	CacheCapacity int
	CacheTTL      time.Duration
	SweepInterval time.Duration
}

// ValidationConfig tunes access-token validation.
type ValidationConfig struct {
	// MaxClockSkew bounds how far iat may sit in the future. Negative disables the check.
	MaxClockSkew time.Duration
}

const defaultAuditBufferSize = 1024

// AuditConfig controls the asynchronous audit and login-history dispatcher.
// Enabled gates the audit sink; a configured LoginRecorder is fed
// regardless.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the settings used when none are supplied. The JWT
// secret and envelope key are left empty and must be provided.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Session: SessionConfig{
			RefreshTTL:  7 * 24 * time.Hour,
			RedisPrefix: "rs:",
		},
		Hash: HashConfig{
			Algorithm:  HashBcrypt,
			BcryptCost: password.DefaultBcryptCost,
			Argon2:     password.DefaultArgon2Config(),
		},
		Permission: PermissionConfig{
			CacheCapacity: 500,
			CacheTTL:      5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Validation: ValidationConfig{
			MaxClockSkew: 30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: defaultAuditBufferSize,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	out.Envelope.Key = cloneBytes(cfg.Envelope.Key)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	switch c.JWT.SigningMethod {
	case "hs256", "":
		if len(c.JWT.PrivateKey) < 32 {
			return errors.New("JWT PrivateKey must be at least 32 bytes for hs256")
		}
	case "ed25519":
		if len(c.JWT.PublicKey) == 0 {
			return errors.New("JWT PublicKey is required for ed25519")
		}
	default:
		return errors.New("JWT SigningMethod must be 'hs256' or 'ed25519'")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0,2m]")
	}

	// Session
	if c.Session.RefreshTTL <= 0 {
		return errors.New("Session RefreshTTL must be > 0")
	}
	if c.Session.RefreshTTL < time.Second {
		return errors.New("Session RefreshTTL must be >= 1s")
	}
	if c.Session.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("Session RefreshTTL must be greater than JWT AccessTTL")
	}

	// Envelope
	if len(c.Envelope.Key) != envelope.KeySize {
		return errors.New("Envelope Key must be exactly 32 bytes")
	}

	// Hash
	switch c.Hash.Algorithm {
	case HashBcrypt, "":
		if c.Hash.BcryptCost != 0 && (c.Hash.BcryptCost < 4 || c.Hash.BcryptCost > 31) {
			return errors.New("Hash BcryptCost must be within [4,31]")
		}
	case HashArgon2id:
		if c.Hash.Argon2.Memory < 8*1024 {
			return errors.New("Hash Argon2 Memory must be >= 8192 KB")
		}
	default:
		return errors.New("Hash Algorithm must be 'bcrypt' or 'argon2id'")
	}

	// Permission cache
	if c.Permission.CacheCapacity < 0 {
		return errors.New("Permission CacheCapacity must be >= 0")
	}
	if c.Permission.CacheTTL < 0 {
		return errors.New("Permission CacheTTL must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
