// Package config holds the composition root's typed configuration, loaded
// with go-zero's conf.MustLoad the way the teacher loads every service's
// config.
package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	"github.com/entativa/eid/third_party/cache"
	"github.com/entativa/eid/third_party/database"
	"github.com/entativa/eid/third_party/search"
)

// Config is the root configuration for cmd/eidserver.
type Config struct {
	rest.RestConf
	Database    database.PostgresConfig
	Redis       cache.RedisConfig
	MeiliSearch search.MeiliSearchConfig
	Crypto      CryptoConfig
	OAuth       OAuthConfig
	Handle      HandleConfig
	MFA         MFAConfig
	Sync        SyncConfig
	Lockout     LockoutConfig
	Platforms   map[string]string `json:",optional"`
}

// WorkerConfig is the root configuration for cmd/eidworker.
type WorkerConfig struct {
	Name      string `json:",env"`
	Database  database.PostgresConfig
	Redis     cache.RedisConfig
	Sync      SyncConfig
	AdminRpc  RpcServerConfig
	Platforms map[string]string `json:",optional"`
}

// RpcServerConfig describes the gRPC SyncAdmin listener, mirroring the
// teacher's zrpc service config shape.
type RpcServerConfig struct {
	ListenOn string `json:",env=SYNC_ADMIN_LISTEN"`
}

// CryptoConfig configures C1.
type CryptoConfig struct {
	MasterKeyID  string `json:",env=CRYPTO_MASTER_KEY_ID"`
	MasterKeyHex string `json:",env=CRYPTO_MASTER_KEY"`
	SigningKeyID string `json:",env=JWT_SIGNING_KEY_ID"`
}

// OAuthConfig configures C6 per spec §6.
type OAuthConfig struct {
	Issuer               string        `json:",default=entativa-id"`
	Algorithm            string        `json:",default=RS256"`
	SigningKeyPEM        string        `json:",env=JWT_SIGNING_KEY,optional"`
	HMACSecret           string        `json:",env=JWT_HMAC_SECRET,optional"`
	AccessTokenTTL       time.Duration `json:",default=1h"`
	RefreshTokenTTL      time.Duration `json:",default=720h"`
	AuthCodeTTL          time.Duration `json:",default=10m"`
	ResetTokenTTL        time.Duration `json:",default=15m"`
	AllowPlainPKCE       bool          `json:",default=false"`
	TokenEndpointRateMin int           `json:",default=60"`
	AuthzEndpointRateMin int           `json:",default=30"`
}

// HandleConfig configures C4.
type HandleConfig struct {
	MaxHandleLen        int           `json:",default=30"`
	MinHandleLen        int           `json:",default=3"`
	SimilarityThreshold float64       `json:",default=0.85"`
	ValidationCacheTTL  time.Duration `json:",default=60m"`
}

// MFAConfig configures C5.
type MFAConfig struct {
	ChallengeTTL time.Duration `json:",default=5m"`
	MaxAttempts  int           `json:",default=5"`
	MaxFailed    int           `json:",default=5"`
	CooldownMins int           `json:",default=15"`
	BackupCodes  int           `json:",default=10"`
}

// SyncConfig configures C8 per spec §6.
type SyncConfig struct {
	MaxAttempts       int           `json:",default=5"`
	ProcessingTimeout time.Duration `json:",default=300s"`
	BackoffBaseMs     int           `json:",default=2000"`
	BackoffCapMs      int           `json:",default=600000"`
	BatchSize         int           `json:",default=32"`
	SweepInterval     time.Duration `json:",default=30s"`
	WorkerConcurrency int           `json:",default=8"`
}

// LockoutConfig configures account lockout per spec §4.9.
type LockoutConfig struct {
	MaxLoginAttempts int           `json:",default=5"`
	LockoutDuration  time.Duration `json:",default=30m"`
}
