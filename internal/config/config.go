// Package config defines the top-level configuration for the index dashboard
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by INDEXD_* environment variables.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Wallet   WalletConfig   `toml:"wallet"`
	Chain    ChainConfig    `toml:"chain"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	Feed     FeedConfig     `toml:"feed"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// ProviderConfig holds the market data provider endpoints.
type ProviderConfig struct {
	// Namespace is the provider id used in index definitions and cache keys.
	Namespace string `toml:"namespace"`
	MetaHost  string `toml:"meta_host"`
	DataHost  string `toml:"data_host"`
	WsHost    string `toml:"ws_host"`
}

// WalletConfig holds the signing key credentials.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// ChainConfig holds the RPC endpoint and contract addresses for trading.
type ChainConfig struct {
	// Enabled turns the trade endpoints on. When false the wallet and
	// ledger are not constructed and the server runs read-only.
	Enabled         bool   `toml:"enabled"`
	RPCURL          string `toml:"rpc_url"`
	ChainID         int64  `toml:"chain_id"`
	CollateralToken string `toml:"collateral_token"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	// Backend is either "memory" or "redis".
	Backend string   `toml:"backend"`
	TTL     duration `toml:"ttl"`
}

// RedisConfig holds Redis connection parameters, used when the cache backend
// is "redis".
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// FeedConfig controls the live trade feed.
type FeedConfig struct {
	Enabled  bool     `toml:"enabled"`
	AssetIDs []string `toml:"asset_ids"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Namespace: "polymarket",
			MetaHost:  "https://gamma-api.polymarket.com",
			DataHost:  "https://clob.polymarket.com",
			WsHost:    "wss://ws-subscriptions-clob.polymarket.com/ws/market",
		},
		Chain: ChainConfig{
			Enabled: false,
			ChainID: 137,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     duration{15 * time.Minute},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Feed: FeedConfig{
			Enabled: false,
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   0,
		},
		Notify: NotifyConfig{
			Events: []string{"fallback_market", "fallback_index"},
		},
		LogLevel: "info",
	}
}

// validBackends enumerates the accepted values for Cache.Backend.
var validBackends = map[string]bool{
	"memory": true,
	"redis":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Provider endpoints
	if c.Provider.Namespace == "" {
		errs = append(errs, "provider: namespace must not be empty")
	}
	if c.Provider.MetaHost == "" {
		errs = append(errs, "provider: meta_host must not be empty")
	}
	if c.Provider.DataHost == "" {
		errs = append(errs, "provider: data_host must not be empty")
	}
	if c.Feed.Enabled && c.Provider.WsHost == "" {
		errs = append(errs, "provider: ws_host is required when the feed is enabled")
	}

	// Chain and wallet are only needed when trading is on.
	if c.Chain.Enabled {
		if c.Chain.RPCURL == "" {
			errs = append(errs, "chain: rpc_url is required when chain is enabled")
		}
		if c.Chain.ChainID <= 0 {
			errs = append(errs, "chain: chain_id must be positive")
		}
		if c.Chain.CollateralToken == "" {
			errs = append(errs, "chain: collateral_token must not be empty")
		}
		if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
			errs = append(errs, "wallet: either private_key or encrypted_key_path must be set when chain is enabled")
		}
		if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
			errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
		}
	}

	// Cache
	if !validBackends[strings.ToLower(c.Cache.Backend)] {
		errs = append(errs, fmt.Sprintf("cache: unknown backend %q (valid: memory, redis)", c.Cache.Backend))
	}
	if c.Cache.TTL.Duration < 0 {
		errs = append(errs, "cache: ttl must not be negative")
	}
	if strings.ToLower(c.Cache.Backend) == "redis" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
