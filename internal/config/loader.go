package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies INDEXD_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults
// plus environment overrides. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known INDEXD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Provider ──
	setStr(&cfg.Provider.Namespace, "INDEXD_PROVIDER_NAMESPACE")
	setStr(&cfg.Provider.MetaHost, "INDEXD_PROVIDER_META_HOST")
	setStr(&cfg.Provider.DataHost, "INDEXD_PROVIDER_DATA_HOST")
	setStr(&cfg.Provider.WsHost, "INDEXD_PROVIDER_WS_HOST")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "INDEXD_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "INDEXD_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "INDEXD_WALLET_KEY_PASSWORD")

	// ── Chain ──
	setBool(&cfg.Chain.Enabled, "INDEXD_CHAIN_ENABLED")
	setStr(&cfg.Chain.RPCURL, "INDEXD_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "INDEXD_CHAIN_CHAIN_ID")
	setStr(&cfg.Chain.CollateralToken, "INDEXD_CHAIN_COLLATERAL_TOKEN")

	// ── Cache ──
	setStr(&cfg.Cache.Backend, "INDEXD_CACHE_BACKEND")
	setDuration(&cfg.Cache.TTL, "INDEXD_CACHE_TTL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "INDEXD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "INDEXD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "INDEXD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "INDEXD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "INDEXD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "INDEXD_REDIS_TLS_ENABLED")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "INDEXD_FEED_ENABLED")
	setStringSlice(&cfg.Feed.AssetIDs, "INDEXD_FEED_ASSET_IDS")

	// ── Server ──
	setInt(&cfg.Server.Port, "INDEXD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "INDEXD_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "INDEXD_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "INDEXD_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "INDEXD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "INDEXD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "INDEXD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "INDEXD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "INDEXD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
