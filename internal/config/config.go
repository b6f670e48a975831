package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// Storage engines selectable through STATUSBOARD_STORE.
const (
	StoreMemory   = store.EngineMemory
	StoreRedis    = store.EngineRedis
	StorePostgres = store.EnginePostgres
	StoreSQLite   = store.EngineSQLite
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store       string // memory | redis | postgres | sqlite
	PostgresDSN string // required when Store is postgres
	SQLitePath  string // database file when Store is sqlite

	CatalogFile    string        // optional YAML catalog seeded at startup (empty = disabled)
	ReloadInterval time.Duration // interval to reseed the catalog (default: 24h, 0 = startup only)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisPrefix           string        // key prefix (ex: "statusboard")
	RedisTxRetries        int           // optimistic transaction retries before giving up
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize         int           // Redis connection pool size

	// Startup connection retries (redis and postgres)
	ConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	WarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // origins allowed by CORS ("*" = any)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("STATUSBOARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("STATUSBOARD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("STATUSBOARD_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("STATUSBOARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STATUSBOARD_PRETTY_LOG", true),

		// Storage
		Store:      mustOneOf("STATUSBOARD_STORE", StoreMemory, StoreMemory, StoreRedis, StorePostgres, StoreSQLite),
		SQLitePath: getenv("STATUSBOARD_SQLITE_PATH", "./statusboard.db"),

		// Catalog
		CatalogFile:    getenv("STATUSBOARD_CATALOG_FILE", ""),
		ReloadInterval: mustDuration("STATUSBOARD_RELOAD_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisUser:             getenv("STATUSBOARD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("STATUSBOARD_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("STATUSBOARD_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("STATUSBOARD_REDIS_DB", 0),
		RedisPrefix:           getenv("STATUSBOARD_REDIS_PREFIX", "statusboard"),
		RedisTxRetries:        getenvInt("STATUSBOARD_REDIS_TX_RETRIES", 10),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),

		// Connection retries
		ConnectTimeout: mustDuration("STATUSBOARD_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  mustDuration("STATUSBOARD_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        mustDuration("STATUSBOARD_MAX_WAIT", 10*time.Second),
		PingTimeout:    mustDuration("STATUSBOARD_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  getenvInt("STATUSBOARD_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("STATUSBOARD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("STATUSBOARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("STATUSBOARD_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("STATUSBOARD_CORS_ORIGINS", "*")),
	}

	switch cfg.Store {
	case StorePostgres:
		cfg.PostgresDSN = requireEnv("STATUSBOARD_POSTGRES_DSN")
	case StoreRedis:
		cfg.RedisAddr = requireEnv("STATUSBOARD_REDIS_ADDR")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: STATUSBOARD_REDIS_PASSWORD is required when STATUSBOARD_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func mustOneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(getenv(key, def)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (allowed: %s)", key, v, strings.Join(allowed, ", ")))
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
