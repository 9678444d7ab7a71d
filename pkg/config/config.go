package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Token store backends.
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	Env string

	API     APIConfig
	Tokens  TokenConfig
	Redis   RedisConfig
	Session SessionConfig
	Log     LogConfig
	Gateway GatewayConfig
	CORS    CORSConfig
	Exports ExportsConfig
	Images  ImageConfig
	Stub    StubConfig
}

// APIConfig points the client at the backend REST API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TokenConfig selects where the bearer token is persisted.
type TokenConfig struct {
	Store     string
	Dir       string
	KeyPrefix string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig tunes the session store.
type SessionConfig struct {
	NotificationRefreshDelay time.Duration
	Locale                   string
}

type LogConfig struct {
	Level  string
	Format string
}

// GatewayConfig configures the local HTTP gateway.
type GatewayConfig struct {
	Port      int
	APIPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ExportsConfig controls archive export storage and download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	PDFFontPath     string
}

// ImageConfig bounds client-side image encoding.
type ImageConfig struct {
	ArchiveMaxBytes int64
	AvatarMaxBytes  int64
}

// StubConfig configures the in-memory stand-in backend.
type StubConfig struct {
	Port                int
	JWTSecret           string
	TokenTTL            time.Duration
	AutoApprove         bool
	IgnoreStatusUpdates bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
	}

	cfg.Tokens = TokenConfig{
		Store:     strings.ToLower(v.GetString("TOKEN_STORE")),
		Dir:       v.GetString("TOKEN_DIR"),
		KeyPrefix: v.GetString("TOKEN_KEY_PREFIX"),
	}
	if cfg.Tokens.Dir == "" {
		cfg.Tokens.Dir = defaultTokenDir()
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		NotificationRefreshDelay: parseDuration(v.GetString("NOTIFICATION_REFRESH_DELAY"), 500*time.Millisecond),
		Locale:                   v.GetString("LOCALE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Gateway = GatewayConfig{
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 30*time.Minute),
		PDFFontPath:     v.GetString("EXPORTS_PDF_FONT"),
	}

	cfg.Images = ImageConfig{
		ArchiveMaxBytes: positiveOr(v.GetInt64("ARCHIVE_IMAGE_MAX_BYTES"), 10*1024*1024),
		AvatarMaxBytes:  positiveOr(v.GetInt64("AVATAR_IMAGE_MAX_BYTES"), 5*1024*1024),
	}

	cfg.Stub = StubConfig{
		Port:                v.GetInt("STUB_PORT"),
		JWTSecret:           v.GetString("STUB_JWT_SECRET"),
		TokenTTL:            parseDuration(v.GetString("STUB_TOKEN_TTL"), 7*24*time.Hour),
		AutoApprove:         v.GetBool("STUB_AUTO_APPROVE"),
		IgnoreStatusUpdates: v.GetBool("STUB_IGNORE_STATUS_UPDATES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", "15s")

	v.SetDefault("TOKEN_STORE", TokenStoreFile)
	v.SetDefault("TOKEN_DIR", "")
	v.SetDefault("TOKEN_KEY_PREFIX", "growth-archive:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NOTIFICATION_REFRESH_DELAY", "500ms")
	v.SetDefault("LOCALE", "zh")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("PORT", 8090)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "30m")
	v.SetDefault("EXPORTS_PDF_FONT", "")

	v.SetDefault("ARCHIVE_IMAGE_MAX_BYTES", 10*1024*1024)
	v.SetDefault("AVATAR_IMAGE_MAX_BYTES", 5*1024*1024)

	v.SetDefault("STUB_PORT", 8000)
	v.SetDefault("STUB_JWT_SECRET", "dev_stub_secret")
	v.SetDefault("STUB_TOKEN_TTL", "168h")
	v.SetDefault("STUB_AUTO_APPROVE", false)
	v.SetDefault("STUB_IGNORE_STATUS_UPDATES", false)
}

func defaultTokenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".growth-archive")
	}
	return filepath.Join(dir, "growth-archive")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int64) int64 {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
