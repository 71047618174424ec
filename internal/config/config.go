package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend identifiers.
const (
	BackendFile     = "file"
	BackendGitHub   = "github"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	ProxyHeader           string
	RequestTimeoutSeconds int
}

// StorageConfig selects and parameterizes the live-data document backend.
type StorageConfig struct {
	Backend     string
	Ephemeral   bool
	IOTimeout   time.Duration
	MaxAttempts int
	SeedFile    string
	File        FileConfig
	GitHub      GitHubConfig
	S3          S3Config
	Postgres    PostgresDocumentConfig
	Redis       RedisDocumentConfig
}

// FileConfig locates the document on local disk.
type FileConfig struct {
	Path string
}

// GitHubConfig addresses the document inside a repository through the contents API.
type GitHubConfig struct {
	APIURL    string
	Token     string
	Owner     string
	Repo      string
	Branch    string
	Path      string
	Committer string
}

// S3Config addresses the document as an object.
type S3Config struct {
	Bucket       string
	Key          string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// PostgresDocumentConfig names the row holding the document.
type PostgresDocumentConfig struct {
	DocumentKey string
}

// RedisDocumentConfig names the hash holding the document.
type RedisDocumentConfig struct {
	Key string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines staff token parameters. An empty secret disables the gate.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AllowedEmails         []string
}

// Enabled reports whether staff routes require a token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// CORSConfig lists origins reflected in cross-origin responses; empty means wildcard.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig throttles message submissions per client IP.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// NotificationConfig holds notification endpoints.
type NotificationConfig struct {
	EmailTo    string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "client-status-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "3000")),
			Version:               getEnv("APP_VERSION", "dev"),
			ProxyHeader:           os.Getenv("HTTP_PROXY_HEADER"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 15),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND"))),
			Ephemeral:   getEnvAsBool("DEPLOY_EPHEMERAL", os.Getenv("VERCEL") != ""),
			IOTimeout:   getEnvAsDuration("STORE_IO_TIMEOUT", 5*time.Second),
			MaxAttempts: getEnvAsInt("STORE_MAX_ATTEMPTS", 3),
			SeedFile:    os.Getenv("DOCUMENT_SEED_FILE"),
			File: FileConfig{
				Path: getEnv("DOCUMENT_FILE_PATH", "inex-live-data.json"),
			},
			GitHub: GitHubConfig{
				APIURL:    getEnv("GITHUB_API_URL", "https://api.github.com"),
				Token:     os.Getenv("GITHUB_TOKEN"),
				Owner:     os.Getenv("GITHUB_OWNER"),
				Repo:      os.Getenv("GITHUB_REPO"),
				Branch:    getEnv("GITHUB_BRANCH", "main"),
				Path:      getEnv("GITHUB_DOCUMENT_PATH", "inex-live-data.json"),
				Committer: getEnv("GITHUB_COMMITTER", "status-portal"),
			},
			S3: S3Config{
				Bucket:       os.Getenv("S3_BUCKET"),
				Key:          getEnv("S3_DOCUMENT_KEY", "inex-live-data.json"),
				Region:       getEnv("S3_REGION", "us-east-1"),
				Endpoint:     os.Getenv("S3_ENDPOINT"),
				AccessKey:    os.Getenv("S3_ACCESS_KEY"),
				SecretKey:    os.Getenv("S3_SECRET_KEY"),
				UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
			},
			Postgres: PostgresDocumentConfig{
				DocumentKey: getEnv("POSTGRES_DOCUMENT_KEY", "live-data"),
			},
			Redis: RedisDocumentConfig{
				Key: getEnv("REDIS_DOCUMENT_KEY", "portal:live-data"),
			},
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 720),
			AllowedEmails:         getEnvAsList("AUTH_ALLOWED_EMAILS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
		},
		Notification: NotificationConfig{
			EmailTo:    getEnv("NOTIFY_EMAIL_TO", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	cfg.Storage.Backend = cfg.Storage.ResolveBackend()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveBackend picks the backend once: an explicit choice wins, otherwise
// ephemeral deployments use the repository file and persistent ones local disk.
func (s StorageConfig) ResolveBackend() string {
	if s.Backend != "" {
		return s.Backend
	}
	if s.Ephemeral {
		return BackendGitHub
	}
	return BackendFile
}

// Validate rejects configurations whose writes could silently vanish.
func (c *Config) Validate() error {
	s := c.Storage
	switch s.Backend {
	case BackendFile, BackendMemory:
		if s.Ephemeral {
			return fmt.Errorf("storage backend %q does not survive an ephemeral deployment", s.Backend)
		}
		if s.Backend == BackendFile && s.File.Path == "" {
			return errors.New("DOCUMENT_FILE_PATH required for file backend")
		}
	case BackendGitHub:
		if s.GitHub.Token == "" || s.GitHub.Owner == "" || s.GitHub.Repo == "" {
			return errors.New("GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO required for github backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN required for postgres backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR required for redis backend")
		}
	case BackendS3:
		if s.S3.Bucket == "" {
			return errors.New("S3_BUCKET required for s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", s.Backend)
	}
	if s.MaxAttempts < 1 {
		return errors.New("STORE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Auth.Enabled() && len(c.Auth.AllowedEmails) == 0 {
		return errors.New("AUTH_ALLOWED_EMAILS required when AUTH_JWT_SECRET is set")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsProduction reports whether error details must be withheld from clients.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
