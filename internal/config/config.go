package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	STT       STTConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
	Upload    UploadConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type STTConfig struct {
	Backend string // "openai" or "local"
	APIKey  string
	BaseURL string
	Model   string
	Workers int // max concurrent translation calls
}

type EmbeddingConfig struct {
	APIKey string
	Model  string
}

type VectorConfig struct {
	Backend             string // "pinecone" or "pgvector"
	PineconeAPIKey      string
	PineconeEnvironment string
	PineconeIndexHost   string
	PineconeIndex       string
	Namespace           string
}

type UploadConfig struct {
	Dir       string
	MaxBytes  int64
	Retention time.Duration // 0 disables cleanup
}

func Load() (*Config, error) {
	// Best-effort, same as the frontend-facing deployments that ship a .env file.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sttWorkers, err := getEnvInt("STT_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid STT_WORKERS: %w", err)
	}

	maxBytes, err := getEnvInt("UPLOAD_MAX_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}

	retention, err := getEnvDuration("UPLOAD_RETENTION", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_RETENTION: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		STT: STTConfig{
			Backend: getEnv("STT_BACKEND", "local"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("STT_BASE_URL", ""),
			Model:   getEnv("STT_MODEL", ""),
			Workers: sttWorkers,
		},
		Embedding: EmbeddingConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("EMBEDDING_MODEL", ""),
		},
		Vector: VectorConfig{
			Backend:             getEnv("VECTOR_BACKEND", "pinecone"),
			PineconeAPIKey:      getEnv("PINECONE_API_KEY", ""),
			PineconeEnvironment: getEnv("PINECONE_ENVIRONMENT", ""),
			PineconeIndexHost:   getEnv("PINECONE_INDEX_HOST", ""),
			PineconeIndex:       getEnv("PINECONE_INDEX", "transcripts"),
			Namespace:           getEnv("VECTOR_NAMESPACE", ""),
		},
		Upload: UploadConfig{
			Dir:       getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes:  int64(maxBytes),
			Retention: retention,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks the credentials of the selected vector backend. These are
// startup failures on purpose: a missing key must never surface mid-request.
func (c *Config) Validate() error {
	var missing []string
	switch c.Vector.Backend {
	case "pinecone":
		if c.Vector.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if c.Vector.PineconeEnvironment == "" {
			missing = append(missing, "PINECONE_ENVIRONMENT")
		}
	case "pgvector":
		if c.Database.URL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		// The transcripts table has a fixed-dimension vector column, so the
		// placeholder embedding fallback cannot serve this backend.
		if c.Embedding.APIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", c.Vector.Backend)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
