package util

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mxcd/go-config/config"
	"github.com/mxcd/journalfiles/internal/files"
)

func InitConfig() error {
	// A .env file is optional; real environment variables take precedence.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	err := config.LoadConfig([]config.Value{
		// version info
		config.String("DEPLOYMENT_IMAGE_TAG").NotEmpty().Default("development"),

		// logging config
		config.String("LOG_LEVEL").NotEmpty().Default("info"),

		// server config
		config.Bool("DEV").Default(false),
		config.Int("PORT").Default(8080),

		// record store: "memory" (optionally seeded from SEED_FILE) or "postgres"
		config.String("STORE_DRIVER").NotEmpty().Default("memory"),
		config.String("DATABASE_URL").Default(""),
		config.String("SEED_FILE").Default(""),

		// local fallback storage
		config.String("STORAGE_ROOT").NotEmpty().Default("uploads"),
		config.StringArray("LEGACY_STORAGE_ROOTS").Default(files.DefaultLegacyRoots),

		// remote fetch
		config.String("FETCH_TIMEOUT").Default("30s"),
		config.Int("FETCH_RETRY_MAX").Default(0),
		config.Int("FETCH_MAX_BYTES").Default(files.DefaultFetchMaxBytes),

		// optional s3:// support
		config.String("S3_REGION").Default(""),
		config.String("S3_PRESIGN_TTL").Default("15m"),
	})
	return err
}

// FileOptions is the retrieval configuration handed to the server at startup.
type FileOptions struct {
	StorageRoot   string
	LegacyRoots   []string
	FetchTimeout  time.Duration
	FetchRetryMax int
	FetchMaxBytes int64
	S3Region      string
	S3PresignTTL  time.Duration
}

// LoadFileOptions reads the retrieval configuration once from the loaded config.
func LoadFileOptions() (*FileOptions, error) {
	c := config.Get()

	fetchTimeout, err := time.ParseDuration(c.String("FETCH_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	presignTTL, err := time.ParseDuration(c.String("S3_PRESIGN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid S3_PRESIGN_TTL: %w", err)
	}

	return &FileOptions{
		StorageRoot:   c.String("STORAGE_ROOT"),
		LegacyRoots:   c.StringArray("LEGACY_STORAGE_ROOTS"),
		FetchTimeout:  fetchTimeout,
		FetchRetryMax: c.Int("FETCH_RETRY_MAX"),
		FetchMaxBytes: int64(c.Int("FETCH_MAX_BYTES")),
		S3Region:      c.String("S3_REGION"),
		S3PresignTTL:  presignTTL,
	}, nil
}
