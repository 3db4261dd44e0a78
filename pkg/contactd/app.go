// Package contactd wires the stores, the contact service, the ingestion
// pipeline and the HTTP API into a runnable application.
package contactd

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/ecardhq/contactd/pkg/contacts"
	"github.com/ecardhq/contactd/pkg/ingest"
	"github.com/ecardhq/contactd/pkg/storage"
	"github.com/ecardhq/contactd/pkg/store"
	"github.com/ecardhq/contactd/pkg/store/postgres"
	"github.com/ecardhq/contactd/pkg/store/surrealdb"
)

// Config is the application configuration, read from the environment.
type Config struct {
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=ecards port=5432 sslmode=disable"`

	SurrealDBURL  string `env:"SURREALDB_URL" envDefault:"ws://localhost:8000/rpc"`
	SurrealDBNS   string `env:"SURREALDB_NS" envDefault:"ecards"`
	SurrealDBDB   string `env:"SURREALDB_DB" envDefault:"ecards"`
	SurrealDBUser string `env:"SURREALDB_USER" envDefault:"root"`
	SurrealDBPass string `env:"SURREALDB_PASS" envDefault:"root"`

	ServerPort string `env:"PORT" envDefault:"8080"`

	// StorageMode selects where batch files are fetched from: "s3" for an
	// S3-compatible endpoint, "local" for a directory on disk.
	StorageMode      string `env:"STORAGE_MODE" envDefault:"s3"`
	S3Endpoint       string `env:"S3_ENDPOINT" envDefault:"http://localhost:8333"`
	S3AccessKey      string `env:"S3_ACCESS_KEY" envDefault:""`
	S3SecretKey      string `env:"S3_SECRET_KEY" envDefault:""`
	S3Bucket         string `env:"S3_BUCKET" envDefault:"batches"`
	LocalStoragePath string `env:"LOCAL_STORAGE_PATH" envDefault:"./data"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return config, nil
}

// App holds the application state shared by every command.
type App struct {
	config      *Config
	log         zerolog.Logger
	projections store.ProjectionStore
	records     store.RecordStore
	contacts    *contacts.Service
	files       *storage.Client
	ingestor    *ingest.Ingestor
}

// New connects to both stores and wires the application. The returned App
// owns the connections; call Close when done.
func New(config *Config) (*App, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	projections, err := postgres.Open(config.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	records, err := surrealdb.New(
		config.SurrealDBURL,
		config.SurrealDBNS,
		config.SurrealDBDB,
		config.SurrealDBUser,
		config.SurrealDBPass,
	)
	if err != nil {
		projections.Close()
		return nil, fmt.Errorf("connect to surrealdb: %w", err)
	}
	log.Info().Str("url", config.SurrealDBURL).Msg("connected to surrealdb")

	var files *storage.Client
	switch config.StorageMode {
	case "s3":
		files, err = storage.NewS3(config.S3Endpoint, config.S3AccessKey, config.S3SecretKey, config.S3Bucket, log)
		if err != nil {
			projections.Close()
			records.Close()
			return nil, fmt.Errorf("connect to object storage: %w", err)
		}
	case "local":
		files = storage.NewLocal(config.LocalStoragePath, log)
	default:
		projections.Close()
		records.Close()
		return nil, fmt.Errorf("unknown storage mode %q", config.StorageMode)
	}

	return &App{
		config:      config,
		log:         log,
		projections: projections,
		records:     records,
		contacts:    contacts.NewService(projections, records, log),
		files:       files,
		ingestor:    ingest.NewIngestor(projections, records, files, log),
	}, nil
}

// Close releases both store connections and any downloaded temp files.
func (a *App) Close() error {
	a.files.CleanupAll()
	err := a.projections.Close()
	if recordsErr := a.records.Close(); err == nil {
		err = recordsErr
	}
	return err
}

// Migrate brings both store schemas up to date.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.projections.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	if err := a.records.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate surrealdb: %w", err)
	}
	a.log.Info().Msg("migrations complete")
	return nil
}
