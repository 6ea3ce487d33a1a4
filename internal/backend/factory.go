package backend

import (
	"context"
	"fmt"

	"fintrack/internal/gateway/memory"
	"fintrack/internal/gateway/postgres"
	"fintrack/internal/gateway/sheets"
	"fintrack/internal/gateway/sqlite"
	"fintrack/internal/log"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	gw, err := sqlite.Open(ctx, config.LedgerDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite gateway: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized sqlite backend", "path", config.LedgerDBPath)

	return &BackendResult{Backend: gw, Cleanup: gw.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	gw, err := postgres.Open(ctx, config.DatabaseURL, config.DatabaseMigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres gateway: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized postgres backend", "migrations", config.DatabaseMigrate)

	return &BackendResult{
		Backend: gw,
		Cleanup: func() error {
			gw.Close()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets backend")

	return &BackendResult{Backend: cli}, nil
}

// Memory keeps rows for the life of the process only. Every sign-in reloads
// from it, so nothing outlives the process; use sqlite for offline work.
func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Backend: memory.New()}, nil
}
