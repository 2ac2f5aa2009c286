package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mxcd/journalfiles/internal/model"
	"github.com/rs/zerolog/log"
)

// PostgresStore is a RecordStore reading from the journals and submissions tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool to databaseURL and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	log.Info().Msg("store: connected to postgres")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// tableFor maps a collection onto a fixed table name.
func tableFor(collection model.Collection) (string, error) {
	switch collection {
	case model.CollectionJournals:
		return "journals", nil
	case model.CollectionSubmissions:
		return "submissions", nil
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}

// CreateTables creates the record tables if they do not exist.
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	for _, collection := range []model.Collection{model.CollectionJournals, model.CollectionSubmissions} {
		table, _ := tableFor(collection)
		query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			pdf_url TEXT NOT NULL DEFAULT '',
			pdf_legacy_url TEXT NOT NULL DEFAULT '',
			pdf_local_path TEXT NOT NULL DEFAULT '',
			docx_url TEXT NOT NULL DEFAULT '',
			docx_legacy_url TEXT NOT NULL DEFAULT '',
			docx_local_path TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, table)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table, err)
		}
	}
	return nil
}

// GetRecord implements RecordStore.
func (s *PostgresStore) GetRecord(ctx context.Context, collection model.Collection, id string) (*model.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
	SELECT id, title, status,
		pdf_url, pdf_legacy_url, pdf_local_path,
		docx_url, docx_legacy_url, docx_local_path,
		created_at, updated_at
	FROM %s
	WHERE id = $1`, table)

	record := &model.Record{Collection: collection}
	var status string
	err = s.pool.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.Title, &status,
		&record.PDF.URL, &record.PDF.LegacyURL, &record.PDF.LocalPath,
		&record.DOCX.URL, &record.DOCX.LegacyURL, &record.DOCX.LocalPath,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", model.ErrRecordNotFound, collection.Singular(), id)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", table, id, err)
	}
	record.Status = model.RecordStatus(status)
	return record, nil
}
