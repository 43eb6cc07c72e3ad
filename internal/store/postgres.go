package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/store/migrations"
)

// PostgresStore implements UploadStore over database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded schema migrations.
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Append inserts one record. Fills ID and UploadedAt when unset. Exactly one
// row must be affected.
func (s *PostgresStore) Append(ctx context.Context, record *models.UploadRecord) error {
	if record.Filename == "" || record.OriginalName == "" || record.SecureURL == "" ||
		record.PublicID == "" || record.Format == "" || record.Size <= 0 {
		return ErrMissingField
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO uploads (id, filename, original_name, secure_url, public_id, size, format, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	res, err := s.db.ExecContext(ctx, query,
		record.ID, record.Filename, record.OriginalName, record.SecureURL,
		record.PublicID, record.Size, record.Format, record.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// ListRecent returns every record, most recent first. No pagination.
func (s *PostgresStore) ListRecent(ctx context.Context) ([]models.UploadRecord, error) {
	query := `
		SELECT id, filename, original_name, secure_url, public_id, size, format, uploaded_at
		FROM uploads
		ORDER BY uploaded_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	result := []models.UploadRecord{}
	for rows.Next() {
		var item models.UploadRecord
		if err := rows.Scan(&item.ID, &item.Filename, &item.OriginalName, &item.SecureURL,
			&item.PublicID, &item.Size, &item.Format, &item.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
