// infrastructure/postgres_video_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
)

const CreateResultsTableSQL = `CREATE TABLE IF NOT EXISTS video_recognition_results (
	id SERIAL PRIMARY KEY,
	owner TEXT NOT NULL,
	video_original_filename TEXT NOT NULL,
	reference TEXT,
	strategy TEXT,
	success BOOLEAN NOT NULL,
	error_message TEXT,
	recognition_success BOOLEAN NOT NULL DEFAULT FALSE,
	recognition_summary TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresVideoRepository struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewPostgresVideoRepository(db *sql.DB, logger *zap.Logger) *PostgresVideoRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresVideoRepository{DB: db, Logger: logger.With(zap.String("component", "postgres_repository"))}
}

// EnsureSchema creates the results table when it does not exist.
func (r *PostgresVideoRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, CreateResultsTableSQL); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

func (r *PostgresVideoRepository) Save(ctx context.Context, record *domain.ProcessingRecord) error {
	query := `INSERT INTO video_recognition_results (owner, video_original_filename, reference, strategy, success, error_message, recognition_success, recognition_summary, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.DB.QueryRowContext(ctx, query,
		record.Owner, record.OriginalFilename, nullString(record.Reference), nullString(string(record.Strategy)),
		record.Success, nullString(record.ErrorMessage), record.RecognitionSuccess, nullString(record.RecognitionSummary),
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to insert video result: %w", err)
	}
	return nil
}

func (r *PostgresVideoRepository) FindByOwner(ctx context.Context, owner string) ([]domain.ProcessingRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, owner, video_original_filename, reference, strategy, success, error_message, recognition_success, recognition_summary, created_at FROM video_recognition_results WHERE owner = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query video results: %w", err)
	}
	defer rows.Close()

	var records []domain.ProcessingRecord
	for rows.Next() {
		var rec domain.ProcessingRecord
		var reference, strategy, errorMessage, summary sql.NullString
		err := rows.Scan(&rec.ID, &rec.Owner, &rec.OriginalFilename, &reference, &strategy,
			&rec.Success, &errorMessage, &rec.RecognitionSuccess, &summary, &rec.CreatedAt)
		if err != nil {
			r.Logger.Warn("error scanning video result row", zap.Error(err))
			continue
		}
		rec.Reference = reference.String
		rec.Strategy = domain.StrategyKind(strategy.String)
		rec.ErrorMessage = errorMessage.String
		rec.RecognitionSummary = summary.String
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over video results: %w", err)
	}
	return records, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
