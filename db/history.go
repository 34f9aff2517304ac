package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// GenerationRecord is one row of generation history: a single provider call
// made on behalf of a variant or iteration.
type GenerationRecord struct {
	ID            int64
	CorrelationID string
	BatchID       string
	VariantID     string
	Provider      string
	Prompt        string
	Status        string
	Error         string
	Width         int
	Height        int
	Duration      time.Duration
	CreatedAt     time.Time
}

// HistoryRepository persists generation records.
type HistoryRepository struct {
	conn *sql.DB
}

// NewHistoryRepository wraps an open database connection.
func NewHistoryRepository(conn *sql.DB) *HistoryRepository {
	return &HistoryRepository{conn: conn}
}

// Insert stores one record and returns its row ID.
func (r *HistoryRepository) Insert(ctx context.Context, rec GenerationRecord) (int64, error) {
	if rec.Status != StatusSuccess && rec.Status != StatusFailed {
		return 0, fmt.Errorf("db: invalid status %q", rec.Status)
	}
	result, err := r.conn.ExecContext(ctx, `
		INSERT INTO generation_history
			(correlation_id, batch_id, variant_id, provider, prompt, status, error, width, height, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CorrelationID, rec.BatchID, rec.VariantID, rec.Provider, rec.Prompt,
		rec.Status, nullIfEmpty(rec.Error), rec.Width, rec.Height, rec.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("db: inserting generation record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db: reading insert id: %w", err)
	}
	return id, nil
}

// ListByBatch returns all records for one batch, oldest first.
func (r *HistoryRepository) ListByBatch(ctx context.Context, batchID string) ([]GenerationRecord, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, correlation_id, batch_id, variant_id, provider, prompt,
		       status, COALESCE(error, ''), width, height, duration_ms, created_at
		FROM generation_history
		WHERE batch_id = ?
		ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("db: listing batch %s: %w", batchID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRecent returns the latest limit records, newest first.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, correlation_id, batch_id, variant_id, provider, prompt,
		       status, COALESCE(error, ''), width, height, duration_ms, created_at
		FROM generation_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: listing recent records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountByStatus returns the number of records with the given status.
func (r *HistoryRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM generation_history WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db: counting %s records: %w", status, err)
	}
	return count, nil
}

func scanRecords(rows *sql.Rows) ([]GenerationRecord, error) {
	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.CorrelationID, &rec.BatchID, &rec.VariantID,
			&rec.Provider, &rec.Prompt, &rec.Status, &rec.Error,
			&rec.Width, &rec.Height, &durationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db: scanning generation record: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterating generation records: %w", err)
	}
	return records, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
