// Package store keeps the translation history journal in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/cliptran/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers; sqlite would otherwise report
	// SQLITE_BUSY when the monitor and a manual run finish together.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_history (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		source_text TEXT NOT NULL,
		detected_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_created ON translation_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_status ON translation_history(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord appends one finished run.
func (s *Store) SaveRecord(ctx context.Context, rec internal.TranslationRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translation_history
			(id, run_id, source_text, detected_lang, target_lang, translated_text, model, status, error, input_tokens, output_tokens, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, normalizeText(rec.SourceText), rec.DetectedLang, rec.TargetLang,
		rec.TranslatedText, rec.Model, rec.Status, rec.Error,
		rec.InputTokens, rec.OutputTokens, rec.LatencyMs, created.UTC())
	if err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// ListFilter narrows ListHistory. Zero values match everything.
type ListFilter struct {
	Status string
	Limit  int
}

// ListHistory returns records, newest first.
func (s *Store) ListHistory(ctx context.Context, f ListFilter) ([]internal.TranslationRecord, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, run_id, source_text, detected_lang, target_lang, translated_text, model, status, error, input_tokens, output_tokens, latency_ms, created_at FROM translation_history`)
	if f.Status != "" {
		sb.WriteString(` WHERE status = ?`)
		args = append(args, f.Status)
	}
	sb.WriteString(` ORDER BY created_at DESC, rowid DESC`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.TranslationRecord
	for rows.Next() {
		var r internal.TranslationRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.SourceText, &r.DetectedLang, &r.TargetLang, &r.TranslatedText,
			&r.Model, &r.Status, &r.Error, &r.InputTokens, &r.OutputTokens, &r.LatencyMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// ModelUsage is the token total recorded for one model.
type ModelUsage struct {
	Model        string `json:"model"`
	Requests     int    `json:"requests"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// HistoryStats summarises the journal.
type HistoryStats struct {
	Total      int          `json:"total"`
	Translated int          `json:"translated"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	ByModel    []ModelUsage `json:"by_model"`
}

// Stats returns counts per status and token totals per model.
func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'translated' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM translation_history`).Scan(
		&stats.Total,
		&stats.Translated,
		&stats.Skipped,
		&stats.Failed,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM translation_history
		WHERE status = 'translated'
		GROUP BY model
		ORDER BY model`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Requests, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, err
		}
		stats.ByModel = append(stats.ByModel, u)
	}
	return stats, rows.Err()
}

// ClearHistory removes every record and returns how many were deleted.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_history`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so the
// same clipboard text copied from different applications is stored alike.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
