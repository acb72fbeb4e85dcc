package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertInteraction appends one row to df_interactions.
func (db *DB) InsertInteraction(ctx context.Context, l *InteractionLog) error {
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO df_interactions
			(created_at, channel, user_id, session_id, intent, is_fallback, query_text,
			 parameters, response_text, confidence, latency_ms, location_lat, location_lng, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Unix(), l.Channel, nullString(l.UserID), nullString(l.SessionID), nullString(l.Intent),
		l.IsFallback, l.QueryText, l.Parameters, l.ResponseText,
		nullFloat(l.Confidence), l.LatencyMs, nullFloat(l.LocationLat), nullFloat(l.LocationLng), l.Extra,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// InsertError appends one row to df_errors.
func (db *DB) InsertError(ctx context.Context, e *ErrorLog) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO df_errors (created_at, session_id, user_id, error_type, error_msg, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		createdAt.Unix(), nullString(e.SessionID), nullString(e.UserID), e.ErrorType, e.Message, e.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}

// CountInteractions returns the number of logged interactions.
func (db *DB) CountInteractions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM df_interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

// CountErrors returns the number of logged errors.
func (db *DB) CountErrors(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM df_errors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count errors: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
