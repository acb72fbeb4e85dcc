package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DateLayout is how festival dates are stored and compared.
const DateLayout = "2006-01-02"

// MaxFestivals caps festival listings.
const MaxFestivals = 30

const festivalColumns = `
	Festival_ID, Festival_Name, COALESCE(Festival_description, ''), COALESCE(Festival_Img, ''),
	Start_date, End_date`

// FestivalsOn returns festivals whose [start, end] contains day.
func (db *DB) FestivalsOn(ctx context.Context, day time.Time) ([]Festival, error) {
	d := day.Format(DateLayout)
	return db.listFestivals(ctx, "FestivalsOn",
		`WHERE ? BETWEEN substr(Start_date, 1, 10) AND substr(End_date, 1, 10)`, d)
}

// FestivalsOverlapping returns festivals whose interval overlaps [from, to].
func (db *DB) FestivalsOverlapping(ctx context.Context, from, to time.Time) ([]Festival, error) {
	return db.listFestivals(ctx, "FestivalsOverlapping",
		`WHERE substr(Start_date, 1, 10) <= ? AND substr(End_date, 1, 10) >= ?`,
		to.Format(DateLayout), from.Format(DateLayout))
}

// FestivalsFrom returns festivals that have not ended before day.
func (db *DB) FestivalsFrom(ctx context.Context, day time.Time) ([]Festival, error) {
	return db.listFestivals(ctx, "FestivalsFrom",
		`WHERE substr(End_date, 1, 10) >= ?`, day.Format(DateLayout))
}

func (db *DB) listFestivals(ctx context.Context, op, where string, args ...any) ([]Festival, error) {
	query := `SELECT` + festivalColumns + ` FROM festival ` + where + `
		ORDER BY Start_date ASC, Festival_ID ASC
		LIMIT ?`

	start := time.Now()
	festivals, err := db.queryFestivals(ctx, query, append(args, MaxFestivals)...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list festivals",
			"operation", op,
			"error", err)
		return nil, fmt.Errorf("list festivals: %w", err)
	}
	warnIfSlow(ctx, op, start, "rows", len(festivals))
	return festivals, nil
}

// FestivalByID returns one festival, or nil when absent.
func (db *DB) FestivalByID(ctx context.Context, id int64) (*Festival, error) {
	query := `SELECT` + festivalColumns + ` FROM festival WHERE Festival_ID = ? LIMIT 1`
	return db.oneFestival(ctx, query, id)
}

// FestivalByName returns the latest-starting festival whose name contains name, or nil.
func (db *DB) FestivalByName(ctx context.Context, name string) (*Festival, error) {
	var c conditions
	c.like("Festival_Name", name)
	if len(c.clauses) == 0 {
		return nil, nil
	}
	query := `SELECT` + festivalColumns + ` FROM festival` + c.where() + `
		ORDER BY Start_date DESC
		LIMIT 1`
	return db.oneFestival(ctx, query, c.args...)
}

func (db *DB) oneFestival(ctx context.Context, query string, args ...any) (*Festival, error) {
	festivals, err := db.queryFestivals(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query festival", "error", err)
		return nil, fmt.Errorf("query festival: %w", err)
	}
	if len(festivals) == 0 {
		return nil, nil
	}
	return &festivals[0], nil
}

func (db *DB) queryFestivals(ctx context.Context, query string, args ...any) ([]Festival, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var festivals []Festival
	for rows.Next() {
		var (
			f          Festival
			start, end string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Image, &start, &end); err != nil {
			return nil, fmt.Errorf("scan festival: %w", err)
		}
		if f.Start, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("festival %d start: %w", f.ID, err)
		}
		if f.End, err = parseDate(end); err != nil {
			return nil, fmt.Errorf("festival %d end: %w", f.ID, err)
		}
		festivals = append(festivals, f)
	}
	return festivals, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}
