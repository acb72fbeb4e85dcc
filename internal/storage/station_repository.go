package storage

import (
	"context"
	"fmt"
	"log/slog"
)

const stationQuery = `
	SELECT s.Station_ID, s.Station_Name, COALESCE(s.Station_Img, ''), s.District_ID,
		d.District_Name, p.Province_Name
	FROM train_station s
	JOIN district d ON s.District_ID = d.District_ID
	JOIN province p ON d.Province_ID = p.Province_ID`

// ListStations returns every station ordered by province, district and name.
func (db *DB) ListStations(ctx context.Context) ([]Station, error) {
	stations, err := db.queryStations(ctx, stationQuery+`
		ORDER BY p.Province_Name, d.District_Name, s.Station_Name`)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list stations", "error", err)
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// FindStation returns the station whose name contains name, preferring an
// exact match, or nil.
func (db *DB) FindStation(ctx context.Context, name string) (*Station, error) {
	var c conditions
	c.like("s.Station_Name", name)
	if len(c.clauses) == 0 {
		return nil, nil
	}
	stations, err := db.queryStations(ctx, stationQuery+c.where()+`
		ORDER BY (s.Station_Name = ?) DESC, LENGTH(s.Station_Name) ASC
		LIMIT 1`, append(c.args, name)...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find station",
			"name", name,
			"error", err)
		return nil, fmt.Errorf("find station: %w", err)
	}
	if len(stations) == 0 {
		return nil, nil
	}
	return &stations[0], nil
}

func (db *DB) queryStations(ctx context.Context, query string, args ...any) ([]Station, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stations []Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.DistrictID, &s.DistrictName, &s.ProvinceName); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// ListUsefulLinks returns external links ordered by id.
func (db *DB) ListUsefulLinks(ctx context.Context) ([]UsefulLink, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT U_ID, U_Name, COALESCE(U_Description, ''), COALESCE(U_Link, ''), COALESCE(U_Img, '')
		FROM useful_link
		ORDER BY U_ID ASC
		LIMIT ?`, DefaultListLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list useful links", "error", err)
		return nil, fmt.Errorf("list useful links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []UsefulLink
	for rows.Next() {
		var l UsefulLink
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.URL, &l.Image); err != nil {
			return nil, fmt.Errorf("scan useful link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
