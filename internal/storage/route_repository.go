package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MaxRoutes caps route listings.
const MaxRoutes = 30

const routeScopeJoins = `
	JOIN route_attraction ra ON ra.Route_ID = r.Route_ID
	JOIN attraction a ON a.Attraction_ID = ra.Attraction_ID
	JOIN district d ON d.District_ID = a.District_ID
	JOIN province p ON p.Province_ID = d.Province_ID`

func (f RouteFilter) conditions() conditions {
	var c conditions
	c.like("rt.RType_Name", f.Type)
	if f.DistrictID != 0 {
		c.add("d.District_ID = ?", f.DistrictID)
	} else {
		c.area(f.Area)
	}
	if f.TripDays > 0 {
		c.add("r.Trip_Days = ?", f.TripDays)
	}
	return c
}

// RouteTypes returns route types that have at least one route matching f.
// Type in f is ignored. Without an area only trip days filter.
func (db *DB) RouteTypes(ctx context.Context, f RouteFilter) ([]RouteType, error) {
	f.Type = ""
	c := f.conditions()

	joins := ""
	if f.scoped() {
		joins = routeScopeJoins
	}
	query := `
		SELECT DISTINCT rt.RType_ID, rt.RType_Name, COALESCE(rt.Rtype_img, '')
		FROM route_type rt
		JOIN route r ON r.RType_ID = rt.RType_ID` + joins + c.where() + `
		ORDER BY rt.RType_ID ASC`

	rows, err := db.conn.QueryContext(ctx, query, c.args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list route types",
			"province", f.Area.Province,
			"district", f.Area.District,
			"trip_days", f.TripDays,
			"error", err)
		return nil, fmt.Errorf("list route types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var types []RouteType
	for rows.Next() {
		var rt RouteType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Image); err != nil {
			return nil, fmt.Errorf("scan route type: %w", err)
		}
		types = append(types, rt)
	}
	return types, rows.Err()
}

// FindRoutes returns routes of a type matching f, newest first.
func (db *DB) FindRoutes(ctx context.Context, f RouteFilter) ([]Route, error) {
	c := f.conditions()

	joins := ""
	if f.scoped() {
		joins = routeScopeJoins
	}
	limit := f.Limit
	if limit <= 0 || limit > MaxRoutes {
		limit = MaxRoutes
	}
	query := `
		SELECT DISTINCT r.Route_ID, r.Route_Name, COALESCE(r.Description_Route, ''), COALESCE(r.Route_Img, ''),
			COALESCE(r.Trip_Days, 0), rt.RType_Name
		FROM route r
		JOIN route_type rt ON r.RType_ID = rt.RType_ID` + joins + c.where() + `
		ORDER BY r.Route_ID DESC
		LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, append(c.args, limit)...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list routes",
			"type", f.Type,
			"province", f.Area.Province,
			"district", f.Area.District,
			"trip_days", f.TripDays,
			"error", err)
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Image, &r.TripDays, &r.TypeName); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, r)
	}
	warnIfSlow(ctx, "FindRoutes", start, "rows", len(routes))
	return routes, rows.Err()
}
