package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

// DefaultListLimit caps list queries that have no explicit limit.
const DefaultListLimit = 50

const placeColumns = `
	a.Attraction_ID, a.Attraction_Name,
	COALESCE(a.Attraction_Description, ''), COALESCE(a.Attraction_Img, ''), COALESCE(a.Contact_Info, ''),
	a.Latitude, a.Longitude,
	COALESCE(c.Category_Name, ''), COALESCE(d.District_Name, ''), COALESCE(p.Province_Name, ''),
	a.Reccomendation_Attraction`

const placeJoins = `
	FROM attraction a
	LEFT JOIN category c ON a.Category_ID = c.Category_ID
	LEFT JOIN district d ON a.District_ID = d.District_ID
	LEFT JOIN province p ON d.Province_ID = p.Province_ID`

// FindLooseMatches returns places whose name contains keyword after both sides
// drop whitespace and Thai combining marks. Shorter names come first.
func (db *DB) FindLooseMatches(ctx context.Context, keyword string, limit int) ([]Place, error) {
	normalized := thaitext.Normalize(keyword)
	if normalized == "" {
		return nil, nil
	}
	limit = clampLimit(limit)

	query := `SELECT` + placeColumns + placeJoins + `
		WHERE ` + thaitext.SQLExpr("a.Attraction_Name") + ` LIKE ?` + likeEscape + `
		ORDER BY LENGTH(a.Attraction_Name) ASC, a.Attraction_ID ASC
		LIMIT ?`

	start := time.Now()
	places, err := db.queryPlaces(ctx, query, containsPattern(normalized), limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to search places loosely",
			"keyword", keyword,
			"error", err)
		return nil, fmt.Errorf("loose place search: %w", err)
	}
	warnIfSlow(ctx, "FindLooseMatches", start, "keyword", keyword, "rows", len(places))
	return places, nil
}

// FindPlaceByName returns the shortest-named place containing name, or nil.
func (db *DB) FindPlaceByName(ctx context.Context, name string) (*Place, error) {
	var c conditions
	c.like("a.Attraction_Name", name)
	if len(c.clauses) == 0 {
		return nil, nil
	}

	query := `SELECT` + placeColumns + placeJoins + c.where() + `
		ORDER BY LENGTH(a.Attraction_Name) ASC, a.Attraction_ID ASC
		LIMIT 1`
	places, err := db.queryPlaces(ctx, query, c.args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query place by name",
			"name", name,
			"error", err)
		return nil, fmt.Errorf("query place by name: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}
	return &places[0], nil
}

// FindPlaces lists places matching every non-empty field of f.
func (db *DB) FindPlaces(ctx context.Context, f PlaceFilter) ([]Place, error) {
	var c conditions
	c.like("c.Category_Name", f.Category)
	if f.DistrictID != 0 {
		c.add("a.District_ID = ?", f.DistrictID)
		c.like("p.Province_Name", f.Area.Province)
	} else {
		c.area(f.Area)
	}
	if f.RecommendedOnly {
		c.add("a.Reccomendation_Attraction = 1")
	}

	query := `SELECT` + placeColumns + placeJoins + c.where() + `
		ORDER BY a.Attraction_ID ASC
		LIMIT ?`

	start := time.Now()
	places, err := db.queryPlaces(ctx, query, append(c.args, clampLimit(f.Limit))...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list places",
			"category", f.Category,
			"province", f.Area.Province,
			"district", f.Area.District,
			"error", err)
		return nil, fmt.Errorf("list places: %w", err)
	}
	warnIfSlow(ctx, "FindPlaces", start, "rows", len(places))
	return places, nil
}

// FindPlacesNear returns places in category within radiusKm of center,
// nearest first. The bounding box narrows rows in SQL; distance is exact.
func (db *DB) FindPlacesNear(ctx context.Context, category string, center geo.Point, radiusKm float64, limit int) ([]Place, error) {
	box := geo.BoundingBox(center, radiusKm)

	var c conditions
	c.like("c.Category_Name", category)
	c.add("a.Latitude IS NOT NULL AND a.Longitude IS NOT NULL")
	c.add("a.Latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	c.add("a.Longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)

	query := `SELECT` + placeColumns + placeJoins + c.where()

	start := time.Now()
	candidates, err := db.queryPlaces(ctx, query, c.args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to search places by radius",
			"category", category,
			"error", err)
		return nil, fmt.Errorf("radius place search: %w", err)
	}

	nearby := candidates[:0]
	for _, p := range candidates {
		d := geo.Haversine(center, geo.Point{Lat: *p.Latitude, Lng: *p.Longitude})
		if d <= radiusKm {
			p.DistanceKm = d
			nearby = append(nearby, p)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if limit = clampLimit(limit); len(nearby) > limit {
		nearby = nearby[:limit]
	}
	warnIfSlow(ctx, "FindPlacesNear", start, "candidates", len(candidates), "rows", len(nearby))
	return nearby, nil
}

// RouteAttractions lists the places on a route, narrowed to area when given.
func (db *DB) RouteAttractions(ctx context.Context, routeID int64, area Area) ([]Place, error) {
	c := conditions{}
	c.add("ra.Route_ID = ?", routeID)
	c.area(area)

	query := `SELECT` + placeColumns + `
		FROM route_attraction ra
		JOIN attraction a ON ra.Attraction_ID = a.Attraction_ID
		LEFT JOIN category c ON a.Category_ID = c.Category_ID
		LEFT JOIN district d ON a.District_ID = d.District_ID
		LEFT JOIN province p ON d.Province_ID = p.Province_ID` + c.where() + `
		ORDER BY a.Attraction_ID ASC
		LIMIT ?`

	places, err := db.queryPlaces(ctx, query, append(c.args, DefaultListLimit)...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list route attractions",
			"route_id", routeID,
			"error", err)
		return nil, fmt.Errorf("list route attractions: %w", err)
	}
	return places, nil
}

func (db *DB) queryPlaces(ctx context.Context, query string, args ...any) ([]Place, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var places []Place
	for rows.Next() {
		var (
			p        Place
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Image, &p.Contact,
			&lat, &lng,
			&p.CategoryName, &p.DistrictName, &p.ProvinceName,
			&p.Recommended,
		); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		if lat.Valid && lng.Valid {
			p.Latitude, p.Longitude = &lat.Float64, &lng.Float64
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
