package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

// MaxDistrictCandidates caps FindDistrictCandidates.
const MaxDistrictCandidates = 10

// maxAreaCategories caps per-area category listings.
const maxAreaCategories = 20

// ListCategories returns the browsable categories (sort order 1 to 20).
func (db *DB) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT Category_ID, Category_Name, COALESCE(Category_Img, ''), Sort_Order, 0
		FROM category
		WHERE Sort_Order BETWEEN 1 AND 20
		ORDER BY Sort_Order ASC, Category_Name ASC`

	cats, err := db.queryCategories(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list categories", "error", err)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CategoriesInArea returns categories having at least one place in area.
// The recommended variant counts only recommended places and orders by that
// count; otherwise browsable categories come in sort order.
func (db *DB) CategoriesInArea(ctx context.Context, area Area, recommendedOnly bool) ([]Category, error) {
	var c conditions
	order := "c.Sort_Order ASC, c.Category_Name ASC"
	if recommendedOnly {
		c.add("a.Reccomendation_Attraction = 1")
		order = "AttrCount DESC, c.Category_Name ASC"
	} else {
		c.add("c.Sort_Order BETWEEN 1 AND 20")
	}
	c.area(area)

	query := `
		SELECT c.Category_ID, c.Category_Name, COALESCE(c.Category_Img, ''), c.Sort_Order, COUNT(*) AS AttrCount
		FROM attraction a
		JOIN category c ON a.Category_ID = c.Category_ID
		JOIN district d ON a.District_ID = d.District_ID
		JOIN province p ON d.Province_ID = p.Province_ID` + c.where() + `
		GROUP BY c.Category_ID, c.Category_Name, c.Category_Img, c.Sort_Order
		ORDER BY ` + order + `
		LIMIT ?`

	start := time.Now()
	cats, err := db.queryCategories(ctx, query, append(c.args, maxAreaCategories)...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list categories in area",
			"province", area.Province,
			"district", area.District,
			"recommended", recommendedOnly,
			"error", err)
		return nil, fmt.Errorf("list categories in area: %w", err)
	}
	warnIfSlow(ctx, "CategoriesInArea", start, "rows", len(cats))
	return cats, nil
}

// CategoriesInDistrict returns categories with places in one district, in sort order.
func (db *DB) CategoriesInDistrict(ctx context.Context, districtID int64) ([]Category, error) {
	query := `
		SELECT c.Category_ID, c.Category_Name, COALESCE(c.Category_Img, ''), c.Sort_Order, COUNT(*) AS AttrCount
		FROM attraction a
		JOIN category c ON a.Category_ID = c.Category_ID
		WHERE a.District_ID = ?
		GROUP BY c.Category_ID, c.Category_Name, c.Category_Img, c.Sort_Order
		ORDER BY c.Sort_Order ASC, c.Category_Name ASC
		LIMIT ?`

	cats, err := db.queryCategories(ctx, query, districtID, maxAreaCategories)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list categories in district",
			"district_id", districtID,
			"error", err)
		return nil, fmt.Errorf("list categories in district: %w", err)
	}
	return cats, nil
}

func (db *DB) queryCategories(ctx context.Context, query string, args ...any) ([]Category, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Image, &cat.SortOrder, &cat.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// ListDistricts returns all districts with their province, optionally
// narrowed by a province name substring.
func (db *DB) ListDistricts(ctx context.Context, provinceHint string) ([]District, error) {
	var c conditions
	c.add("TRIM(d.District_Name) <> ''")
	c.like("p.Province_Name", provinceHint)

	query := `
		SELECT d.District_ID, d.District_Name, p.Province_ID, p.Province_Name
		FROM district d
		JOIN province p ON d.Province_ID = p.Province_ID` + c.where() + `
		ORDER BY d.District_ID ASC`

	rows, err := db.conn.QueryContext(ctx, query, c.args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list districts",
			"province_hint", provinceHint,
			"error", err)
		return nil, fmt.Errorf("list districts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var districts []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.ProvinceID, &d.ProvinceName); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// minDistrictNeedleRunes is the shortest reply that may match as part of a
// longer district name.
const minDistrictNeedleRunes = 2

// FindDistrictCandidates returns districts whose prefix-stripped name loosely
// contains the text or is contained in it, at most MaxDistrictCandidates.
// A name only matches part of the text when the text is at least
// minDistrictNeedleRunes long.
func (db *DB) FindDistrictCandidates(ctx context.Context, text, provinceHint string) ([]District, error) {
	needle := thaitext.Normalize(text)
	if needle == "" {
		return nil, nil
	}
	partial := thaitext.RuneLen(needle) >= minDistrictNeedleRunes

	all, err := db.ListDistricts(ctx, provinceHint)
	if err != nil {
		return nil, err
	}

	var hits []District
	for _, d := range all {
		name := thaitext.Normalize(geo.StripDistrictPrefix(d.Name))
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || (partial && strings.Contains(name, needle)) {
			hits = append(hits, d)
			if len(hits) == MaxDistrictCandidates {
				break
			}
		}
	}
	return hits, nil
}

// CountCatalogue returns row counts of the catalogue tables for readiness and metrics.
func (db *DB) CountCatalogue(ctx context.Context) (map[string]int, error) {
	tables := []string{"attraction", "category", "district", "province", "festival", "route", "train_station", "useful_link"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		// table names come from the fixed list above
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
