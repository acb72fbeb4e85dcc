// Command verify checks a catalogue database before it is published: the
// tables the bot cannot answer without are filled, stations are anchored to
// a district, useful links open and festival date ranges are ordered.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/stringutil"
)

var dbFlag = flag.String("db", filepath.Join("data", "lumnambot.db"), "path to the catalogue database")

type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	flag.Parse()

	fmt.Println("🔍 LumNam Bot - Catalogue Verification Tool")
	fmt.Println("===========================================")

	if _, err := os.Stat(*dbFlag); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	db, err := storage.New(*dbFlag)
	if err != nil {
		fmt.Printf("❌ open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results := verifyAll(ctx, db)

	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	failed := 0
	for _, r := range results {
		status := "✅"
		if !r.passed {
			status = "❌"
			failed++
		}
		fmt.Printf("%s %s: %s\n", status, r.name, r.message)
	}
	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", len(results)-failed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func verifyAll(ctx context.Context, db *storage.DB) []verifyResult {
	var results []verifyResult
	results = append(results, verifyTables(ctx, db)...)
	results = append(results, verifyStations(ctx, db))
	results = append(results, verifyLinks(ctx, db))
	results = append(results, verifyFestivals(ctx, db))
	return results
}

// requiredTables must hold at least one row for every intent to have data.
var requiredTables = []string{"province", "district", "category", "attraction"}

func verifyTables(ctx context.Context, db *storage.DB) []verifyResult {
	counts, err := db.CountCatalogue(ctx)
	if err != nil {
		return []verifyResult{{name: "Catalogue Tables", message: err.Error()}}
	}
	results := make([]verifyResult, 0, len(requiredTables))
	for _, table := range requiredTables {
		results = append(results, verifyResult{
			name:    fmt.Sprintf("Table %s", table),
			passed:  counts[table] > 0,
			message: fmt.Sprintf("%d rows", counts[table]),
		})
	}
	return results
}

func verifyStations(ctx context.Context, db *storage.DB) verifyResult {
	r := verifyResult{name: "Stations Anchored"}
	stations, err := db.ListStations(ctx)
	if err != nil {
		r.message = err.Error()
		return r
	}
	var orphans []string
	for _, st := range stations {
		if st.DistrictID == 0 || st.DistrictName == "" {
			orphans = append(orphans, st.Name)
		}
	}
	r.passed = len(orphans) == 0
	if r.passed {
		r.message = fmt.Sprintf("%d stations, all with a district", len(stations))
	} else {
		r.message = fmt.Sprintf("without district: %v", orphans)
	}
	return r
}

func verifyLinks(ctx context.Context, db *storage.DB) verifyResult {
	r := verifyResult{name: "Useful Links"}
	links, err := db.ListUsefulLinks(ctx)
	if err != nil {
		r.message = err.Error()
		return r
	}
	var broken []string
	for _, l := range links {
		if stringutil.NormalizeURL(l.URL) == "" {
			broken = append(broken, l.Name)
		}
	}
	r.passed = len(broken) == 0
	if r.passed {
		r.message = fmt.Sprintf("%d links open", len(links))
	} else {
		r.message = fmt.Sprintf("unusable URL: %v", broken)
	}
	return r
}

func verifyFestivals(ctx context.Context, db *storage.DB) verifyResult {
	r := verifyResult{name: "Festival Dates"}
	festivals, err := db.FestivalsFrom(ctx, time.Time{})
	if err != nil {
		r.message = err.Error()
		return r
	}
	var reversed []string
	for _, f := range festivals {
		if f.End.Before(f.Start) {
			reversed = append(reversed, f.Name)
		}
	}
	r.passed = len(reversed) == 0
	if r.passed {
		r.message = fmt.Sprintf("%d festivals, all ranges ordered", len(festivals))
	} else {
		r.message = fmt.Sprintf("end before start: %v", reversed)
	}
	return r
}
