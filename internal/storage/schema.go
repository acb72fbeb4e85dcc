package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all tables and indexes. Column names match the curated
// catalogue export so snapshot files can be opened as-is.
func InitSchema(db *sql.DB) error {
	steps := []struct {
		name  string
		query string
	}{
		{"geography", geographySchema},
		{"category", categorySchema},
		{"attraction", attractionSchema},
		{"festival", festivalSchema},
		{"route", routeSchema},
		{"train_station", stationSchema},
		{"useful_link", usefulLinkSchema},
		{"interaction log", interactionSchema},
	}
	for _, step := range steps {
		if _, err := db.ExecContext(context.Background(), step.query); err != nil {
			return fmt.Errorf("failed to create %s tables: %w", step.name, err)
		}
	}
	return nil
}

const geographySchema = `
CREATE TABLE IF NOT EXISTS province (
	Province_ID INTEGER PRIMARY KEY,
	Province_Name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS district (
	District_ID INTEGER PRIMARY KEY,
	District_Name TEXT NOT NULL,
	Province_ID INTEGER NOT NULL REFERENCES province(Province_ID)
);
CREATE INDEX IF NOT EXISTS idx_district_province ON district(Province_ID);
`

const categorySchema = `
CREATE TABLE IF NOT EXISTS category (
	Category_ID INTEGER PRIMARY KEY,
	Category_Name TEXT NOT NULL,
	Category_Img TEXT,
	Sort_Order INTEGER NOT NULL DEFAULT 0
);
`

const attractionSchema = `
CREATE TABLE IF NOT EXISTS attraction (
	Attraction_ID INTEGER PRIMARY KEY,
	Attraction_Name TEXT NOT NULL,
	Attraction_Description TEXT,
	Attraction_Img TEXT,
	Contact_Info TEXT,
	Latitude REAL,
	Longitude REAL,
	Category_ID INTEGER REFERENCES category(Category_ID),
	District_ID INTEGER REFERENCES district(District_ID),
	Reccomendation_Attraction INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_attraction_category ON attraction(Category_ID);
CREATE INDEX IF NOT EXISTS idx_attraction_district ON attraction(District_ID);
CREATE INDEX IF NOT EXISTS idx_attraction_coords ON attraction(Latitude, Longitude);
`

const festivalSchema = `
CREATE TABLE IF NOT EXISTS festival (
	Festival_ID INTEGER PRIMARY KEY,
	Festival_Name TEXT NOT NULL,
	Festival_description TEXT,
	Start_date TEXT NOT NULL,
	End_date TEXT NOT NULL,
	Festival_Img TEXT
);
CREATE INDEX IF NOT EXISTS idx_festival_dates ON festival(Start_date, End_date);
`

const routeSchema = `
CREATE TABLE IF NOT EXISTS route_type (
	RType_ID INTEGER PRIMARY KEY,
	RType_Name TEXT NOT NULL,
	Rtype_img TEXT
);
CREATE TABLE IF NOT EXISTS route (
	Route_ID INTEGER PRIMARY KEY,
	Route_Name TEXT NOT NULL,
	Description_Route TEXT,
	Route_Img TEXT,
	Trip_Days INTEGER,
	RType_ID INTEGER REFERENCES route_type(RType_ID)
);
CREATE TABLE IF NOT EXISTS route_attraction (
	Route_ID INTEGER NOT NULL REFERENCES route(Route_ID),
	Attraction_ID INTEGER NOT NULL REFERENCES attraction(Attraction_ID),
	PRIMARY KEY (Route_ID, Attraction_ID)
);
CREATE INDEX IF NOT EXISTS idx_route_type ON route(RType_ID);
`

const stationSchema = `
CREATE TABLE IF NOT EXISTS train_station (
	Station_ID INTEGER PRIMARY KEY,
	Station_Name TEXT NOT NULL,
	Station_Img TEXT,
	District_ID INTEGER REFERENCES district(District_ID)
);
`

const usefulLinkSchema = `
CREATE TABLE IF NOT EXISTS useful_link (
	U_ID INTEGER PRIMARY KEY,
	U_Name TEXT NOT NULL,
	U_Description TEXT,
	U_Link TEXT,
	U_Img TEXT
);
`

const interactionSchema = `
CREATE TABLE IF NOT EXISTS df_interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	channel TEXT NOT NULL,
	user_id TEXT,
	session_id TEXT,
	intent TEXT,
	is_fallback INTEGER NOT NULL DEFAULT 0,
	query_text TEXT,
	parameters TEXT,
	response_text TEXT,
	confidence REAL,
	latency_ms INTEGER,
	location_lat REAL,
	location_lng REAL,
	extra TEXT
);
CREATE INDEX IF NOT EXISTS idx_interactions_created ON df_interactions(created_at);
CREATE TABLE IF NOT EXISTS df_errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	session_id TEXT,
	user_id TEXT,
	error_type TEXT NOT NULL,
	error_msg TEXT,
	payload TEXT
);
`
