package storage

import "time"

// Province is a top-level geographic grouping.
type Province struct {
	ID   int64
	Name string
}

// District belongs to exactly one Province.
type District struct {
	ID           int64
	Name         string
	ProvinceID   int64
	ProvinceName string
}

// Category groups places (temples, cafes, waterfalls, ...).
type Category struct {
	ID        int64
	Name      string
	Image     string
	SortOrder int
	// Count is the number of matching places when listed per area; 0 otherwise.
	Count int
}

// Place is a curated attraction. Its province is reached through its district.
type Place struct {
	ID           int64
	Name         string
	Description  string
	Image        string
	Contact      string
	Latitude     *float64
	Longitude    *float64
	CategoryName string
	DistrictName string
	ProvinceName string
	Recommended  bool
	// DistanceKm is set only by radius searches.
	DistanceKm float64
}

// HasCoordinates reports whether both coordinates are stored.
func (p Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Festival runs over the closed interval [Start, End].
type Festival struct {
	ID          int64
	Name        string
	Description string
	Image       string
	Start       time.Time
	End         time.Time
}

// RouteType classifies routes (nature, family, one-day, ...).
type RouteType struct {
	ID    int64
	Name  string
	Image string
}

// Route is a curated multi-stop trip.
type Route struct {
	ID          int64
	Name        string
	Description string
	Image       string
	TripDays    int
	TypeName    string
}

// Station is a railway station used as an anchor for nearby searches.
type Station struct {
	ID           int64
	Name         string
	Image        string
	DistrictID   int64
	DistrictName string
	ProvinceName string
}

// UsefulLink is an external reference shown as a carousel.
type UsefulLink struct {
	ID          int64
	Name        string
	Description string
	URL         string
	Image       string
}

// Area narrows catalogue queries geographically. Empty fields do not filter.
// Matching is substring (LIKE) on names, as user-typed names are partial.
type Area struct {
	Province string
	District string
}

// IsZero reports whether no geographic filter is set.
func (a Area) IsZero() bool {
	return a.Province == "" && a.District == ""
}

// PlaceFilter selects places for listing.
type PlaceFilter struct {
	Category string
	Area     Area
	// DistrictID pins the search to one district; it takes precedence over Area.District.
	DistrictID      int64
	RecommendedOnly bool
	Limit           int
}

// RouteFilter selects routes. TripDays 0 means any length.
type RouteFilter struct {
	Type       string
	Area       Area
	DistrictID int64
	TripDays   int
	Limit      int
}

// scoped reports whether the filter needs the attraction/district join chain.
func (f RouteFilter) scoped() bool {
	return !f.Area.IsZero() || f.DistrictID != 0
}

// InteractionLog is one fulfillment turn as recorded for analytics.
type InteractionLog struct {
	CreatedAt    time.Time
	Channel      string
	UserID       string
	SessionID    string
	Intent       string
	IsFallback   bool
	QueryText    string
	Parameters   string // JSON
	ResponseText string
	Confidence   *float64
	LatencyMs    int64
	LocationLat  *float64
	LocationLng  *float64
	Extra        string // JSON
}

// ErrorLog records a failed interaction log write.
type ErrorLog struct {
	CreatedAt time.Time
	SessionID string
	UserID    string
	ErrorType string
	Message   string
	Payload   string
}
