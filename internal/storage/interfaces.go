package storage

import (
	"context"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/geo"
)

// PlaceRepository reads attractions.
type PlaceRepository interface {
	FindLooseMatches(ctx context.Context, keyword string, limit int) ([]Place, error)
	FindPlaceByName(ctx context.Context, name string) (*Place, error)
	FindPlaces(ctx context.Context, f PlaceFilter) ([]Place, error)
	FindPlacesNear(ctx context.Context, category string, center geo.Point, radiusKm float64, limit int) ([]Place, error)
}

// AreaRepository reads categories and the district/province hierarchy.
type AreaRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CategoriesInArea(ctx context.Context, area Area, recommendedOnly bool) ([]Category, error)
	CategoriesInDistrict(ctx context.Context, districtID int64) ([]Category, error)
	FindDistrictCandidates(ctx context.Context, text, provinceHint string) ([]District, error)
	ListDistricts(ctx context.Context, provinceHint string) ([]District, error)
}

// FestivalRepository reads festivals.
type FestivalRepository interface {
	FestivalsOn(ctx context.Context, day time.Time) ([]Festival, error)
	FestivalsOverlapping(ctx context.Context, from, to time.Time) ([]Festival, error)
	FestivalsFrom(ctx context.Context, day time.Time) ([]Festival, error)
	FestivalByID(ctx context.Context, id int64) (*Festival, error)
	FestivalByName(ctx context.Context, name string) (*Festival, error)
}

// RouteRepository reads tour routes.
type RouteRepository interface {
	RouteTypes(ctx context.Context, f RouteFilter) ([]RouteType, error)
	FindRoutes(ctx context.Context, f RouteFilter) ([]Route, error)
	RouteAttractions(ctx context.Context, routeID int64, area Area) ([]Place, error)
}

// StationRepository reads railway stations and the useful link list.
type StationRepository interface {
	ListStations(ctx context.Context) ([]Station, error)
	FindStation(ctx context.Context, name string) (*Station, error)
	ListUsefulLinks(ctx context.Context) ([]UsefulLink, error)
}

// Catalogue is every read the resolution engine performs.
type Catalogue interface {
	PlaceRepository
	AreaRepository
	FestivalRepository
	RouteRepository
	StationRepository
}

// InteractionRepository appends analytics records.
type InteractionRepository interface {
	InsertInteraction(ctx context.Context, l *InteractionLog) error
	InsertError(ctx context.Context, e *ErrorLog) error
}

var (
	_ Catalogue             = (*DB)(nil)
	_ InteractionRepository = (*DB)(nil)
)
