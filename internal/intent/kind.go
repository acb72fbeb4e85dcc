// Package intent turns a raw NLU turn into typed input for the resolver:
// a Kind chosen before any business logic runs, and a Params record with
// every loosely-typed parameter normalized once at the boundary.
package intent

// Kind is the resolved intent of a turn.
type Kind int

const (
	Unknown Kind = iota
	Fallback
	ListProvinceAttractions
	ListCategoriesHere
	ListCategoryAttractions
	ListRecommendedAttractions
	TourRoute
	RouteDetail
	ListFestivals
	FestivalDetail
	AttractionsNearStation
	FindAttractionByName
	AttractionDetail
	UsefulLink
	OnLineLocation
)

// FallbackDisplayName is the NLU's catch-all intent.
const FallbackDisplayName = "Default Fallback Intent"

var kindNames = map[Kind]string{
	Unknown:                    "Unknown",
	Fallback:                   FallbackDisplayName,
	ListProvinceAttractions:    "ListProvinceAttractions",
	ListCategoriesHere:         "ListCategoriesHere",
	ListCategoryAttractions:    "ListCategoryAttractions",
	ListRecommendedAttractions: "ListRecommendedAttractions",
	TourRoute:                  "TourRoute",
	RouteDetail:                "RouteDetail",
	ListFestivals:              "ListFestivals",
	FestivalDetail:             "FestivalDetail",
	AttractionsNearStation:     "AttractionsNearStation",
	FindAttractionByName:       "FindAttractionByName",
	AttractionDetail:           "AttractionDetail",
	UsefulLink:                 "UsefulLink",
	OnLineLocation:             "OnLineLocation",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the NLU display name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// ParseKind maps an NLU display name to a Kind. Unrecognized names are Unknown.
func ParseKind(displayName string) Kind {
	if k, ok := kindsByName[displayName]; ok {
		return k
	}
	return Unknown
}

// BypassesPendingDistrict reports whether a pending district question is
// ignored for this kind.
func (k Kind) BypassesPendingDistrict() bool {
	switch k {
	case AttractionsNearStation, TourRoute, RouteDetail, ListFestivals,
		FestivalDetail, FindAttractionByName, AttractionDetail:
		return true
	}
	return false
}
