package resolver

import (
	"context"
	"fmt"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// sharedPoint returns the location this turn searches around: coordinates
// carried by the turn itself, or a point shared earlier whose category
// arrives now.
func (e *Engine) sharedPoint(t *turn, state PendingState) *geo.Point {
	if t.params.Coords != nil {
		return t.params.Coords
	}
	if state.Kind == AwaitingLocationShare && state.Point != nil && t.params.Category != "" {
		return state.Point
	}
	return nil
}

// nearbyPlaces answers a shared location: places of the category in the
// user's district first, then within the search radius.
func (e *Engine) nearbyPlaces(ctx context.Context, t *turn, pt geo.Point, state PendingState) ([]dialogflow.Message, error) {
	category := t.params.Category
	if category == "" && state.Kind == AwaitingLocationShare && !intent.IsGenericCategory(state.Category) {
		category = state.Category
	}
	if category == "" {
		t.out.Set(dialogflow.AwaitingLocation, dialogflow.PendingLifespan, dialogflow.Parameters{
			"latitude":  pt.Lat,
			"longitude": pt.Lng,
		})
		t.outcome = outcomePrompt
		return []dialogflow.Message{
			dialogflow.TextMessage("รับตำแหน่งแล้ว อยากหาอะไรใกล้ๆ (เช่น วัด, ร้านอาหาร, คาเฟ่)?"),
		}, nil
	}
	t.out.Clear(dialogflow.AwaitingLocation)

	area := e.geocoder.ResolveArea(ctx, pt)
	district := geo.StripDistrictPrefix(area.District)
	province := geo.StripProvincePrefix(area.Province)

	ladder := NewLadder[storage.Place](t.kind.String(), e.metrics, FilterCategory)
	if district != "" {
		ladder.Add("same_district", func(ctx context.Context) ([]storage.Place, error) {
			return e.store.FindPlaces(ctx, storage.PlaceFilter{
				Category: category,
				Area:     storage.Area{Province: province, District: district},
			})
		})
	}
	ladder.Add("radius", func(ctx context.Context) ([]storage.Place, error) {
		return e.store.FindPlacesNear(ctx, category, pt, nearbyRadiusKm, maxNearbyPlaces)
	}, FilterDistrict)

	out, err := ladder.Climb(ctx)
	if err != nil {
		return nil, err
	}
	if !out.Found() {
		return t.notFound(fmt.Sprintf(`บริเวณนี้ยังไม่พบ "%s" ในรัศมี ~%d กม.`, category, nearbyRadiusKm)), nil
	}

	if out.Rung == "same_district" {
		where := district
		if province != "" {
			where += ", " + province
		}
		return e.renderer.Places(ctx, fmt.Sprintf("%s ในอำเภอเดียวกับคุณ (%s)", category, where), out.Rows), nil
	}
	return e.renderer.Places(ctx, fmt.Sprintf("%s ใกล้คุณ (ภายใน ~%d กม.)", category, nearbyRadiusKm), out.Rows), nil
}
