package resolver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// stationParams is the near_station_ctx payload.
func stationParams(st *storage.Station, days int) dialogflow.Parameters {
	p := dialogflow.Parameters{
		"station_id":    strconv.FormatInt(st.ID, 10),
		"station_name":  st.Name,
		"district_id":   strconv.FormatInt(st.DistrictID, 10),
		"district_name": st.DistrictName,
		"province_name": st.ProvinceName,
		"trip_days":     nil,
	}
	if days > 0 {
		p["trip_days"] = days
	}
	return p
}

// attractionsNearStation anchors the conversation to a railway station.
// Results stay inside the station's district.
func (e *Engine) attractionsNearStation(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	t.out.Clear(dialogflow.AwaitingDistrict)

	if intent.IsWhyAsk(t.text) {
		if c, ok := t.nearStation(); ok && c.Parameters.String("station_name") != "" {
			t.out.Keep(c)
			return reply.Text(fmt.Sprintf(
				`ขออภัยค่ะสามารถแสดงเฉพาะข้อมูลใน "อำเภอเดียวกับสถานี" เพื่อให้ใกล้จริงและตรงพื้นที่ค่ะ `+
					`(ตอนนี้คืออำเภอ %s ใกล้สถานี %s) ถ้าอยากดูอำเภอข้างเคียง ระบุชื่ออำเภอเพิ่มได้เลยค่ะ`,
				c.Parameters.String("district_name"), c.Parameters.String("station_name"))), nil
		}
	}

	// Days count only when stated this turn.
	days := 0
	if t.params.ExplicitDays {
		days = t.params.TripDays
	}
	routeType := intent.CleanRouteType(
		dialogflow.FirstNonEmpty(t.params.RouteType, intent.StationRouteTypeFromText(t.text)), "", "")
	days, routeType = intent.MoveDaysOutOfPhrase(routeType, days)
	routeMode := routeType != "" || intent.MentionsRoute(t.text)

	name := dialogflow.FirstNonEmpty(t.params.Station, intent.StationFromText(t.text))
	if name == "" {
		return e.stationList(ctx, t)
	}
	st, err := e.store.FindStation(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return t.notFound("ไม่พบสถานีชื่อ " + name), nil
	}
	t.out.Set(dialogflow.NearStation, dialogflow.AreaLifespan, stationParams(st, days))

	if routeMode {
		return e.routesNearStation(ctx, t, st, routeType, days)
	}

	category := t.params.Category
	if category == "" {
		category = intent.StationCategoryFromText(t.text)
	}
	if category != "" && !intent.IsGenericAsk(category) {
		return e.placesNearStation(ctx, t, st, category)
	}
	return e.stationCategories(ctx, t, st)
}

func (e *Engine) stationList(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	stations, err := e.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return t.notFound("ยังไม่มีข้อมูลสถานีรถไฟ"), nil
	}
	return append(e.renderer.Stations(ctx, stations),
		dialogflow.TextMessage("แตะ “ดูเพิ่มเติม” ที่สถานี แล้วเลือกหมวดหมู่ถัดไป")), nil
}

// routesNearStation lists route types, or routes of one type, having stops
// in the station's district.
func (e *Engine) routesNearStation(ctx context.Context, t *turn, st *storage.Station, routeType string, days int) ([]dialogflow.Message, error) {
	// A route follow-up without a station phrase keeps the type picked before.
	if routeType == "" && !intent.MentionsStationNearby(t.text) {
		if c, ok := t.inbound.Get(dialogflow.RouteArea); ok {
			routeType = intent.CleanRouteType(c.Parameters.String("Route_Type"), "", "")
		}
	}

	if routeType == "" {
		types, err := e.store.RouteTypes(ctx, storage.RouteFilter{DistrictID: st.DistrictID, TripDays: days})
		if err != nil {
			return nil, err
		}
		if len(types) == 0 {
			return t.notFound("ยังไม่พบ “ประเภทเส้นทาง” ใกล้สถานี " + st.Name), nil
		}
		t.out.Set(dialogflow.RouteArea, dialogflow.AreaLifespan, routeAreaParams(st.ProvinceName, st.DistrictName, "", days))
		return e.renderer.RouteTypeTiles(ctx, "เลือกประเภทเส้นทาง ใกล้สถานี"+st.Name,
			routeTypeChoices(types, days, st.ProvinceName, st.DistrictName)), nil
	}

	routes, err := e.store.FindRoutes(ctx, storage.RouteFilter{Type: routeType, DistrictID: st.DistrictID, TripDays: days})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return t.notFound(fmt.Sprintf(`ยังไม่พบเส้นทางประเภท "%s" ใกล้สถานี %s`, routeType, st.Name)), nil
	}
	t.out.Set(dialogflow.RouteArea, dialogflow.AreaLifespan, routeAreaParams(st.ProvinceName, st.DistrictName, routeType, days))
	return e.renderer.Routes(ctx, fmt.Sprintf("เส้นทาง (%s) ใกล้สถานี%s", routeType, st.Name), routes), nil
}

func (e *Engine) placesNearStation(ctx context.Context, t *turn, st *storage.Station, category string) ([]dialogflow.Message, error) {
	places, err := e.store.FindPlaces(ctx, storage.PlaceFilter{
		Category:   category,
		DistrictID: st.DistrictID,
		Limit:      maxStationPlaces,
	})
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return t.notFound(fmt.Sprintf(`ยังไม่พบหมวด "%s" ใกล้สถานี%s`, category, st.Name)), nil
	}
	altText := fmt.Sprintf("%s ใกล้สถานี%s (อ.%s จ.%s)", category, st.Name, st.DistrictName, st.ProvinceName)
	return e.renderer.Places(ctx, altText, places), nil
}

func (e *Engine) stationCategories(ctx context.Context, t *turn, st *storage.Station) ([]dialogflow.Message, error) {
	cats, err := e.store.CategoriesInDistrict(ctx, st.DistrictID)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return t.notFound("ยังไม่พบหมวดหมู่ที่มีสถานที่ ใกล้สถานี " + st.Name), nil
	}

	token := areaToken(st.ProvinceName, st.DistrictName)
	choices := make([]reply.CategoryChoice, len(cats))
	for i, c := range cats {
		choices[i] = reply.CategoryChoice{
			Category: c,
			Label:    "ดูเพิ่มเติม",
			Send:     joinNonEmpty("ที่เที่ยว", c.Name, token),
		}
	}
	return e.renderer.CategoryTiles(ctx, "เลือกหมวดที่เที่ยว ใกล้สถานี"+st.Name, choices), nil
}
