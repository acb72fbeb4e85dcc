package resolver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// routeAreaParams is the route_area_ctx payload. A zero day count is
// stored as null so later turns do not filter on it.
func routeAreaParams(province, district, routeType string, days int) dialogflow.Parameters {
	p := dialogflow.Parameters{
		"province_name": province,
		"district_name": district,
		"trip_days":     nil,
	}
	if routeType != "" {
		p["Route_Type"] = routeType
	}
	if days > 0 {
		p["trip_days"] = days
	}
	return p
}

// routeTypeCommand is the text a route type tile sends.
func routeTypeCommand(typeName string, days int, province, district string) string {
	var daySuffix string
	if days > 0 {
		daySuffix = strconv.Itoa(days) + " วัน"
	}
	return joinNonEmpty("เส้นทางท่องเที่ยว ประเภท", typeName, daySuffix, areaToken(province, district))
}

func routeTypeChoices(types []storage.RouteType, days int, province, district string) []reply.RouteTypeChoice {
	choices := make([]reply.RouteTypeChoice, len(types))
	for i, rt := range types {
		choices[i] = reply.RouteTypeChoice{
			Type: rt,
			Send: routeTypeCommand(rt.Name, days, province, district),
		}
	}
	return choices
}

func (e *Engine) tourRoute(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	province, district := t.params.Province, t.params.District
	if province == "" || district == "" {
		p, d := intent.AreaFromText(t.text)
		if province == "" {
			province = p
		}
		if district == "" {
			district = geo.StripDistrictPrefix(d)
		}
	}

	// Days count only when stated this turn.
	days := 0
	if t.params.ExplicitDays {
		days = t.params.TripDays
	}
	if intent.IsGenericRouteAsk(t.text) {
		days = 0
	}
	explicitDays := days > 0

	routeType := intent.CleanRouteType(t.params.RouteType, province, district)
	if routeType != "" {
		moved, rest := intent.MoveDaysOutOfPhrase(routeType, days)
		if rest != routeType {
			routeType = intent.CleanRouteType(rest, province, district)
		}
		if moved != days {
			days, explicitDays = moved, true
		}
	}

	area := storage.Area{Province: province, District: district}
	if routeType == "" {
		types, err := e.store.RouteTypes(ctx, storage.RouteFilter{Area: area, TripDays: days})
		if err != nil {
			return nil, err
		}
		if len(types) == 0 {
			if area.IsZero() {
				return t.notFound("ยังไม่มีข้อมูลประเภทเส้นทาง"), nil
			}
			return t.notFound("ยังไม่พบประเภทเส้นทางที่มีในพื้นที่ " + describeArea(province, district)), nil
		}
		t.out.Set(dialogflow.RouteArea, dialogflow.AreaLifespan, routeAreaParams(province, district, "", days))
		return e.renderer.RouteTypeTiles(ctx, "เลือกประเภทเส้นทางท่องเที่ยว",
			routeTypeChoices(types, days, province, district)), nil
	}

	find := func(f storage.RouteFilter) func(context.Context) ([]storage.Route, error) {
		return func(ctx context.Context) ([]storage.Route, error) {
			return e.store.FindRoutes(ctx, f)
		}
	}
	explicit := []Filter{FilterRouteType}
	if explicitDays {
		explicit = append(explicit, FilterTripDays)
	}
	ladder := NewLadder[storage.Route](t.kind.String(), e.metrics, explicit...)
	ladder.Add("type_area_days", find(storage.RouteFilter{Type: routeType, Area: area, TripDays: days}))
	if area.IsZero() && days > 0 {
		ladder.Add("type_only", find(storage.RouteFilter{Type: routeType}), FilterTripDays)
	}

	out, err := ladder.Climb(ctx)
	if err != nil {
		return nil, err
	}
	if !out.Found() {
		if area.IsZero() && days == 0 {
			return t.notFound(fmt.Sprintf(`ยังไม่พบเส้นทางในประเภท "%s"`, routeType)), nil
		}
		msg := fmt.Sprintf(`ไม่พบเส้นทางในประเภท "%s"`, routeType)
		if where := describeArea(province, district); where != "" {
			msg += " ใน" + where
		}
		if days > 0 {
			msg += fmt.Sprintf(" (%d วัน)", days)
		}
		return t.notFound(msg), nil
	}

	if out.Broadened {
		days = 0
	}
	t.out.Set(dialogflow.RouteArea, dialogflow.AreaLifespan, routeAreaParams(province, district, routeType, days))
	return e.renderer.Routes(ctx, fmt.Sprintf("เส้นทาง (%s)", routeType), out.Rows), nil
}

// routeDetail lists the stops of one route, narrowed to the area of the
// route listing that led here when that area has stops on the route.
func (e *Engine) routeDetail(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	id := t.params.RouteID
	if id == 0 {
		return t.notFound("ไม่พบรหัสเส้นทางที่ต้องการ"), nil
	}

	province, district := t.params.Province, t.params.District
	if c, ok := t.inbound.Get(dialogflow.RouteArea); ok {
		province = dialogflow.FirstNonEmpty(province, c.Parameters.String("province_name"))
		district = dialogflow.FirstNonEmpty(district, c.Parameters.String("district_name"))
	}
	if province == "" || district == "" {
		p, d := intent.AreaFromText(t.text)
		province = dialogflow.FirstNonEmpty(province, p)
		district = dialogflow.FirstNonEmpty(district, geo.StripDistrictPrefix(d))
	}
	area := storage.Area{Province: province, District: district}

	ladder := NewLadder[storage.Place](t.kind.String(), e.metrics)
	ladder.Add("route_area", func(ctx context.Context) ([]storage.Place, error) {
		return e.store.RouteAttractions(ctx, id, area)
	})
	if !area.IsZero() {
		ladder.Add("route_all", func(ctx context.Context) ([]storage.Place, error) {
			return e.store.RouteAttractions(ctx, id, storage.Area{})
		}, FilterDistrict, FilterProvince)
	}

	out, err := ladder.Climb(ctx)
	if err != nil {
		return nil, err
	}
	if !out.Found() {
		return t.notFound("ไม่พบสถานที่ในเส้นทางนี้"), nil
	}

	altText := "สถานที่ท่องเที่ยวในเส้นทาง " + strconv.FormatInt(id, 10)
	if !out.Broadened {
		altText = joinNonEmpty(altText, describeArea(province, district))
	}
	return e.renderer.Places(ctx, altText, out.Rows), nil
}
