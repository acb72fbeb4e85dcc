package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// scope is the geographic scope of a listing. A part is explicit when the
// user stated it this turn; inferred parts may be dropped by the ladder.
type scope struct {
	province         string
	district         string
	explicitProvince bool
	explicitDistrict bool
}

func (s scope) area() storage.Area {
	return storage.Area{Province: s.province, District: s.district}
}

func (s scope) isZero() bool {
	return s.province == "" && s.district == ""
}

func (s scope) explicit() []Filter {
	var fs []Filter
	if s.explicitProvince {
		fs = append(fs, FilterProvince)
	}
	if s.explicitDistrict {
		fs = append(fs, FilterDistrict)
	}
	return fs
}

// areaToken is the area suffix written into button texts, prefixed so the
// next turn can read it back with intent.AreaFromText.
func areaToken(province, district string) string {
	switch {
	case district != "":
		return "อ." + district
	case province != "":
		return "จ." + province
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(p string) bool { return p == "" }), " ")
}

// listingScope resolves the area of a listing turn: NLU parameters, then
// "จ./อ." words and bare district names in the text, then the station the
// conversation is anchored to.
func (e *Engine) listingScope(ctx context.Context, t *turn) (scope, error) {
	s := scope{province: t.params.Province, district: t.params.District}
	if s.province == "" || s.district == "" {
		province, district := intent.AreaFromText(t.text)
		if s.province == "" {
			s.province = province
		}
		if s.district == "" {
			s.district = geo.StripDistrictPrefix(district)
		}
	}
	if s.district == "" && t.text != "" {
		candidates, err := e.store.FindDistrictCandidates(ctx, t.text, s.province)
		if err != nil {
			return scope{}, err
		}
		if len(candidates) == 1 {
			s.district = geo.StripDistrictPrefix(candidates[0].Name)
		}
	}
	s.explicitProvince = s.province != ""
	s.explicitDistrict = s.district != ""

	if s.isZero() {
		if c, ok := t.nearStation(); ok {
			s.province = c.Parameters.String("province_name")
			s.district = c.Parameters.String("district_name")
		}
	}
	return s, nil
}

// placeQuery is one category listing request.
type placeQuery struct {
	category    string
	scope       scope
	recommended bool
}

// listPlaces runs the category ladder: the full area, then without the
// district, then without the province. Explicit parts are never dropped.
func (e *Engine) listPlaces(ctx context.Context, t *turn, q placeQuery) ([]dialogflow.Message, error) {
	find := func(area storage.Area) func(context.Context) ([]storage.Place, error) {
		return func(ctx context.Context) ([]storage.Place, error) {
			return e.store.FindPlaces(ctx, storage.PlaceFilter{
				Category:        q.category,
				Area:            area,
				RecommendedOnly: q.recommended,
			})
		}
	}

	s := q.scope
	ladder := NewLadder[storage.Place](t.kind.String(), e.metrics, append(s.explicit(), FilterCategory)...)
	ladder.Add("category_area", find(s.area()))
	if s.district != "" {
		ladder.Add("category_province", find(storage.Area{Province: s.province}), FilterDistrict)
	}
	if s.province != "" {
		ladder.Add("category_only", find(storage.Area{}), FilterDistrict, FilterProvince)
	}

	out, err := ladder.Climb(ctx)
	if err != nil {
		return nil, err
	}

	where := describeArea(s.province, s.district)
	if !out.Found() {
		switch {
		case q.recommended:
			return t.notFound("ยังไม่พบสถานที่ “แนะนำ” ตามเงื่อนไขที่ให้มา"), nil
		case where == "":
			return t.notFound(fmt.Sprintf(`ยังไม่พบ "%s"`, q.category)), nil
		default:
			return t.notFound(fmt.Sprintf(`ยังไม่พบ "%s" ใน%s`, q.category, where)), nil
		}
	}

	var messages []dialogflow.Message
	if out.Broadened {
		widened := "ทุกพื้นที่"
		if out.Rung == "category_province" {
			widened = "จ." + s.province
		}
		subject := q.category
		if q.recommended {
			subject = joinNonEmpty("สถานที่แนะนำ", q.category)
		}
		messages = append(messages, dialogflow.TextMessage(
			fmt.Sprintf(`ไม่พบ "%s" ใน%s จึงแสดงผลใน%s แทน`, subject, where, widened)))
	}

	if q.recommended {
		return append(messages, e.renderer.RecommendedPlaces(ctx, out.Rows)...), nil
	}
	altText := joinNonEmpty("หมวด "+q.category, where)
	if out.Broadened {
		altText = "หมวด " + q.category
	}
	return append(messages, e.renderer.Places(ctx, altText, out.Rows)...), nil
}

// placesInArea lists category places in a district the user just picked.
func (e *Engine) placesInArea(ctx context.Context, t *turn, category, province, district string) ([]dialogflow.Message, error) {
	return e.listPlaces(ctx, t, placeQuery{
		category: category,
		scope: scope{
			province:         province,
			district:         district,
			explicitProvince: province != "",
			explicitDistrict: district != "",
		},
	})
}

// categoriesInArea shows the categories present in an area as tiles, or as
// recommended-count columns in the recommended variant.
func (e *Engine) categoriesInArea(ctx context.Context, t *turn, province, district string, recommended bool) ([]dialogflow.Message, error) {
	cats, err := e.store.CategoriesInArea(ctx, storage.Area{Province: province, District: district}, recommended)
	if err != nil {
		return nil, err
	}

	where := describeArea(province, district)
	if len(cats) == 0 {
		switch {
		case recommended:
			return t.notFound("ยังไม่พบหมวดหมู่ของสถานที่ “แนะนำ” ในพื้นที่นี้"), nil
		case where == "":
			return t.notFound("ยังไม่มีข้อมูลหมวดหมู่"), nil
		default:
			return t.notFound("ยังไม่พบหมวดหมู่ใน" + where), nil
		}
	}

	if recommended {
		label := recommendAreaLabel(province, district)
		choices := make([]reply.CategoryChoice, len(cats))
		for i, c := range cats {
			choices[i] = reply.CategoryChoice{
				Category: c,
				Label:    "ดูสถานที่ในหมวดนี้",
				Send:     recommendCommand(c.Name, province, district),
				Caption:  fmt.Sprintf("มีสถานที่แนะนำ %d แห่ง %s", c.Count, label),
			}
		}
		return e.renderer.CategoryColumns(ctx, "หมวดหมู่สถานที่แนะนำ "+label, lineutil.RectangleCover, choices), nil
	}

	token := areaToken(province, district)
	choices := make([]reply.CategoryChoice, len(cats))
	for i, c := range cats {
		choices[i] = reply.CategoryChoice{
			Category: c,
			Label:    "ดูเพิ่มเติม",
			Send:     joinNonEmpty("ที่เที่ยว", c.Name, token),
		}
	}
	return e.renderer.CategoryTiles(ctx, joinNonEmpty("เลือกหมวดที่เที่ยว", token), choices), nil
}

func recommendAreaLabel(province, district string) string {
	switch {
	case province != "" && district != "":
		return "ในอำเภอ" + district + " จังหวัด" + province
	case province != "":
		return "ในจังหวัด" + province
	case district != "":
		return "ในอำเภอ" + district
	}
	return "ในพื้นที่"
}

// recommendCommand is the text a recommended category column sends.
func recommendCommand(category, province, district string) string {
	label := recommendAreaLabel(province, district)
	if label == "ในพื้นที่" {
		return "สถานที่แนะนำ หมวด " + category
	}
	return "สถานที่แนะนำ หมวด " + category + " " + label
}

func (e *Engine) listCategoryAttractions(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	if t.class.NearMe {
		return e.askDistrict(t, t.params.RawCategory, "", ModeCategory), nil
	}

	s, err := e.listingScope(ctx, t)
	if err != nil {
		return nil, err
	}
	if t.params.Category == "" {
		return e.categoriesInArea(ctx, t, s.province, s.district, false)
	}
	return e.listPlaces(ctx, t, placeQuery{category: t.params.Category, scope: s})
}

func (e *Engine) listProvinceAttractions(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	s, err := e.listingScope(ctx, t)
	if err != nil {
		return nil, err
	}
	if t.params.Category != "" {
		return e.listPlaces(ctx, t, placeQuery{category: t.params.Category, scope: s})
	}
	if s.province == "" {
		t.outcome = outcomePrompt
		return reply.Text("กรุณาระบุจังหวัดที่ต้องการค้นหา"), nil
	}
	return e.categoriesInArea(ctx, t, s.province, "", false)
}

func (e *Engine) listCategoriesHere(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	s, err := e.listingScope(ctx, t)
	if err != nil {
		return nil, err
	}
	return e.categoriesInArea(ctx, t, s.province, s.district, false)
}

func (e *Engine) listRecommendedAttractions(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	if t.class.NearMe {
		return e.askDistrict(t, t.params.RawCategory, "", ModeRecommend), nil
	}

	s, err := e.listingScope(ctx, t)
	if err != nil {
		return nil, err
	}
	if t.params.Category == "" && !s.isZero() {
		return e.categoriesInArea(ctx, t, s.province, s.district, true)
	}
	return e.listPlaces(ctx, t, placeQuery{category: t.params.Category, scope: s, recommended: true})
}
