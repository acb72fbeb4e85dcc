package resolver

import (
	"context"
	"fmt"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
)

// Mode says what to show once a pending district is answered.
type Mode string

const (
	ModeCategory  Mode = "category"
	ModeRecommend Mode = "recommend"
)

// PendingKind is the question the previous turn left open.
type PendingKind int

const (
	NoPendingQuestion PendingKind = iota
	AwaitingDistrict
	AwaitingLocationShare
)

// PendingState is the clarification state read from the inbound contexts.
// It is rebuilt every turn and written back only through the turn's outbound
// context set.
type PendingState struct {
	Kind     PendingKind
	Category string
	Province string
	Mode     Mode
	// Point is a location shared before the category was known.
	Point *geo.Point
}

// PendingStateFrom derives the state from inbound contexts. A pending
// district question wins over a pending location share.
func PendingStateFrom(contexts dialogflow.Contexts) PendingState {
	if c, ok := contexts.Get(dialogflow.AwaitingDistrict); ok {
		mode := ModeCategory
		if c.Parameters.String("mode") == string(ModeRecommend) {
			mode = ModeRecommend
		}
		return PendingState{
			Kind:     AwaitingDistrict,
			Category: dialogflow.FirstNonEmpty(c.Parameters.String("asked_category"), c.Parameters.String("category")),
			Province: c.Parameters.String("Province"),
			Mode:     mode,
		}
	}
	if c, ok := contexts.Get(dialogflow.AwaitingLocation); ok {
		s := PendingState{
			Kind:     AwaitingLocationShare,
			Category: c.Parameters.String("category"),
		}
		if pt, ok := geo.ExtractCoordinates(geo.NewSource(c.Parameters, nil, "")); ok {
			s.Point = &pt
		}
		return s
	}
	return PendingState{}
}

// districtParams is the awaiting_district payload for a district question.
func districtParams(category, province string, mode Mode) dialogflow.Parameters {
	return dialogflow.Parameters{
		"category":       category,
		"asked_category": category,
		"Province":       province,
		"mode":           string(mode),
	}
}

// askDistrict prompts for a district and opens the awaiting_district state.
func (e *Engine) askDistrict(t *turn, category, province string, mode Mode) []dialogflow.Message {
	t.out.Clear(dialogflow.NearStation)
	t.out.Set(dialogflow.AwaitingDistrict, dialogflow.PendingLifespan, districtParams(category, province, mode))
	t.outcome = outcomePrompt

	example := "หาดใหญ่"
	if mode == ModeRecommend {
		example = "อำเภอเมืองหาดใหญ่"
	}
	if province != "" {
		return reply.Text(fmt.Sprintf("กรุณาพิมพ์ชื่ออำเภอในจังหวัด%s (เช่น อำเภอเมือง, ควนขนุน)", province))
	}
	return reply.Text(fmt.Sprintf("กรุณาพิมพ์ชื่ออำเภอที่คุณอยู่ (เช่น %s, ควนขนุน)", example))
}

// pendingDistrictApplies reports whether this turn answers a pending
// district question. Station, route, festival and name flows pass through,
// as does a turn that already picked a concrete category.
func pendingDistrictApplies(state PendingState, t *turn) bool {
	if state.Kind != AwaitingDistrict {
		return false
	}
	if t.kind.BypassesPendingDistrict() || intent.MentionsRailway(t.text) {
		return false
	}
	return t.params.Category == ""
}

// answerPendingDistrict resolves the typed district against the catalogue.
func (e *Engine) answerPendingDistrict(ctx context.Context, t *turn, state PendingState) ([]dialogflow.Message, error) {
	candidates, err := e.store.FindDistrictCandidates(ctx, t.text, state.Province)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		t.out.Set(dialogflow.AwaitingDistrict, dialogflow.PendingLifespan, districtParams(state.Category, state.Province, state.Mode))
		t.outcome = outcomePrompt
		if state.Province != "" {
			return reply.Text(fmt.Sprintf(`ระบุอำเภอในจังหวัด %s อีกครั้งได้ไหมคะ (เช่น "อำเภอเมือง", "ควนขนุน")`, state.Province)), nil
		}
		return reply.Text(`ระบุอำเภอที่คุณอยู่ได้ไหมคะ (เช่น "อำเภอเมืองหาดใหญ่", "ควนขนุน")`), nil
	case 1:
	default:
		t.out.Set(dialogflow.AwaitingDistrict, dialogflow.PendingLifespan, districtParams(state.Category, state.Province, state.Mode))
		t.outcome = outcomePrompt
		return reply.DistrictChoices(candidates), nil
	}

	hit := candidates[0]
	district := geo.StripDistrictPrefix(hit.Name)
	t.out.Clear(dialogflow.AwaitingDistrict)

	if state.Mode == ModeCategory && !intent.IsGenericCategory(state.Category) {
		return e.placesInArea(ctx, t, state.Category, hit.ProvinceName, district)
	}
	return e.categoriesInArea(ctx, t, hit.ProvinceName, district, state.Mode == ModeRecommend)
}
