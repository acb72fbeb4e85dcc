package resolver

import (
	"context"
	"log/slog"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

const pickPlaceAltText = "เลือกสถานที่ที่ต้องการ"

// quickNameMatch treats short fallback text as a place name. Lookup errors
// are logged and the turn continues as if nothing matched.
func (e *Engine) quickNameMatch(ctx context.Context, t *turn) ([]dialogflow.Message, bool) {
	places, err := e.store.FindLooseMatches(ctx, t.text, maxNameMatches)
	if err != nil {
		slog.WarnContext(ctx, "quick name match failed",
			"query_text", t.text,
			"error", err)
		return nil, false
	}
	if len(places) == 0 {
		return nil, false
	}
	e.metrics.RecordLadderRung(t.kind.String(), "quick_name_match")
	return e.renderer.Places(ctx, pickPlaceAltText, places), true
}

// searchByName climbs from the loose name match to single dictionary words
// of the name when a segmenter is configured.
func (e *Engine) searchByName(ctx context.Context, t *turn, name string) (Outcome[storage.Place], error) {
	search := func(keyword string) func(context.Context) ([]storage.Place, error) {
		return func(ctx context.Context) ([]storage.Place, error) {
			return e.store.FindLooseMatches(ctx, keyword, maxNameMatches)
		}
	}
	ladder := NewLadder[storage.Place](t.kind.String(), e.metrics)
	ladder.Add("loose_name", search(name))
	for _, kw := range e.segmenter.Keywords(name) {
		ladder.Add("name_keyword", search(kw))
	}
	return ladder.Climb(ctx)
}

func (e *Engine) findAttractionByName(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	name := dialogflow.FirstNonEmpty(t.params.AttractionName, intent.SearchName(t.text))
	if name == "" {
		t.outcome = outcomePrompt
		return reply.Text("พิมพ์ชื่อสถานที่ที่ต้องการดูข้อมูลได้เลยค่ะ"), nil
	}

	out, err := e.searchByName(ctx, t, name)
	if err != nil {
		return nil, err
	}
	switch len(out.Rows) {
	case 0:
		return t.notFound("ยังไม่พบสถานที่ชื่อนี้ ลองพิมพ์ใหม่อีกครั้งค่ะ"), nil
	case 1:
		return e.renderer.PlaceDetail(ctx, out.Rows[0]), nil
	}
	return e.renderer.Places(ctx, pickPlaceAltText, out.Rows), nil
}

// attractionDetail opens the detail card of a named place. An exact name
// wins; otherwise a single loose match is shown and several are listed.
func (e *Engine) attractionDetail(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	name := dialogflow.FirstNonEmpty(t.params.AttractionName, intent.DetailSubject(t.text))
	if name == "" {
		t.outcome = outcomePrompt
		return reply.Text("กรุณาระบุชื่อสถานที่"), nil
	}

	place, err := e.store.FindPlaceByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if place != nil && thaitext.Normalize(place.Name) == thaitext.Normalize(name) {
		return e.renderer.PlaceDetail(ctx, *place), nil
	}

	out, err := e.searchByName(ctx, t, name)
	if err != nil {
		return nil, err
	}
	switch len(out.Rows) {
	case 0:
		if place != nil {
			return e.renderer.PlaceDetail(ctx, *place), nil
		}
		return t.notFound("ไม่พบรายละเอียดสถานที่ที่ขอ"), nil
	case 1:
		return e.renderer.PlaceDetail(ctx, out.Rows[0]), nil
	}
	return e.renderer.Places(ctx, pickPlaceAltText, out.Rows), nil
}
