package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// today returns midnight of the current day in the engine's time zone.
func (e *Engine) today() time.Time {
	now := e.now().In(e.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.location)
}

// listFestivals picks festivals by an explicit date, else by overlap with a
// month of the current year, else those not yet over.
func (e *Engine) listFestivals(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	var (
		festivals []storage.Festival
		err       error
	)
	switch {
	case t.params.ExplicitDate != "":
		day, perr := time.ParseInLocation(intent.DateLayout, t.params.ExplicitDate, e.location)
		if perr != nil {
			return nil, fmt.Errorf("parse festival date %q: %w", t.params.ExplicitDate, perr)
		}
		festivals, err = e.store.FestivalsOn(ctx, day)
	case t.params.Month != 0:
		first := time.Date(e.today().Year(), time.Month(t.params.Month), 1, 0, 0, 0, 0, e.location)
		festivals, err = e.store.FestivalsOverlapping(ctx, first, first.AddDate(0, 1, -1))
	default:
		festivals, err = e.store.FestivalsFrom(ctx, e.today())
	}
	if err != nil {
		return nil, err
	}

	if len(festivals) == 0 {
		msg := "ไม่พบเทศกาลที่ตรงเงื่อนไข"
		if t.params.Province != "" {
			msg += " ใน จ." + t.params.Province
		}
		if t.params.District != "" {
			msg += " อ." + t.params.District
		}
		if t.params.ExplicitDate != "" {
			msg += " ณ วันที่ " + t.params.ExplicitDate
		}
		if t.params.Month != 0 {
			msg += " ใน" + t.params.MonthLabel
		}
		return t.notFound(msg), nil
	}
	return e.renderer.Festivals(ctx, festivals), nil
}

func (e *Engine) festivalDetail(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	var (
		festival *storage.Festival
		err      error
	)
	switch {
	case t.params.FestivalID != 0:
		festival, err = e.store.FestivalByID(ctx, t.params.FestivalID)
	case t.params.FestivalName != "":
		festival, err = e.store.FestivalByName(ctx, t.params.FestivalName)
	default:
		t.outcome = outcomePrompt
		return reply.Text("กรุณาระบุชื่อหรือตัวเลขรหัสเทศกาล"), nil
	}
	if err != nil {
		return nil, err
	}
	if festival == nil {
		return t.notFound("ไม่พบข้อมูลเทศกาล"), nil
	}
	return e.renderer.FestivalDetail(ctx, *festival), nil
}
