package reply

import (
	"context"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// StationCommand is the text a station button sends.
func StationCommand(name string) string {
	return "ขอที่เที่ยวใกล้สถานี" + name
}

// Stations renders the station picker, every page numbered "(i/n)".
func (r *Renderer) Stations(ctx context.Context, stations []storage.Station) []dialogflow.Message {
	refs := make([]string, len(stations))
	for i, s := range stations {
		refs[i] = s.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	columns := make([]lineutil.CarouselColumn, len(stations))
	for i, s := range stations {
		columns[i] = lineutil.CarouselColumn{
			ThumbnailImageURL: images[i],
			Title:             s.Name,
			Text:              "อ." + s.DistrictName + " จ." + s.ProvinceName,
			Actions:           []lineutil.Action{lineutil.NewMessageAction(labelMore, StationCommand(s.Name))},
		}
	}
	return wrap(lineutil.BuildCarouselTemplates("เลือกสถานีรถไฟ", lineutil.CarouselStyle{}, columns, lineutil.PageLabelAlways))
}
