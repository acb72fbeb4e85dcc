package reply

import (
	"context"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// DetailCommand is the text a place button sends to open its detail card.
func DetailCommand(name string) string {
	return "รายละเอียด " + name
}

// Places renders places as template carousels; each column opens the
// place's detail card.
func (r *Renderer) Places(ctx context.Context, altText string, places []storage.Place) []dialogflow.Message {
	return r.placeCarousel(ctx, altText, places, lineutil.CarouselStyle{}, labelMore, "-")
}

// RecommendedPlaces renders recommended places with rectangle cover images.
func (r *Renderer) RecommendedPlaces(ctx context.Context, places []storage.Place) []dialogflow.Message {
	return r.placeCarousel(ctx, "สถานที่ท่องเที่ยวแนะนำ", places, lineutil.RectangleCover, labelDetails, "สถานที่แนะนำ")
}

func (r *Renderer) placeCarousel(ctx context.Context, altText string, places []storage.Place, style lineutil.CarouselStyle, label, emptyText string) []dialogflow.Message {
	refs := make([]string, len(places))
	for i, p := range places {
		refs[i] = p.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	columns := make([]lineutil.CarouselColumn, len(places))
	for i, p := range places {
		text := p.Description
		if text == "" {
			text = emptyText
		}
		columns[i] = lineutil.CarouselColumn{
			ThumbnailImageURL: images[i],
			Title:             p.Name,
			Text:              text,
			Actions:           []lineutil.Action{lineutil.NewMessageAction(label, DetailCommand(p.Name))},
		}
	}
	return wrap(lineutil.BuildCarouselTemplates(altText, style, columns, lineutil.PageLabelAuto))
}
