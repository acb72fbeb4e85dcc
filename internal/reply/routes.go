package reply

import (
	"context"
	"strconv"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/sliceutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// RouteDetailCommand is the text a route button sends.
func RouteDetailCommand(id int64) string {
	return "RouteDetail " + strconv.FormatInt(id, 10)
}

// RouteTypeChoice is one tappable route type tile.
type RouteTypeChoice struct {
	Type storage.RouteType
	Send string
}

// RouteTypeTiles renders route types as stacked tiles, ten per bubble.
func (r *Renderer) RouteTypeTiles(ctx context.Context, altText string, choices []RouteTypeChoice) []dialogflow.Message {
	refs := make([]string, len(choices))
	for i, c := range choices {
		refs[i] = c.Type.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	var bubbles []messaging_api.FlexBubble
	for gi, group := range sliceutil.Chunk(choices, categoriesPerBubble) {
		tiles := make([]messaging_api.FlexComponentInterface, len(group))
		for i, c := range group {
			tiles[i] = lineutil.NewFlexBox("vertical",
				lineutil.NewHeroImage(images[gi*categoriesPerBubble+i]).FlexImage,
				lineutil.NewFlexText(orDash(c.Type.Name)).WithWeight("bold").WithSize("md").WithWrap(true).FlexText,
				messageButton(labelMore, c.Send).FlexButton,
			).WithSpacing("sm").FlexBox
		}
		body := lineutil.NewFlexBox("vertical", tiles...).WithSpacing("md")
		bubbles = append(bubbles, *lineutil.NewFlexBubble(nil, body, nil).FlexBubble)
	}
	return wrap(lineutil.BuildCarouselMessages(altText, bubbles, lineutil.PageLabelAuto))
}

// Routes renders one bubble per route; the button opens the route's stops.
func (r *Renderer) Routes(ctx context.Context, altText string, routes []storage.Route) []dialogflow.Message {
	refs := make([]string, len(routes))
	for i, rt := range routes {
		refs[i] = rt.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	bubbles := make([]messaging_api.FlexBubble, len(routes))
	for i, rt := range routes {
		body := lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText(orDash(rt.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
			lineutil.NewFlexText(orDash(rt.TypeName)).WithSize("sm").WithColor(lineutil.ColorRouteType).WithWrap(true).FlexText,
			lineutil.NewFlexText(orDash(rt.Description)).WithSize("sm").WithColor(lineutil.ColorDescription).WithWrap(true).FlexText,
		).WithSpacing("sm")
		footer := lineutil.NewButtonFooter(messageButton(labelMore, RouteDetailCommand(rt.ID)))
		bubbles[i] = *lineutil.NewFlexBubble(lineutil.NewHeroImage(images[i]).FlexImage, body, footer).FlexBubble
	}
	return wrap(lineutil.BuildCarouselMessages(altText, bubbles, lineutil.PageLabelAuto))
}
