package reply

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/sliceutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// categoriesPerBubble is how many category tiles one bubble stacks.
const categoriesPerBubble = 10

// CategoryChoice is one tappable category tile.
type CategoryChoice struct {
	Category storage.Category
	// Label is the button caption.
	Label string
	// Send is the text the button sends.
	Send string
	// Caption is the column text; used by CategoryColumns only.
	Caption string
}

// CategoryTiles renders categories as flex bubbles stacking up to ten
// image/name/button tiles each, all in one carousel.
func (r *Renderer) CategoryTiles(ctx context.Context, altText string, choices []CategoryChoice) []dialogflow.Message {
	refs := make([]string, len(choices))
	for i, c := range choices {
		refs[i] = c.Category.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	var bubbles []messaging_api.FlexBubble
	for gi, group := range sliceutil.Chunk(choices, categoriesPerBubble) {
		tiles := make([]messaging_api.FlexComponentInterface, len(group))
		for i, c := range group {
			tiles[i] = lineutil.NewFlexBox("vertical",
				lineutil.NewFlexImage(images[gi*categoriesPerBubble+i]).
					WithSize(lineutil.HeroSize).
					WithAspectRatio(lineutil.HeroAspectRatio).
					WithAspectMode(lineutil.HeroAspectMode).FlexImage,
				lineutil.NewFlexText(orDash(c.Category.Name)).WithWeight("bold").WithSize("md").WithWrap(true).WithMargin("sm").FlexText,
				messageButton(c.Label, c.Send).FlexButton,
			).WithSpacing("sm").WithMargin("md").FlexBox
		}
		body := lineutil.NewFlexBox("vertical", tiles...)
		bubbles = append(bubbles, *lineutil.NewFlexBubble(nil, body, nil).FlexBubble)
	}
	return wrap(lineutil.BuildCarouselMessages(altText, bubbles, lineutil.PageLabelAuto))
}

// CategoryColumns renders categories as template carousel columns.
func (r *Renderer) CategoryColumns(ctx context.Context, altText string, style lineutil.CarouselStyle, choices []CategoryChoice) []dialogflow.Message {
	refs := make([]string, len(choices))
	for i, c := range choices {
		refs[i] = c.Category.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	columns := make([]lineutil.CarouselColumn, len(choices))
	for i, c := range choices {
		title := c.Category.Name
		if title == "" {
			title = "หมวดหมู่"
		}
		columns[i] = lineutil.CarouselColumn{
			ThumbnailImageURL: images[i],
			Title:             title,
			Text:              c.Caption,
			Actions:           []lineutil.Action{lineutil.NewMessageAction(c.Label, c.Send)},
		}
	}
	return wrap(lineutil.BuildCarouselTemplates(altText, style, columns, lineutil.PageLabelAuto))
}
