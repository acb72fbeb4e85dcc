package reply

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/stringutil"
)

const (
	festivalListDescRunes   = 200
	festivalDetailDescRunes = 450
)

// FestivalDetailCommand is the text a festival button sends.
func FestivalDetailCommand(name string) string {
	return "รายละเอียดเทศกาล " + name
}

// Festivals renders festival bubbles, every page numbered "(i/n)".
func (r *Renderer) Festivals(ctx context.Context, festivals []storage.Festival) []dialogflow.Message {
	refs := make([]string, len(festivals))
	for i, f := range festivals {
		refs[i] = f.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	bubbles := make([]messaging_api.FlexBubble, len(festivals))
	for i, f := range festivals {
		body := lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText(orDash(f.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
			lineutil.NewFlexText(stringutil.Cut(orDash(f.Description), festivalListDescRunes)).
				WithSize("sm").WithColor(lineutil.ColorDescription).WithWrap(true).FlexText,
		).WithSpacing("sm")
		footer := lineutil.NewButtonFooter(messageButton(labelMore, FestivalDetailCommand(f.Name)))
		bubbles[i] = *lineutil.NewFlexBubble(lineutil.NewHeroImage(images[i]).FlexImage, body, footer).FlexBubble
	}
	return wrap(lineutil.BuildCarouselMessages("เทศกาล/งานประเพณี", bubbles, lineutil.PageLabelAlways))
}

// FestivalDetail renders one festival with its date range.
func (r *Renderer) FestivalDetail(ctx context.Context, f storage.Festival) []dialogflow.Message {
	body := lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText(orDash(f.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
		lineutil.NewFlexText(stringutil.Cut(orDash(f.Description), festivalDetailDescRunes)).
			WithSize("sm").WithColor(lineutil.ColorDescription).WithWrap(true).FlexText,
		lineutil.NewFlexText("ช่วงจัดงาน: "+f.Start.Format(storage.DateLayout)+" ถึง "+f.End.Format(storage.DateLayout)).
			WithSize("xs").WithColor(lineutil.ColorLabel).WithWrap(true).FlexText,
	).WithSpacing("sm")
	footer := lineutil.NewButtonFooter(
		lineutil.NewFlexButton(lineutil.NewMessageAction("ดูเทศกาลอื่นๆ", "ขอเทศกาล")).WithStyle("secondary"),
	)
	hero := lineutil.NewHeroImage(r.images.Resolve(ctx, f.Image, PathDetail))
	bubble := lineutil.NewFlexBubble(hero.FlexImage, body, footer)
	return []dialogflow.Message{dialogflow.LineMessage(lineutil.NewFlexMessage(orDash(f.Name), bubble.FlexBubble))}
}
