package reply

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/stringutil"
)

// UsefulLinks renders link bubbles that open the site, every page numbered.
// Links without a usable URL are skipped.
func (r *Renderer) UsefulLinks(ctx context.Context, links []storage.UsefulLink) []dialogflow.Message {
	kept := links[:0:0]
	for _, l := range links {
		if stringutil.NormalizeURL(l.URL) != "" {
			kept = append(kept, l)
		}
	}

	refs := make([]string, len(kept))
	for i, l := range kept {
		refs[i] = l.Image
	}
	images := r.images.ResolveAll(ctx, refs, PathList)

	bubbles := make([]messaging_api.FlexBubble, len(kept))
	for i, l := range kept {
		body := lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText(orDash(l.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
			lineutil.NewFlexText(stringutil.Cut(orDash(l.Description), festivalListDescRunes)).
				WithSize("sm").WithColor(lineutil.ColorDescription).WithWrap(true).FlexText,
		).WithSpacing("sm")
		footer := lineutil.NewButtonFooter(
			lineutil.NewPrimaryButton(lineutil.NewURIAction("เปิดเว็บไซต์", stringutil.NormalizeURL(l.URL))),
		)
		bubbles[i] = *lineutil.NewFlexBubble(lineutil.NewHeroImage(images[i]).FlexImage, body, footer).FlexBubble
	}
	return wrap(lineutil.BuildCarouselMessages("ลิงก์ที่เกี่ยวข้อง", bubbles, lineutil.PageLabelAlways))
}
