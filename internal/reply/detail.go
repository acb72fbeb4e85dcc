package reply

import (
	"context"
	"net/url"
	"strconv"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/stringutil"
)

const placeDetailDescRunes = 300

// NavigationURL returns a Google Maps driving-directions link to p, or a
// name search when p has no coordinates.
func NavigationURL(p storage.Place) string {
	if p.HasCoordinates() {
		return "https://www.google.com/maps/dir/?api=1&destination=" +
			strconv.FormatFloat(*p.Latitude, 'f', -1, 64) + "," +
			strconv.FormatFloat(*p.Longitude, 'f', -1, 64) + "&travelmode=driving"
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(p.Name)
}

// PlaceDetail renders the detail card: a heading text, then a bubble with
// image, description, phone and navigate/call buttons.
func (r *Renderer) PlaceDetail(ctx context.Context, p storage.Place) []dialogflow.Message {
	desc := stringutil.Cut(stringutil.StripControl(orDash(p.Description)), placeDetailDescRunes)
	if desc == "" {
		desc = "-"
	}
	tel := stringutil.PhoneDigits(p.Contact)

	contents := []messaging_api.FlexComponentInterface{
		lineutil.NewHeroImage(r.images.Resolve(ctx, p.Image, PathDetail)).FlexImage,
		lineutil.NewFlexText(orDash(p.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
		lineutil.NewFlexText(desc).WithSize("sm").WithColor(lineutil.ColorDescription).WithWrap(true).FlexText,
	}
	if tel != "" {
		contents = append(contents, lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText("โทร").WithSize("sm").WithColor(lineutil.ColorLabel).FlexText,
			lineutil.NewFlexText(tel).WithSize("sm").WithColor(lineutil.ColorValue).WithWrap(true).FlexText,
		).WithMargin("md").FlexBox)
	}
	body := lineutil.NewFlexBox("vertical", contents...).WithSpacing("sm")

	var call *lineutil.FlexButton
	if tel != "" {
		call = lineutil.NewSecondaryButton(lineutil.NewURIAction("โทรเลย", "tel:"+tel))
	}
	footer := lineutil.NewButtonFooter(
		lineutil.NewPrimaryButton(lineutil.NewURIAction("นำทาง", NavigationURL(p))),
		call,
	)

	heading := "รายละเอียด: " + p.Name
	bubble := lineutil.NewFlexBubble(nil, body, footer)
	return []dialogflow.Message{
		dialogflow.TextMessage(heading),
		dialogflow.LineMessage(lineutil.NewFlexMessage(heading, bubble.FlexBubble)),
	}
}
