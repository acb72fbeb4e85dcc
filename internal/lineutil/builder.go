// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/sliceutil"
)

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// CarouselColumn represents a column in a carousel template.
type CarouselColumn struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	Actions           []Action
}

// CarouselStyle sets the image geometry of a carousel template.
// The zero value leaves LINE defaults (rectangle, cover).
type CarouselStyle struct {
	ImageAspectRatio string
	ImageSize        string
}

// RectangleCover is the explicit style used by the recommended listing.
var RectangleCover = CarouselStyle{ImageAspectRatio: "rectangle", ImageSize: "cover"}

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   Action
}

// NewTextMessage creates a plain text message.
// LINE API limits: max 5000 characters per text message.
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: TruncateRunes(text, MaxTextMessageLength),
	}
}

// NewTextMessageWithQuickReply creates a text message with quick reply buttons.
func NewTextMessageWithQuickReply(text string, items ...QuickReplyItem) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	if len(items) > 0 {
		msg.QuickReply = NewQuickReply(items)
	}
	return msg
}

// NewCarouselTemplate creates a carousel template message.
// Columns beyond MaxCarouselColumnCount are dropped; titles, texts and
// action counts are clamped to LINE limits. Empty text becomes "-".
func NewCarouselTemplate(altText string, style CarouselStyle, columns []CarouselColumn) *messaging_api.TemplateMessage {
	if len(columns) > MaxCarouselColumnCount {
		columns = columns[:MaxCarouselColumnCount]
	}

	templateColumns := make([]messaging_api.CarouselColumn, len(columns))
	for i, col := range columns {
		text := strings.TrimSpace(col.Text)
		if text == "" {
			text = "-"
		}
		actions := col.Actions
		if len(actions) > MaxCarouselActionCount {
			actions = actions[:MaxCarouselActionCount]
		}

		column := messaging_api.CarouselColumn{
			Text:    TruncateRunes(text, MaxCarouselTemplateText),
			Actions: actions,
		}
		if col.ThumbnailImageURL != "" {
			column.ThumbnailImageUrl = col.ThumbnailImageURL
		}
		if col.Title != "" {
			column.Title = TruncateRunes(col.Title, MaxTemplateTitleLength)
		}
		templateColumns[i] = column
	}

	template := &messaging_api.CarouselTemplate{
		Columns: templateColumns,
	}
	if style.ImageAspectRatio != "" {
		template.ImageAspectRatio = style.ImageAspectRatio
	}
	if style.ImageSize != "" {
		template.ImageSize = style.ImageSize
	}

	return &messaging_api.TemplateMessage{
		AltText:  TruncateRunes(altText, MaxAltTextLength),
		Template: template,
	}
}

// BuildCarouselTemplates splits columns into ceil(len/MaxCarouselColumnCount)
// carousel template messages.
func BuildCarouselTemplates(altText string, style CarouselStyle, columns []CarouselColumn, label PageLabel) []messaging_api.MessageInterface {
	pages := sliceutil.Chunk(columns, MaxCarouselColumnCount)
	if len(pages) == 0 {
		return nil
	}

	messages := make([]messaging_api.MessageInterface, 0, len(pages))
	for i, page := range pages {
		messages = append(messages, NewCarouselTemplate(PageAltText(altText, i+1, len(pages), label), style, page))
	}
	return messages
}

// NewQuickReply creates a quick reply component.
// LINE API limits: max 13 items.
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends text when tapped.
// The label is shown on the button and clamped to 20 runes.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: TruncateRunes(label, MaxActionLabelLength),
		Text:  TruncateRunes(text, MaxActionTextLength),
	}
}

// NewURIAction creates an action that opens uri.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: TruncateRunes(label, MaxActionLabelLength),
		Uri:   uri,
	}
}

// NewFlexMessage creates a Flex message with the given alt text and contents.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{
		AltText:  TruncateRunes(altText, MaxAltTextLength),
		Contents: contents,
	}
}
