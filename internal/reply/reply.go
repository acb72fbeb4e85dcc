// Package reply renders catalogue results as fulfillment messages: LINE
// template carousels and flex bubbles, paged to platform limits.
package reply

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
)

// Button labels shared by several cards.
const (
	labelMore    = "ดูเพิ่มเติม"
	labelDetails = "ดูรายละเอียด"
)

// Renderer builds fulfillment messages. It is safe for concurrent use.
type Renderer struct {
	images *Images
}

// NewRenderer creates a renderer resolving images through images.
func NewRenderer(images *Images) *Renderer {
	return &Renderer{images: images}
}

// Images returns the image resolver.
func (r *Renderer) Images() *Images {
	return r.images
}

// Text renders plain text lines as one message.
func Text(lines ...string) []dialogflow.Message {
	return []dialogflow.Message{dialogflow.TextMessage(lines...)}
}

func wrap(messages []messaging_api.MessageInterface) []dialogflow.Message {
	out := make([]dialogflow.Message, len(messages))
	for i, m := range messages {
		out[i] = dialogflow.LineMessage(m)
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func messageButton(label, text string) *lineutil.FlexButton {
	return lineutil.NewPrimaryButton(lineutil.NewMessageAction(label, text))
}
