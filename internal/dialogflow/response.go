package dialogflow

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Response is the fulfillment response body.
type Response struct {
	FulfillmentText     string    `json:"fulfillmentText,omitempty"`
	FulfillmentMessages []Message `json:"fulfillmentMessages"`
	OutputContexts      []Context `json:"outputContexts,omitempty"`
}

// Message is one fulfillment unit: plain text or a LINE payload.
type Message struct {
	Text    *Text    `json:"text,omitempty"`
	Payload *Payload `json:"payload,omitempty"`
}

// Text holds literal reply lines.
type Text struct {
	Text []string `json:"text"`
}

// Payload carries a LINE message object under the "line" key.
type Payload struct {
	Line messaging_api.MessageInterface `json:"line"`
}

// TextMessage builds a plain text unit.
func TextMessage(lines ...string) Message {
	return Message{Text: &Text{Text: lines}}
}

// LineMessage builds a LINE payload unit.
func LineMessage(msg messaging_api.MessageInterface) Message {
	return Message{Payload: &Payload{Line: msg}}
}

// NewResponse assembles a response from messages and outbound contexts.
func NewResponse(messages []Message, contexts []Context) *Response {
	if messages == nil {
		messages = []Message{}
	}
	return &Response{FulfillmentMessages: messages, OutputContexts: contexts}
}

// maxSummaryRunes caps Summary.
const maxSummaryRunes = 1000

// Summary returns a short text rendition of the response for logs: the
// fulfillment text, else the text units joined by " | ", else the JSON body.
func (r *Response) Summary() string {
	if r == nil {
		return ""
	}
	if r.FulfillmentText != "" {
		return truncate(r.FulfillmentText)
	}
	var texts []string
	for _, m := range r.FulfillmentMessages {
		if m.Text != nil && len(m.Text.Text) > 0 {
			texts = append(texts, strings.Join(m.Text.Text, " "))
		}
	}
	if len(texts) > 0 {
		return truncate(strings.Join(texts, " | "))
	}
	body, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return truncate(string(body))
}

// Texts returns every text line of the response in order.
func (r *Response) Texts() []string {
	var out []string
	for _, m := range r.FulfillmentMessages {
		if m.Text != nil {
			out = append(out, m.Text.Text...)
		}
	}
	return out
}

// LineMessages returns the LINE payloads of the response in order.
func (r *Response) LineMessages() []messaging_api.MessageInterface {
	var out []messaging_api.MessageInterface
	for _, m := range r.FulfillmentMessages {
		if m.Payload != nil && m.Payload.Line != nil {
			out = append(out, m.Payload.Line)
		}
	}
	return out
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSummaryRunes {
		return s
	}
	return string([]rune(s)[:maxSummaryRunes])
}
