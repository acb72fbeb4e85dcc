package interaction

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// ChannelLine is the only channel the bot serves.
const ChannelLine = "line"

const maxExtra = 65000

// FromFulfillment builds the record of one answered fulfillment request.
func FromFulfillment(req *dialogflow.Request, resp *dialogflow.Response, latency time.Duration) *storage.InteractionLog {
	qr := req.QueryResult
	l := &storage.InteractionLog{
		CreatedAt:    time.Now(),
		Channel:      ChannelLine,
		UserID:       intent.UserIDFromPayload(req.Payload()),
		SessionID:    req.Session,
		Intent:       qr.Intent.DisplayName,
		IsFallback:   req.IsFallback(),
		QueryText:    qr.QueryText,
		Parameters:   marshalOr(qr.Parameters, "{}"),
		ResponseText: resp.Summary(),
		LatencyMs:    latency.Milliseconds(),
		Extra: truncate(marshalOr(map[string]any{
			"od": req.OriginalDetectIntentRequest,
		}, "{}"), maxExtra),
	}
	if qr.IntentDetectionConfidence > 0 {
		c := qr.IntentDetectionConfidence
		l.Confidence = &c
	}
	if pt, ok := geo.ExtractCoordinates(geo.NewSource(qr.Parameters, req.Payload(), qr.QueryText)); ok {
		l.LocationLat, l.LocationLng = &pt.Lat, &pt.Lng
	}
	return l
}

// FromLogBody builds a record from an explicit /log call. The body carries
// the LINE event under payload.data and the NLU result under df.
func FromLogBody(body []byte) *storage.InteractionLog {
	root := gjson.ParseBytes(body)
	data := root.Get("payload.data")
	df := root.Get("df")

	name := df.Get("intentName").String()
	l := &storage.InteractionLog{
		CreatedAt:    time.Now(),
		Channel:      ChannelLine,
		UserID:       data.Get("source.userId").String(),
		SessionID:    df.Get("sessionId").String(),
		Intent:       name,
		IsFallback:   name == dialogflow.FallbackIntent,
		QueryText:    data.Get("message.text").String(),
		Parameters:   "{}",
		ResponseText: df.Get("responseText").String(),
		LatencyMs:    df.Get("latencyMs").Int(),
		Extra:        truncate(marshalOr(map[string]json.RawMessage{"raw": rawOrNull(body)}, "{}"), maxExtra),
	}
	if p := df.Get("parameters"); p.IsObject() {
		l.Parameters = p.Raw
	}
	if c := df.Get("intentConfidence"); c.Exists() && c.Type == gjson.Number {
		v := c.Float()
		l.Confidence = &v
	}
	loc := data.Get("message.location")
	lat, lng := loc.Get("latitude"), loc.Get("longitude")
	if lat.Type == gjson.Number && lng.Type == gjson.Number {
		if pt := (geo.Point{Lat: lat.Float(), Lng: lng.Float()}); pt.Valid() {
			l.LocationLat, l.LocationLng = &pt.Lat, &pt.Lng
		}
	}
	return l
}

func marshalOr(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

func rawOrNull(body []byte) json.RawMessage {
	if !gjson.ValidBytes(body) {
		return json.RawMessage("null")
	}
	return json.RawMessage(body)
}
