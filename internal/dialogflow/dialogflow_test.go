package dialogflow

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const session = "projects/lumnam/agent/sessions/abc"

const requestBody = `{
  "responseId": "r-1",
  "session": "projects/lumnam/agent/sessions/abc",
  "queryResult": {
    "queryText": "ควนขนุน",
    "parameters": {"category": ["ร้านกาแฟ"], "day": 2, "Province": ""},
    "outputContexts": [
      {"name": "projects/lumnam/agent/sessions/abc/contexts/awaiting_district", "lifespanCount": 2,
       "parameters": {"category": "ร้านกาแฟ", "mode": "category"}},
      {"name": "projects/lumnam/agent/sessions/abc/contexts/route_area_ctx", "lifespanCount": 0,
       "parameters": {"trip_days": 2}}
    ],
    "intent": {"displayName": "Default Fallback Intent"},
    "intentDetectionConfidence": 0.4
  },
  "originalDetectIntentRequest": {
    "source": "line",
    "payload": {"data": {"source": {"userId": "U123"}}}
  }
}`

func TestRequestDecode(t *testing.T) {
	t.Parallel()

	var req Request
	require.NoError(t, json.Unmarshal([]byte(requestBody), &req))

	assert.Equal(t, session, req.Session)
	assert.True(t, req.IsFallback())
	assert.Equal(t, "ร้านกาแฟ", req.QueryResult.Parameters.String("category"))
	assert.Equal(t, 2, req.QueryResult.Parameters.Int("day"))
	assert.Empty(t, req.QueryResult.Parameters.String("Province"))
	assert.InDelta(t, 0.4, req.QueryResult.IntentDetectionConfidence, 1e-9)
	assert.Equal(t, "U123", gjson.GetBytes(req.Payload(), "data.source.userId").String())
}

func TestContextsGet(t *testing.T) {
	t.Parallel()

	var req Request
	require.NoError(t, json.Unmarshal([]byte(requestBody), &req))
	contexts := req.Contexts()

	ctx, ok := contexts.Get(AwaitingDistrict)
	require.True(t, ok)
	assert.Equal(t, "category", ctx.Parameters.String("mode"))
	assert.Equal(t, AwaitingDistrict, ctx.ShortName())

	_, ok = contexts.Get(RouteArea)
	assert.False(t, ok, "lifespan 0 is absent")

	_, ok = contexts.Get(NearStation)
	assert.False(t, ok)
}

func TestContextsGetPrefersLatest(t *testing.T) {
	t.Parallel()

	contexts := NewContexts(session, []Context{
		{Name: session + "/contexts/near_station_ctx", LifespanCount: 4, Parameters: Parameters{"station_name": "หาดใหญ่"}},
		{Name: session + "/contexts/near_station_ctx", LifespanCount: 5, Parameters: Parameters{"station_name": "พัทลุง"}},
		{Name: session + "/contexts/xnear_station_ctx", LifespanCount: 5},
	})

	ctx, ok := contexts.Get(NearStation)
	require.True(t, ok)
	assert.Equal(t, "พัทลุง", ctx.Parameters.String("station_name"))
}

func TestContextsSet(t *testing.T) {
	t.Parallel()

	contexts := NewContexts(session, nil)
	ctx := contexts.Set(AwaitingDistrict, PendingLifespan, Parameters{"mode": "recommend"})

	assert.Equal(t, session+"/contexts/awaiting_district", ctx.Name)
	assert.Equal(t, 3, ctx.LifespanCount)

	cleared := contexts.Set(AwaitingDistrict, 0, nil)
	body, err := json.Marshal(cleared)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gjson.GetBytes(body, "lifespanCount").Int())
	assert.True(t, gjson.GetBytes(body, "lifespanCount").Exists(), "lifespan 0 must be sent")
}

func TestTurnLastWriteWins(t *testing.T) {
	t.Parallel()

	turn := NewTurn(NewContexts(session, nil))
	turn.Set(AwaitingDistrict, PendingLifespan, Parameters{"mode": "category"})
	turn.Set(RouteArea, AreaLifespan, nil)
	turn.Clear(AwaitingDistrict)

	out := turn.Output()
	require.Len(t, out, 2)
	assert.Equal(t, session+"/contexts/awaiting_district", out[0].Name)
	assert.Zero(t, out[0].LifespanCount)
	assert.Equal(t, AreaLifespan, out[1].LifespanCount)

	assert.Nil(t, NewTurn(NewContexts(session, nil)).Output())
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"current wins", []string{"Y", "X"}, "Y"},
		{"stored fills gap", []string{"", "X"}, "X"},
		{"blank skipped", []string{"  ", "X"}, "X"},
		{"none", []string{"", ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FirstNonEmpty(tt.values...))
		})
	}
}

func TestParametersConversions(t *testing.T) {
	t.Parallel()

	p := Parameters{
		"n":     float64(3),
		"list":  []any{"a", "b"},
		"empty": []any{},
		"neg":   float64(-1),
		"obj":   map[string]any{"startDate": "x"},
		"id":    "42",
	}
	assert.Equal(t, "3", p.String("n"))
	assert.Equal(t, 3, p.Int("n"))
	assert.Equal(t, "a", p.String("list"))
	assert.Empty(t, p.String("empty"))
	assert.Zero(t, p.Int("neg"))
	assert.Empty(t, p.String("obj"))
	assert.Equal(t, int64(42), p.Int64("id"))
	assert.Zero(t, p.Int("missing"))
}

func TestResponseMarshal(t *testing.T) {
	t.Parallel()

	resp := NewResponse([]Message{
		TextMessage("สวัสดี"),
		LineMessage(&messaging_api.TextMessage{Text: "เลือกอำเภอ:"}),
	}, []Context{NewContexts(session, nil).Set(AwaitingLocation, 0, nil)})

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Equal(t, "สวัสดี", gjson.GetBytes(body, "fulfillmentMessages.0.text.text.0").String())
	assert.Equal(t, "text", gjson.GetBytes(body, "fulfillmentMessages.1.payload.line.type").String())
	assert.Equal(t, "เลือกอำเภอ:", gjson.GetBytes(body, "fulfillmentMessages.1.payload.line.text").String())
	assert.Equal(t, session+"/contexts/awaiting_location", gjson.GetBytes(body, "outputContexts.0.name").String())

	empty, err := json.Marshal(NewResponse(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"fulfillmentMessages":[]}`, string(empty))
}

func TestResponseSummary(t *testing.T) {
	t.Parallel()

	resp := NewResponse([]Message{TextMessage("a", "b"), TextMessage("c")}, nil)
	assert.Equal(t, "a b | c", resp.Summary())
	assert.Equal(t, []string{"a", "b", "c"}, resp.Texts())

	resp = &Response{FulfillmentText: strings.Repeat("ก", 1200)}
	assert.Equal(t, maxSummaryRunes, len([]rune(resp.Summary())))

	resp = NewResponse([]Message{LineMessage(&messaging_api.TextMessage{Text: "x"})}, nil)
	assert.Contains(t, resp.Summary(), `"fulfillmentMessages"`)
	assert.Len(t, resp.LineMessages(), 1)

	var nilResp *Response
	assert.Empty(t, nilResp.Summary())
}
