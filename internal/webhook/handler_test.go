package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/interaction"
	"github.com/lumnam/lumnam-linebot-go/internal/logger"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoEngine answers every turn with the query text and can add contexts.
type echoEngine struct {
	mu       sync.Mutex
	requests []*dialogflow.Request
	contexts func(req *dialogflow.Request) []dialogflow.Context
}

func (e *echoEngine) Resolve(_ context.Context, req *dialogflow.Request) *dialogflow.Response {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()

	var out []dialogflow.Context
	if e.contexts != nil {
		out = e.contexts(req)
	}
	return dialogflow.NewResponse([]dialogflow.Message{
		dialogflow.TextMessage("ได้รับ: " + req.QueryResult.QueryText),
	}, out)
}

func (e *echoEngine) seen() []*dialogflow.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*dialogflow.Request(nil), e.requests...)
}

type memoryRecorder struct {
	mu       sync.Mutex
	observed []*storage.InteractionLog
	written  []*storage.InteractionLog
	types    []string
	fail     bool
}

func (r *memoryRecorder) Observe(_ context.Context, l *storage.InteractionLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, l)
}

func (r *memoryRecorder) Write(_ context.Context, l *storage.InteractionLog, errorType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, l)
	r.types = append(r.types, errorType)
	if r.fail {
		return errors.New("database is locked")
	}
	return nil
}

func (r *memoryRecorder) observedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observed)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/webhook", h.HandleFulfillment)
	r.POST("/log", h.HandleLog)
	return r
}

func TestHandleFulfillment(t *testing.T) {
	t.Parallel()

	engine := &echoEngine{contexts: func(req *dialogflow.Request) []dialogflow.Context {
		return []dialogflow.Context{req.Contexts().Set(dialogflow.AwaitingLocation, dialogflow.PendingLifespan, nil)}
	}}
	rec := &memoryRecorder{}
	router := newTestRouter(NewHandler(engine, rec, testLogger(), time.Second))

	body := `{
		"responseId": "r-1",
		"session": "projects/p/agent/sessions/s1",
		"queryResult": {
			"queryText": "วัดใกล้ฉัน",
			"parameters": {"category": "วัด"},
			"intent": {"displayName": "ListCategoryAttractions"},
			"intentDetectionConfidence": 0.9
		},
		"originalDetectIntentRequest": {"source": "line", "payload": {"data": {"source": {"userId": "U1"}}}}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dialogflow.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ได้รับ: วัดใกล้ฉัน"}, resp.Texts())
	require.Len(t, resp.OutputContexts, 1)
	assert.Equal(t, "projects/p/agent/sessions/s1/contexts/awaiting_location", resp.OutputContexts[0].Name)

	require.Equal(t, 1, rec.observedCount())
	logged := rec.observed[0]
	assert.Equal(t, "U1", logged.UserID)
	assert.Equal(t, "ListCategoryAttractions", logged.Intent)
	assert.Equal(t, "ได้รับ: วัดใกล้ฉัน", logged.ResponseText)
}

func TestHandleFulfillmentRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	engine := &echoEngine{}
	rec := &memoryRecorder{}
	router := newTestRouter(NewHandler(engine, rec, testLogger(), time.Second))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"queryResult":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, engine.seen())
	assert.Zero(t, rec.observedCount())
}

func TestHandleLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		fail bool
	}{
		{name: "stored", body: `{"df": {"intentName": "TourRoute", "sessionId": "s1"}}`},
		{name: "insert fails", body: `{"df": {"sessionId": "s1"}}`, fail: true},
		{name: "not json", body: `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &memoryRecorder{fail: tt.fail}
			router := newTestRouter(NewHandler(&echoEngine{}, rec, testLogger(), time.Second))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"ok": true}`, w.Body.String())
			require.Len(t, rec.written, 1)
			assert.Equal(t, []string{interaction.ErrorTypeDBInsert}, rec.types)
		})
	}
}
