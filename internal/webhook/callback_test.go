package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
	"github.com/lumnam/lumnam-linebot-go/internal/ratelimit"
)

const testSecret = "test_channel_secret"

type reply struct {
	token    string
	messages []messaging_api.MessageInterface
}

type fakeMessenger struct {
	mu       sync.Mutex
	replies  []reply
	loading  []string
	replyErr error
}

func (f *fakeMessenger) Reply(token string, messages []messaging_api.MessageInterface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{token: token, messages: messages})
	return f.replyErr
}

func (f *fakeMessenger) ShowLoading(chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = append(f.loading, chatID)
	return nil
}

func (f *fakeMessenger) sent() []reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reply(nil), f.replies...)
}

func newTestLineHandler(engine Resolver, client messenger, m *metrics.Metrics) (*LineHandler, *memoryRecorder) {
	rec := &memoryRecorder{}
	return &LineHandler{
		channelSecret: testSecret,
		client:        client,
		engine:        engine,
		recorder:      rec,
		sessions:      NewSessionStore(),
		metrics:       m,
		logger:        testLogger(),
		eventTimeout:  time.Second,
	}, rec
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func textEvent(userID, text string) webhook.MessageEvent {
	return webhook.MessageEvent{
		Source:         webhook.UserSource{UserId: userID},
		WebhookEventId: "01EVENT",
		ReplyToken:     "reply-token-0001",
		Message:        webhook.TextMessageContent{Id: "1", Text: text},
	}
}

func TestCallbackSignature(t *testing.T) {
	t.Parallel()

	engine := &echoEngine{}
	client := &fakeMessenger{}
	h, _ := newTestLineHandler(engine, client, nil)
	router := gin.New()
	router.POST("/callback", h.Handle)

	body := `{"destination":"Ubot","events":[{
		"type":"message","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01EVENT","deliveryContext":{"isRedelivery":false},
		"source":{"type":"user","userId":"U1"},
		"replyToken":"reply-token-0001",
		"message":{"type":"text","id":"1","quoteToken":"q","text":"น้ำตกโตนงาช้าง"}
	}]}`

	t.Run("bad signature", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
		req.Header.Set("X-Line-Signature", "bogus")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid signature", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
		req.Header.Set("X-Line-Signature", sign(body))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, h.Shutdown(ctx))

		seen := engine.seen()
		require.Len(t, seen, 1)
		assert.Equal(t, "น้ำตกโตนงาช้าง", seen[0].QueryResult.QueryText)
		assert.Equal(t, "line/U1", seen[0].Session)

		sent := client.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "reply-token-0001", sent[0].token)
		require.Len(t, sent[0].messages, 1)
		msg, ok := sent[0].messages[0].(*messaging_api.TextMessage)
		require.True(t, ok)
		assert.Equal(t, "ได้รับ: น้ำตกโตนงาช้าง", msg.Text)
		assert.Equal(t, []string{"U1"}, client.loading)
	})
}

func TestProcessEventCarriesContexts(t *testing.T) {
	t.Parallel()

	engine := &echoEngine{contexts: func(req *dialogflow.Request) []dialogflow.Context {
		if _, ok := req.Contexts().Get(dialogflow.AwaitingDistrict); ok {
			return []dialogflow.Context{req.Contexts().Set(dialogflow.AwaitingDistrict, 0, nil)}
		}
		return []dialogflow.Context{req.Contexts().Set(dialogflow.AwaitingDistrict, dialogflow.PendingLifespan,
			dialogflow.Parameters{"category": "ร้านกาแฟ"})}
	}}
	h, rec := newTestLineHandler(engine, &fakeMessenger{}, nil)

	h.processEvent(context.Background(), textEvent("U1", "ร้านกาแฟ"))
	h.processEvent(context.Background(), textEvent("U1", "ควนขนุน"))
	h.processEvent(context.Background(), textEvent("U1", "วัด"))

	seen := engine.seen()
	require.Len(t, seen, 3)
	assert.Empty(t, seen[0].QueryResult.OutputContexts)
	c, ok := seen[1].Contexts().Get(dialogflow.AwaitingDistrict)
	require.True(t, ok)
	assert.Equal(t, "ร้านกาแฟ", c.Parameters.String("category"))
	assert.Equal(t, dialogflow.PendingLifespan, c.LifespanCount)
	_, ok = seen[2].Contexts().Get(dialogflow.AwaitingDistrict)
	assert.False(t, ok)

	assert.Equal(t, 3, rec.observedCount())
	assert.Equal(t, "U1", rec.observed[0].UserID)
}

func TestProcessEventLocation(t *testing.T) {
	t.Parallel()

	engine := &echoEngine{}
	h, rec := newTestLineHandler(engine, &fakeMessenger{}, nil)

	h.processEvent(context.Background(), webhook.MessageEvent{
		Source:     webhook.GroupSource{GroupId: "G1", UserId: "U1"},
		ReplyToken: "reply-token-0002",
		Message:    webhook.LocationMessageContent{Id: "2", Latitude: 7.5, Longitude: 100.1},
	})

	seen := engine.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "OnLineLocation", seen[0].IntentName())
	assert.Equal(t, "line/G1", seen[0].Session)
	require.Equal(t, 1, rec.observedCount())
	require.NotNil(t, rec.observed[0].LocationLat)
	assert.InDelta(t, 7.5, *rec.observed[0].LocationLat, 1e-9)
}

func TestProcessEventSkips(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	engine := &echoEngine{}
	client := &fakeMessenger{}
	h, _ := newTestLineHandler(engine, client, m)
	h.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001, Metrics: m})
	t.Cleanup(h.userLimiter.Stop)

	h.processEvent(context.Background(), webhook.FollowEvent{ReplyToken: "reply-token-0003"})
	h.processEvent(context.Background(), webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U1"},
		Message: webhook.StickerMessageContent{Id: "3"},
	})
	h.processEvent(context.Background(), textEvent("U1", "   "))
	h.processEvent(context.Background(), textEvent("U1", "วัด"))
	h.processEvent(context.Background(), textEvent("U1", "วัด"))

	assert.Len(t, engine.seen(), 1)
	assert.Len(t, client.sent(), 1)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "rate_limited")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "ignored")), 0)
}

func TestProcessEventReplyError(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	client := &fakeMessenger{replyErr: errors.New("Invalid reply token")}
	h, _ := newTestLineHandler(&echoEngine{}, client, m)

	h.processEvent(context.Background(), textEvent("U1", "วัด"))
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "reply_error")), 0)

	ev := textEvent("U1", "วัด")
	ev.ReplyToken = "short"
	h.processEvent(context.Background(), ev)
	assert.Len(t, client.sent(), 1)
	assert.InDelta(t, 2, testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "reply_error")), 0)
}

func TestReplyMessages(t *testing.T) {
	t.Parallel()

	flex := lineutil.NewTextMessage("flex stand-in")
	t.Run("order and joined lines", func(t *testing.T) {
		t.Parallel()
		resp := dialogflow.NewResponse([]dialogflow.Message{
			dialogflow.TextMessage("บรรทัดแรก", "บรรทัดสอง"),
			dialogflow.LineMessage(flex),
			dialogflow.TextMessage("  "),
		}, nil)

		got := replyMessages(resp)
		require.Len(t, got, 2)
		assert.Equal(t, "บรรทัดแรก\nบรรทัดสอง", got[0].(*messaging_api.TextMessage).Text)
		assert.Same(t, flex, got[1])
	})

	t.Run("capped with notice", func(t *testing.T) {
		t.Parallel()
		var units []dialogflow.Message
		for range 7 {
			units = append(units, dialogflow.LineMessage(flex))
		}
		got := replyMessages(dialogflow.NewResponse(units, nil))
		require.Len(t, got, lineutil.MaxMessagesPerReply)
		assert.Equal(t, truncatedNotice, got[len(got)-1].(*messaging_api.TextMessage).Text)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, replyMessages(nil))
	})
}

func TestReplyLimiterWaits(t *testing.T) {
	t.Parallel()

	client := &fakeMessenger{}
	h, _ := newTestLineHandler(&echoEngine{}, client, nil)
	h.replyLimiter = ratelimit.New(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := h.reply(ctx, "reply-token-0004", []messaging_api.MessageInterface{lineutil.NewTextMessage("x")})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, client.sent())
}
