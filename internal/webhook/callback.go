package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/lumnam/lumnam-linebot-go/internal/ctxutil"
	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/interaction"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/logger"
	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
	"github.com/lumnam/lumnam-linebot-go/internal/ratelimit"
)

const (
	// sessionPrefix scopes direct-chat sessions apart from NLU sessions.
	sessionPrefix = "line/"

	maxEventsPerWebhook = 100
	minReplyTokenLength = 10

	// loadingSeconds must be a multiple of 5 between 5 and 60.
	loadingSeconds int32 = 20

	truncatedNotice = "แสดงผลได้ไม่ครบทุกรายการ ลองระบุชื่อพื้นที่หรือประเภทให้แคบลง"
)

// messenger is the subset of the Messaging API the callback uses.
type messenger interface {
	Reply(token string, messages []messaging_api.MessageInterface) error
	ShowLoading(chatID string) error
}

type lineAPI struct {
	api *messaging_api.MessagingApiAPI
}

func (l lineAPI) Reply(token string, messages []messaging_api.MessageInterface) error {
	_, err := l.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: token,
		Messages:   messages,
	})
	return err
}

func (l lineAPI) ShowLoading(chatID string) error {
	_, err := l.api.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: loadingSeconds,
	})
	return err
}

// LineConfig holds the dependencies of a LineHandler.
type LineConfig struct {
	ChannelSecret string
	ChannelToken  string
	Engine        Resolver
	Recorder      Recorder
	Sessions      *SessionStore
	UserLimiter   *ratelimit.KeyedLimiter // optional
	ReplyLimiter  *ratelimit.Limiter      // optional
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	EventTimeout  time.Duration
}

// LineHandler serves the LINE Messaging API webhook directly, without the
// NLU in front: text messages arrive as fallback turns and shared
// locations as OnLineLocation turns.
type LineHandler struct {
	channelSecret string
	client        messenger
	engine        Resolver
	recorder      Recorder
	sessions      *SessionStore
	userLimiter   *ratelimit.KeyedLimiter
	replyLimiter  *ratelimit.Limiter
	metrics       *metrics.Metrics
	logger        *logger.Logger
	eventTimeout  time.Duration
	wg            sync.WaitGroup
}

// NewLineHandler creates the callback handler.
func NewLineHandler(cfg LineConfig) (*LineHandler, error) {
	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &LineHandler{
		channelSecret: cfg.ChannelSecret,
		client:        lineAPI{api: api},
		engine:        cfg.Engine,
		recorder:      cfg.Recorder,
		sessions:      sessions,
		userLimiter:   cfg.UserLimiter,
		replyLimiter:  cfg.ReplyLimiter,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		eventTimeout:  cfg.EventTimeout,
	}, nil
}

// Handle verifies the signature, answers 200 at once and processes the
// events in the background.
func (h *LineHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)

	events := cb.Events
	if len(events) > maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		events = events[:maxEventsPerWebhook]
	}
	events = append([]webhook.EventInterface(nil), events...)

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()
		for _, event := range events {
			h.processEvent(context.Background(), event)
		}
	})
}

func (h *LineHandler) processEvent(ctx context.Context, event webhook.EventInterface) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		h.logger.WithField("event_type", fmt.Sprintf("%T", event)).Debug("Unsupported event type")
		return
	}
	start := time.Now()

	log := h.logger
	if e.WebhookEventId != "" {
		ctx = ctxutil.WithRequestID(ctx, e.WebhookEventId)
		log = log.WithRequestID(e.WebhookEventId)
	}
	if e.DeliveryContext != nil {
		log = log.WithField("is_redelivery", e.DeliveryContext.IsRedelivery)
	}

	chatID, userID := sourceIDs(e.Source)
	req, ok := toRequest(e, chatID, userID)
	if !ok {
		log.WithField("message_type", e.Message.GetType()).Debug("Unsupported message type")
		h.metrics.RecordWebhook("message", "ignored", time.Since(start).Seconds())
		return
	}

	if h.userLimiter != nil && !h.userLimiter.Allow(userID) {
		log.WithField("user_id", userID).Warn("User rate limit exceeded; event dropped")
		h.metrics.RecordWebhook("message", "rate_limited", time.Since(start).Seconds())
		return
	}

	if _, personal := e.Source.(webhook.UserSource); personal {
		if err := h.client.ShowLoading(chatID); err != nil {
			log.WithError(err).Warn("Failed to show loading animation")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, h.eventTimeout)
	defer cancel()

	inbound := h.sessions.Load(req.Session)
	req.QueryResult.OutputContexts = inbound
	resp := h.engine.Resolve(ctx, req)
	h.sessions.Save(req.Session, inbound, resp.OutputContexts)
	h.recorder.Observe(ctx, interaction.FromFulfillment(req, resp, time.Since(start)))

	status := "success"
	if err := h.reply(ctx, e.ReplyToken, replyMessages(resp)); err != nil {
		status = "reply_error"
		if strings.Contains(err.Error(), "Invalid reply token") {
			log.WithError(err).Debug("Reply token already used or invalid")
		} else {
			log.WithError(err).Error("Failed to send reply")
		}
	}
	h.metrics.RecordWebhook("message", status, time.Since(start).Seconds())

	log.WithField("intent", req.IntentName()).
		WithField("event_duration_ms", time.Since(start).Milliseconds()).
		Info("Event processed")
}

func (h *LineHandler) reply(ctx context.Context, token string, messages []messaging_api.MessageInterface) error {
	if len(messages) == 0 {
		return nil
	}
	if len(token) < minReplyTokenLength {
		return fmt.Errorf("invalid reply token length %d", len(token))
	}
	if h.replyLimiter != nil && !h.replyLimiter.Allow() {
		h.metrics.RecordRateLimiterDrop("reply")
		if err := h.replyLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for reply quota: %w", err)
		}
	}
	return h.client.Reply(token, messages)
}

// Shutdown waits for in-flight events.
func (h *LineHandler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// toRequest turns a LINE message into the fulfillment request the NLU
// would have sent. The event is kept as the original payload under "data".
func toRequest(e webhook.MessageEvent, chatID, userID string) (*dialogflow.Request, bool) {
	if chatID == "" {
		return nil, false
	}

	var qr dialogflow.QueryResult
	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		text := strings.TrimSpace(m.Text)
		if text == "" {
			return nil, false
		}
		qr = dialogflow.QueryResult{
			QueryText:  text,
			Parameters: dialogflow.Parameters{},
			Intent:     dialogflow.Intent{DisplayName: dialogflow.FallbackIntent},
		}
	case webhook.LocationMessageContent:
		qr = dialogflow.QueryResult{
			Parameters: dialogflow.Parameters{
				"latitude":  m.Latitude,
				"longitude": m.Longitude,
			},
			Intent: dialogflow.Intent{DisplayName: intent.OnLineLocation.String()},
		}
	default:
		return nil, false
	}
	qr.LanguageCode = "th"

	payload, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"source":         map[string]string{"userId": userID},
			"message":        e.Message,
			"replyToken":     e.ReplyToken,
			"webhookEventId": e.WebhookEventId,
		},
	})
	if err != nil {
		payload = nil
	}

	return &dialogflow.Request{
		ResponseID:  e.WebhookEventId,
		Session:     sessionPrefix + chatID,
		QueryResult: qr,
		OriginalDetectIntentRequest: dialogflow.OriginalRequest{
			Source:  interaction.ChannelLine,
			Payload: payload,
		},
	}, true
}

// sourceIDs returns the chat to reply in and the user who wrote.
func sourceIDs(src webhook.SourceInterface) (chatID, userID string) {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId, s.UserId
	case webhook.GroupSource:
		return s.GroupId, s.UserId
	case webhook.RoomSource:
		return s.RoomId, s.UserId
	}
	return "", ""
}

// replyMessages flattens a response into LINE messages in order. Text
// units become one text message each. Replies over the per-call limit
// keep the leading messages and end with a notice.
func replyMessages(resp *dialogflow.Response) []messaging_api.MessageInterface {
	if resp == nil {
		return nil
	}
	var out []messaging_api.MessageInterface
	for _, m := range resp.FulfillmentMessages {
		switch {
		case m.Payload != nil && m.Payload.Line != nil:
			out = append(out, m.Payload.Line)
		case m.Text != nil:
			if text := strings.TrimSpace(strings.Join(m.Text.Text, "\n")); text != "" {
				out = append(out, lineutil.NewTextMessage(text))
			}
		}
	}
	if len(out) > lineutil.MaxMessagesPerReply {
		out = append(out[:lineutil.MaxMessagesPerReply-1], lineutil.NewTextMessage(truncatedNotice))
	}
	return out
}
