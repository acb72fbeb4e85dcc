// Package webhook provides the HTTP entry points of the bot: the NLU
// fulfillment webhook, the explicit interaction log endpoint and the
// direct LINE Messaging API callback.
package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumnam/lumnam-linebot-go/internal/ctxutil"
	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/interaction"
	"github.com/lumnam/lumnam-linebot-go/internal/logger"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// maxBodyBytes caps request bodies on every route.
const maxBodyBytes = 1 << 20

// Resolver answers one fulfillment turn. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, req *dialogflow.Request) *dialogflow.Response
}

// Recorder stores interaction logs.
type Recorder interface {
	Observe(ctx context.Context, l *storage.InteractionLog)
	Write(ctx context.Context, l *storage.InteractionLog, errorType string) error
}

// Handler serves /webhook and /log.
type Handler struct {
	engine   Resolver
	recorder Recorder
	logger   *logger.Logger
	timeout  time.Duration
}

// NewHandler creates the fulfillment handler. timeout bounds one turn.
func NewHandler(engine Resolver, recorder Recorder, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		engine:   engine,
		recorder: recorder,
		logger:   log,
		timeout:  timeout,
	}
}

// HandleFulfillment answers a fulfillment request. The interaction log is
// queued after the response is written.
func (h *Handler) HandleFulfillment(c *gin.Context) {
	start := time.Now()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req dialogflow.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid fulfillment request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fulfillment request"})
		return
	}

	ctx := c.Request.Context()
	if req.ResponseID != "" {
		ctx = ctxutil.WithRequestID(ctx, req.ResponseID)
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp := h.engine.Resolve(ctx, &req)
	c.JSON(http.StatusOK, resp)

	latency := time.Since(start)
	h.recorder.Observe(ctx, interaction.FromFulfillment(&req, resp, latency))

	h.logger.WithRequestID(req.ResponseID).
		WithField("intent", req.IntentName()).
		WithField("session_id", req.Session).
		WithField("latency_ms", latency.Milliseconds()).
		Info("Fulfillment answered")
}

// HandleLog stores an explicit interaction log synchronously. It always
// answers {"ok": true}; a failed insert lands in the error log.
func (h *Handler) HandleLog(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read log body")
	}

	if err := h.recorder.Write(c.Request.Context(), interaction.FromLogBody(body), interaction.ErrorTypeDBInsert); err != nil {
		h.logger.WithError(err).Warn("Interaction log not stored")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
