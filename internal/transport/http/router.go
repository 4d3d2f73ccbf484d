package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/internal/usecase"
	"github.com/Gunvolt24/quotes/pkg/httpx"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

var historyPage = httpx.PageLimits{Default: 50, Max: 500}

const (
	maxBodyBytes = 64 << 10

	// topic для диагностики ошибок декодирования тела запроса.
	bodySource = "http"
)

type Handler struct {
	service      ports.QuoteService
	deserializer serde.Deserializer[domain.Quote]
	log          ports.Logger
	timeout      time.Duration
}

// NewHandler — timeout <= 0 означает «без собственного таймаута» (только контекст запроса).
func NewHandler(
	service ports.QuoteService,
	deserializer serde.Deserializer[domain.Quote],
	log ports.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{service: service, deserializer: deserializer, log: log, timeout: timeout}
}

// NewRouter — serviceName != "" включает otelgin (спан на каждый запрос).
func NewRouter(h *Handler, staticDir, serviceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if serviceName != "" {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/quotes/latest", h.getLatest)
	r.GET("/quotes/history", h.listHistory)
	r.POST("/quotes", h.publishQuote)

	r.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "not found"}) })
	r.NoMethod(func(c *gin.Context) { c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"}) })

	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	return r
}

func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *Handler) getLatest(c *gin.Context) {
	symbol, ok := httpx.RequireQuery(c, "symbol")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	quote, err := h.service.Latest(ctx, symbol)
	if err != nil {
		h.log.Errorf(ctx, "Latest failed symbol=%s err=%v", symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) listHistory(c *gin.Context) {
	symbol, ok := httpx.RequireQuery(c, "symbol")
	if !ok {
		return
	}
	page := httpx.ParsePage(c, historyPage)

	ctx, cancel := h.ctx(c)
	defer cancel()

	quotes, err := h.service.History(ctx, symbol, page.Limit, page.Offset)
	if err != nil {
		h.log.Errorf(ctx, "History failed symbol=%s err=%v", symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if quotes == nil {
		quotes = []*domain.Quote{}
	}
	c.JSON(http.StatusOK, quotes)
}

// publishQuote — тело запроса проходит через тот же десериализатор, что и сообщения Kafka.
func (h *Handler) publishQuote(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}

	quote, err := h.deserializer.Deserialize(bodySource, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	published, err := h.service.Publish(ctx, quote)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, published)
	case errors.Is(err, validate.ErrInvalidQuote):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrPublishDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is disabled"})
	default:
		h.log.Errorf(ctx, "Publish failed symbol=%s err=%v", quote.Symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
