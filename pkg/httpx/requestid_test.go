package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/quotes/pkg/ctxmeta"
	"github.com/Gunvolt24/quotes/pkg/httpx"
)

// serveWithID — прогоняет запрос через middleware; возвращает заголовок ответа и id из контекста.
func serveWithID(t *testing.T, provided string) (header, fromCtx string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(httpx.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		id, ok := ctxmeta.RequestIDFromContext(c.Request.Context())
		require.True(t, ok)
		fromCtx = id
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if provided != "" {
		req.Header.Set(httpx.HeaderRequestID, provided)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w.Header().Get(httpx.HeaderRequestID), fromCtx
}

func TestRequestIDMiddleware_GeneratesWhenMissing(t *testing.T) {
	header, fromCtx := serveWithID(t, "")

	_, err := uuid.Parse(header)
	require.NoError(t, err, "сгенерированный id должен быть UUID")
	require.Equal(t, header, fromCtx)
}

func TestRequestIDMiddleware_KeepsProvided(t *testing.T) {
	header, fromCtx := serveWithID(t, "custom-id-42")

	require.Equal(t, "custom-id-42", header)
	require.Equal(t, "custom-id-42", fromCtx)
}

func TestRequestIDMiddleware_ReplacesOversized(t *testing.T) {
	header, fromCtx := serveWithID(t, strings.Repeat("x", 500))

	_, err := uuid.Parse(header)
	require.NoError(t, err)
	require.Equal(t, header, fromCtx)
}
