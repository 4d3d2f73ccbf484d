package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gunvolt24/quotes/pkg/ctxmeta"
)

const (
	HeaderRequestID = "X-Request-ID"

	// длиннее: считаем мусором и генерируем свой
	maxRequestIDLen = 128
)

// RequestIDMiddleware берёт X-Request-ID клиента или генерирует UUID,
// кладёт его в контекст запроса и возвращает в ответном заголовке.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(ctxmeta.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
