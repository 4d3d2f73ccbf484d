package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page — параметры постраничной выборки.
type Page struct {
	Limit  int
	Offset int
}

// PageLimits — лимит по умолчанию и потолок.
type PageLimits struct {
	Default int
	Max     int
}

// ParsePage читает limit/offset из query. Нечисловой limit заменяется дефолтом,
// limit прижимается к [1, Max]; нечисловой или отрицательный offset даёт 0.
func ParsePage(c *gin.Context, lim PageLimits) Page {
	page := Page{Limit: clamp(lim.Default, 1, lim.Max)}

	if raw, ok := c.GetQuery("limit"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			page.Limit = clamp(v, 1, lim.Max)
		}
	}
	if raw, ok := c.GetQuery("offset"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 {
			page.Offset = v
		}
	}
	return page
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// RequireQuery — обязательный query-параметр; при отсутствии отвечает 400 и возвращает false.
func RequireQuery(c *gin.Context, key string) (string, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "query parameter " + key + " is required"})
		return "", false
	}
	return v, true
}
