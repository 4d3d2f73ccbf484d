package rest_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports/mocks"
	rest "github.com/Gunvolt24/quotes/internal/transport/http"
	"github.com/Gunvolt24/quotes/internal/usecase"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

var ts = time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)

func newRouter(t *testing.T) (*mocks.MockQuoteService, http.Handler) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockQuoteService(ctrl)
	h := rest.NewHandler(svc, domain.NewQuoteDeserializer(), noopLogger{}, 0)
	return svc, rest.NewRouter(h, "", "test")
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetLatest_Found(t *testing.T) {
	svc, r := newRouter(t)

	want := &domain.Quote{ID: "q-1", Symbol: "EUR/USD", Bid: 1.0842, Ask: 1.0844, Timestamp: ts}
	svc.EXPECT().Latest(gomock.Any(), "EUR/USD").Return(want, nil)

	w := do(r, http.MethodGet, "/quotes/latest?symbol=EUR%2FUSD", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := domain.NewQuoteDeserializer(serde.WithDisallowUnknownFields()).Deserialize("test", w.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, *want, got)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetLatest_NotFound(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Latest(gomock.Any(), "NOPE").Return(nil, nil)

	w := do(r, http.MethodGet, "/quotes/latest?symbol=NOPE", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLatest_MissingSymbol_400(t *testing.T) {
	_, r := newRouter(t)

	for _, target := range []string{"/quotes/latest", "/quotes/latest?symbol=%20"} {
		w := do(r, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetLatest_InternalError(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Latest(gomock.Any(), "X").Return(nil, errors.New("db error"))

	w := do(r, http.MethodGet, "/quotes/latest?symbol=X", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "db error")
}

func TestListHistory_DefaultPaging(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().History(gomock.Any(), "EUR/USD", 50, 0).Return(nil, nil)

	w := do(r, http.MethodGet, "/quotes/history?symbol=EUR/USD", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestListHistory_WithParams(t *testing.T) {
	svc, r := newRouter(t)

	list := []*domain.Quote{
		{ID: "q-2", Symbol: "EUR/USD", Bid: 1.1, Ask: 1.2, Timestamp: ts.Add(time.Second)},
		{ID: "q-1", Symbol: "EUR/USD", Bid: 1.0, Ask: 1.1, Timestamp: ts},
	}
	// limit выше максимума ограничивается
	svc.EXPECT().History(gomock.Any(), "EUR/USD", 500, 10).Return(list, nil)

	w := do(r, http.MethodGet, "/quotes/history?symbol=EUR/USD&limit=10000&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "q-2", got[0].ID)
}

func TestListHistory_ServiceError(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().History(gomock.Any(), "X", gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	w := do(r, http.MethodGet, "/quotes/history?symbol=X", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPublish_Accepted(t *testing.T) {
	svc, r := newRouter(t)

	in := domain.Quote{Symbol: "EUR/USD", Bid: 1.0842, Ask: 1.0844}
	out := in
	out.ID, out.Timestamp = "generated", ts
	svc.EXPECT().Publish(gomock.Any(), in).Return(&out, nil)

	w := do(r, http.MethodPost, "/quotes", `{"symbol":"EUR/USD","bid":1.0842,"ask":1.0844}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"id":"generated"`)
}

func TestPublish_BadBody_400(t *testing.T) {
	_, r := newRouter(t)

	for _, body := range []string{"not-a-json", "null", `{"bid":"high"}`, `{"symbol":"A"} trailing`} {
		w := do(r, http.MethodPost, "/quotes", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		require.Contains(t, w.Body.String(), "decode failed", body)
	}

	w := do(r, http.MethodPost, "/quotes", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublish_ValidationError_400(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Publish(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("validation failed: %w", validate.ErrInvalidQuote))

	w := do(r, http.MethodPost, "/quotes", `{"symbol":"EUR/USD","bid":2,"ask":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublish_Disabled_503(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil, usecase.ErrPublishDisabled)

	w := do(r, http.MethodPost, "/quotes", `{"symbol":"EUR/USD","bid":1,"ask":2}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPublish_BrokerError_500(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil, errors.New("leader not available"))

	w := do(r, http.MethodPost, "/quotes", `{"symbol":"EUR/USD","bid":1,"ask":2}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPublish_BodyTooLarge(t *testing.T) {
	_, r := newRouter(t)

	body := `{"symbol":"` + strings.Repeat("A", 70<<10) + `"}`
	w := do(r, http.MethodPost, "/quotes", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPing(t *testing.T) {
	_, r := newRouter(t)

	w := do(r, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestNoRoute_404(t *testing.T) {
	_, r := newRouter(t)

	w := do(r, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed_405(t *testing.T) {
	_, r := newRouter(t)

	w := do(r, http.MethodDelete, "/quotes", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlerTimeout_PropagatesDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockQuoteService(ctrl)
	h := rest.NewHandler(svc, domain.NewQuoteDeserializer(), noopLogger{}, 50*time.Millisecond)
	r := rest.NewRouter(h, "", "")

	svc.EXPECT().Latest(gomock.Any(), "SLOW").
		DoAndReturn(func(ctx context.Context, _ string) (*domain.Quote, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	w := do(r, http.MethodGet, "/quotes/latest?symbol=SLOW", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
