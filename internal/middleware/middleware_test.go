package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stockpile-hq/stockpile/internal/ctxkeys"
	"github.com/stockpile-hq/stockpile/internal/metrics"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]model.Principal

func (s stubVerifier) Principal(token string) (model.Principal, error) {
	p, ok := s[token]
	if !ok {
		return model.Principal{}, errors.New("bad token")
	}
	return p, nil
}

func TestAuthMiddleware(t *testing.T) {
	org := "org-1"
	verifier := stubVerifier{"good": {ID: "user-1", OrganizationID: &org}}

	var seen *model.Principal
	h := AuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = nil
		if p, ok := ctxkeys.Principal(r.Context()); ok {
			seen = &p
		}
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		wantID string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, "user-1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: "good"}) }, "user-1"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") }, ""},
		{"none", func(r *http.Request) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/attributes", nil)
			tt.setup(r)
			h.ServeHTTP(httptest.NewRecorder(), r)
			if tt.wantID == "" {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.wantID, seen.ID)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	called := false
	h := RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"unauthorized","message":"authentication required"}}`, rec.Body.String())
	assert.False(t, called)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ctxkeys.WithPrincipal(r.Context(), model.Principal{ID: "user-1"}))
	h(httptest.NewRecorder(), r)
	assert.True(t, called)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.requests)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	h := RateLimit(rl)(func(w http.ResponseWriter, r *http.Request) {})

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	rec := httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, r)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.RequestID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, got, 36)
}

func TestMetricsUsesPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Chain(mux, RequestLogging, Metrics)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /probe/{id}", "418")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe/2", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
