package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"innkeep/pkg/auth"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		if seen == "" {
			t.Fatal("expected a request id in context")
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header = %q, context = %q", got, seen)
		}
	})

	t.Run("reuses a valid inbound id", func(t *testing.T) {
		const inbound = "6f1c2f1e-8d4b-4a53-9a2b-0c9f5e7d1a22"
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set(RequestIDHeader, inbound)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != inbound {
			t.Errorf("request id = %q, want %q", seen, inbound)
		}
	})

	t.Run("replaces a malformed inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid\nX-Injected: 1")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if strings.Contains(seen, "Injected") {
			t.Errorf("malformed request id was propagated: %q", seen)
		}
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != apperrors.CodeInternal {
		t.Errorf("code = %q", body.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked into the response")
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(okHandler())

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, `{}`, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing header", http.MethodPatch, `{}`, "", http.StatusUnsupportedMediaType},
		{"bodiless post", http.MethodPost, "", "", http.StatusOK},
		{"get ignores header", http.MethodGet, "", "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/bookings", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234")))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("declared oversize", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("undeclared oversize", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(60, time.Minute, 2, nil, logger.Discard())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1"); got != http.StatusOK {
		t.Fatalf("first request status = %d", got)
	}
	if got := send("10.0.0.1"); got != http.StatusOK {
		t.Fatalf("second request status = %d", got)
	}
	if got := send("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Errorf("burst exceeded status = %d, want 429", got)
	}
	if got := send("10.0.0.2"); got != http.StatusOK {
		t.Errorf("other client status = %d, want 200", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"remote addr", "", "192.168.1.4:1234", "192.168.1.4"},
		{"forwarded first hop", "203.0.113.9, 10.0.0.1", "10.0.0.1:80", "203.0.113.9"},
		{"no port", "", "192.168.1.4", "192.168.1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvictIdle(t *testing.T) {
	limiter := NewClientRateLimiter(10, time.Minute, 1, nil, logger.Discard())
	defer limiter.Stop()

	limiter.Allow("a")
	limiter.evictIdle(time.Now().Add(time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.clients) != 0 {
		t.Errorf("expected idle clients to be evicted, have %d", len(limiter.clients))
	}
}

func TestPaymentSignatureVerification(t *testing.T) {
	const secret = "webhook-secret"
	body := `{"booking_id":"b1","outcome":"succeeded"}`

	var gotBody string
	h := PaymentSignatureVerification(secret, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{"valid prefixed", "sha256=" + Sign([]byte(body), secret), http.StatusOK},
		{"valid bare", Sign([]byte(body), secret), http.StatusOK},
		{"uppercase hex", "sha256=" + strings.ToUpper(Sign([]byte(body), secret)), http.StatusOK},
		{"wrong secret", "sha256=" + Sign([]byte(body), "other"), http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBody = ""
			req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotBody != body {
				t.Errorf("downstream body = %q, want original body", gotBody)
			}
		})
	}
}

type stubTokens struct {
	principal auth.Principal
	err       error
}

func (s stubTokens) Parse(string) (auth.Principal, error) {
	return s.principal, s.err
}

func TestAuthenticate(t *testing.T) {
	admin := auth.Principal{Subject: "ops", Role: auth.RoleAdmin}

	tests := []struct {
		name       string
		header     string
		tokens     stubTokens
		wantStatus int
		wantRole   string
	}{
		{"no header is guest", "", stubTokens{}, http.StatusOK, auth.RoleGuest},
		{"valid bearer", "Bearer abc", stubTokens{principal: admin}, http.StatusOK, auth.RoleAdmin},
		{"bad scheme", "Basic abc", stubTokens{principal: admin}, http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer  ", stubTokens{principal: admin}, http.StatusUnauthorized, ""},
		{"rejected token", "Bearer abc", stubTokens{err: auth.ErrInvalidToken}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var role string
			h := Authenticate(tt.tokens, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				role = auth.FromContext(r.Context()).Role
			}))

			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if role != tt.wantRole {
				t.Errorf("role = %q, want %q", role, tt.wantRole)
			}
		})
	}
}

func TestIdempotency(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"n":` + string(rune('0'+n)) + `}`))
	}))

	send := func(method, path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send(http.MethodPost, "/bookings", "k1")
	second := send(http.MethodPost, "/bookings", "k1")

	if calls.Load() != 1 {
		t.Fatalf("handler called %d times, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %q, want %d %q", second.Code, second.Body.String(), first.Code, first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response is not marked")
	}

	send(http.MethodPost, "/quotes", "k1")
	if calls.Load() != 2 {
		t.Errorf("same key on another route should not replay, calls = %d", calls.Load())
	}

	send(http.MethodPost, "/bookings", "")
	send(http.MethodPost, "/bookings", "")
	if calls.Load() != 4 {
		t.Errorf("requests without a key should always run, calls = %d", calls.Load())
	}
}

func TestIdempotency_GuestsDoNotShareResponses(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))

	send := func(remoteAddr, body string, principal *auth.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		req.RemoteAddr = remoteAddr
		req.Header.Set(IdempotencyHeader, "retry-1")
		if principal != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), *principal))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	ada := `{"guest":{"guest_email":"ada@example.com"}}`
	grace := `{"guest":{"guest_email":"grace@example.com"}}`

	tests := []struct {
		name       string
		remoteAddr string
		body       string
		principal  *auth.Principal
		wantBody   string
		wantCalls  int32
	}{
		{"first guest", "10.0.0.1:5000", ada, nil, ada, 1},
		{"same guest retries", "10.0.0.1:5001", ada, nil, ada, 1},
		{"other guest same body", "10.0.0.2:5000", ada, nil, ada, 2},
		{"same address different body", "10.0.0.1:5000", grace, nil, grace, 3},
		{"explicit guest principal shares the address scope", "10.0.0.1:5002", ada, &auth.Principal{Subject: "guest", Role: auth.RoleGuest}, ada, 3},
		{"admin is scoped by subject", "10.0.0.9:5000", ada, &auth.Principal{Subject: "ops", Role: auth.RoleAdmin}, ada, 4},
		{"admin from another address replays", "10.0.0.8:5000", ada, &auth.Principal{Subject: "ops", Role: auth.RoleAdmin}, ada, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(tt.remoteAddr, tt.body, tt.principal)
			if rec.Code != http.StatusCreated || rec.Body.String() != tt.wantBody {
				t.Errorf("response = %d %q, want 201 %q", rec.Code, rec.Body.String(), tt.wantBody)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestIdempotency_BodyStillReachesHandler(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var got string
	h := Idempotency(store, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"room_id":"r1"}`))
	req.Header.Set(IdempotencyHeader, "k3")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != `{"room_id":"r1"}` {
		t.Errorf("handler read %q", got)
	}
}

func TestIdempotency_OversizeBody(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int
	h := MaxRequestSize(8)(Idempotency(store, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})))

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"room_id":"r1"}`))
	req.ContentLength = -1
	req.Header.Set(IdempotencyHeader, "k4")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if calls != 0 {
		t.Errorf("handler called %d times, want 0", calls)
	}
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int
	h := Idempotency(store, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = apperrors.WriteError(w, apperrors.RoomUnavailable("taken"))
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "k2")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	ctx := context.Background()

	_ = store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusOK})
	store.store["k"].CreatedAt = time.Now().Add(-2 * time.Minute)

	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expired entry should not be returned")
	}
}

func TestRequestTimeout(t *testing.T) {
	t.Run("slow handler", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusGatewayTimeout {
			t.Fatalf("status = %d, want 504", rec.Code)
		}
		if body := decodeError(t, rec); body.Code != apperrors.CodeTimeout {
			t.Errorf("code = %q", body.Code)
		}
	})

	t.Run("fast handler", func(t *testing.T) {
		h := RequestTimeout(time.Second)(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("panic reaches recovery", func(t *testing.T) {
		h := Recovery(logger.Discard())(RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("late boom")
		})))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestOnPath(t *testing.T) {
	reject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	h := OnPath("/api/v1/payments/webhook", reject)(okHandler())

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/payments/webhook", http.StatusUnauthorized},
		{"/api/v1/payments/webhook/extra", http.StatusOK},
		{"/api/v1/bookings", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}
