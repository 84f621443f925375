package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "innkeep/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	return m
}

func TestNewTokenManager_ShortSecret(t *testing.T) {
	if _, err := NewTokenManager("short", time.Hour); err == nil {
		t.Errorf("expected error for short secret")
	}
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t)

	token, exp, err := m.Issue("ops@innkeep", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry should be in the future")
	}

	p, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Subject != "ops@innkeep" || p.Role != RoleAdmin {
		t.Errorf("Parse() = %+v", p)
	}
	if !p.IsAdmin() {
		t.Errorf("admin principal should be admin")
	}
}

func TestParse_Rejects(t *testing.T) {
	m := newTestManager(t)

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, _ := expired.Issue("ops", RoleAdmin)

	other, _ := NewTokenManager(strings.Repeat("z", 32), time.Hour)
	foreignToken, _, _ := other.Issue("ops", RoleAdmin)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", expiredToken},
		{"wrong secret", foreignToken},
		{"alg none", noneToken},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestFromContext_DefaultsToGuest(t *testing.T) {
	p := FromContext(context.Background())
	if p.Role != RoleGuest {
		t.Errorf("expected guest, got %+v", p)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		wantCode string
	}{
		{"admin", WithPrincipal(context.Background(), Principal{Subject: "ops", Role: RoleAdmin}), ""},
		{"system", WithPrincipal(context.Background(), System("payments-consumer")), ""},
		{"anonymous", context.Background(), apperrors.CodeUnauthorized},
		{"other role", WithPrincipal(context.Background(), Principal{Subject: "x", Role: "housekeeping"}), apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdmin(tt.ctx)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}
