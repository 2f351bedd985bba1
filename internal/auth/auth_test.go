package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("user-1", "ali@example.com", "Ali Yılmaz")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q", claims.UserID)
	}
	if claims.Email != "ali@example.com" || claims.Name != "Ali Yılmaz" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue("user-1", "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	token, err := svc.Issue("user-1", "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	if _, err := svc.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRequireAuth(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, err := svc.Issue("user-1", "ali@example.com", "Ali")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var sawUserID string
	handler := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUserID = UserID(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		sawUserID = ""
		req := httptest.NewRequest(http.MethodGet, "/api/visits", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusOK && sawUserID != "user-1" {
			t.Errorf("%s: user id = %q, want user-1", tt.name, sawUserID)
		}
	}
}
