package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/in-labs/in-server/internal/platform/errors"
	"github.com/in-labs/in-server/internal/services/auth/challenge"
)

type fakeIssuer struct {
	result challenge.Result
	err    error
	email  string
}

func (f *fakeIssuer) IssueAuthenticationOptions(_ context.Context, email string) (challenge.Result, error) {
	f.email = email
	return f.result, f.err
}

func newTestMux(issuer ChallengeIssuer) *http.ServeMux {
	s := &Server{log: zap.NewNop()}
	mux := http.NewServeMux()
	s.registerRoutes(mux, issuer)
	return mux
}

func TestHealth(t *testing.T) {
	mux := newTestMux(&fakeIssuer{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthenticationOptions(t *testing.T) {
	issuer := &fakeIssuer{result: challenge.Result{Token: "signed-token"}}
	mux := newTestMux(issuer)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/authentication/option", strings.NewReader(`{"email":"a@b.com"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if issuer.email != "a@b.com" {
		t.Fatalf("issued email = %q, want %q", issuer.email, "a@b.com")
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token != "signed-token" {
		t.Fatalf("token = %q, want %q", body.Token, "signed-token")
	}
}

func TestAuthenticationOptionsRejectsBadBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"missing email", `{}`},
		{"blank email", `{"email":"   "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(&fakeIssuer{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/authentication/option", strings.NewReader(tc.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAuthenticationOptionsErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", apperrors.New(apperrors.CodeUserNotFound, "user is not registered"), http.StatusNotFound},
		{"no passkey", apperrors.New(apperrors.CodeNoPasskey, "no passkey registered for user"), http.StatusBadRequest},
		{"no relayer", apperrors.New(apperrors.CodeNoAvailableRelayer, "no relayer is ready"), http.StatusServiceUnavailable},
		{"generic", apperrors.New(apperrors.CodeAuthenticationOptions, "failed to generate authentication options"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestMux(&fakeIssuer{err: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/authentication/option", strings.NewReader(`{"email":"a@b.com"}`))
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}

			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Code != string(apperrors.GetCode(tc.err)) {
				t.Fatalf("code = %q, want %q", body.Code, apperrors.GetCode(tc.err))
			}
		})
	}
}

func TestNewRequiresAddr(t *testing.T) {
	if _, err := New("  ", &fakeIssuer{}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for blank addr")
	}
}
