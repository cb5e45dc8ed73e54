// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/middleware"
	"github.com/taibuivan/impulsa/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestRequestID verifies that a caller ID is kept and a missing one is generated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "abc")
	recorder := serve(handler, request)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", recorder.Header().Get("X-Request-ID"))

	recorder = serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
}

/*
TestRateLimit verifies that a client is refused once its burst is spent while
other clients are unaffected.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler := middleware.RateLimit(ctx, 0.001, 2)(okHandler)

	from := func(ip string) *http.Request {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", ip)
		return request
	}

	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(handler, from("10.0.0.2")).Code)
}

/*
TestPanicRecovery verifies that a panicking handler yields a 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("no selection")
	}))

	recorder := serve(handler, httptest.NewRequest(http.MethodDelete, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

type corsConfig struct{ development bool }

func (c corsConfig) IsDevelopment() bool  { return c.development }
func (c corsConfig) OriginSuffix() string { return "impulsa.app" }

/*
TestCORS verifies the origin policy per environment.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		origin      string
		allowed     bool
	}{
		{"Production own domain", false, "https://panel.impulsa.app", true},
		{"Production foreign domain", false, "https://evil.example", false},
		{"Development any domain", true, "http://localhost:5173", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Origin", tt.origin)

			recorder := serve(middleware.CORS(corsConfig{tt.development})(okHandler), request)

			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set("Origin", "https://panel.impulsa.app")
	assert.Equal(t, http.StatusNoContent, serve(middleware.CORS(corsConfig{})(okHandler), preflight).Code)
}

type verifierFunc func(string) (*sec.AuthClaims, error)

func (f verifierFunc) VerifyToken(token string) (*sec.AuthClaims, error) { return f(token) }

/*
TestAuthenticate verifies header parsing, verification and the context values
handed to the platform client.
*/
func TestAuthenticate(t *testing.T) {
	verifier := verifierFunc(func(token string) (*sec.AuthClaims, error) {
		if token != "good" {
			return nil, errors.New("bad signature")
		}
		return &sec.AuthClaims{UserID: "7", Role: string(sec.RoleMember)}, nil
	})

	var claims *sec.AuthClaims
	var token string
	inner := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims = ctxutil.GetAuthUser(request.Context())
		token = ctxutil.GetAccessToken(request.Context())
	})
	handler := middleware.Authenticate(verifier)(inner)

	tests := []struct {
		name   string
		header string
		status int
		userID string
	}{
		{"Anonymous", "", http.StatusOK, ""},
		{"Valid bearer", "Bearer good", http.StatusOK, "7"},
		{"Lowercase scheme", "bearer good", http.StatusOK, "7"},
		{"Rejected token", "Bearer bad", http.StatusUnauthorized, ""},
		{"Wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"Extra parts", "Bearer good extra", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, token = nil, ""
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder := serve(handler, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.userID == "" {
				assert.Nil(t, claims)
				return
			}
			require.NotNil(t, claims)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, "good", token)
		})
	}
}

/*
TestRequireRole verifies the 401/403 split of the guards.
*/
func TestRequireRole(t *testing.T) {
	guarded := middleware.RequireRole(sec.RoleAdmin)(okHandler)

	withRole := func(role sec.UserRole) *http.Request {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		return request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "1", Role: string(role)}))
	}

	assert.Equal(t, http.StatusUnauthorized, serve(guarded, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(guarded, withRole(sec.RolePromoter)).Code)
	assert.Equal(t, http.StatusOK, serve(guarded, withRole(sec.RoleAdmin)).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(middleware.RequireAuth(okHandler), httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(middleware.RequireAuth(okHandler), withRole(sec.RoleMember)).Code)
}
