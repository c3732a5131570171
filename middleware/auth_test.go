package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-only"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func echoClerkID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetClerkID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(id))
	})
}

func TestDevAuthMiddleware(t *testing.T) {
	handler := DevAuthMiddleware(testSecret)(echoClerkID())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{
			name:   "valid token",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user_123")),
			status: http.StatusOK,
			body:   "user_123",
		},
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "no bearer prefix", header: "Token abc", status: http.StatusUnauthorized},
		{
			name:   "wrong secret",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("user_123")),
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong algorithm",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("user_123")),
			status: http.StatusUnauthorized,
		},
		{
			name: "expired",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"sub": "user_123",
				"exp": time.Now().Add(-time.Minute).Unix(),
			}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "missing subject",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestDevAuthMiddleware_WebsocketQueryToken(t *testing.T) {
	handler := DevAuthMiddleware(testSecret)(echoClerkID())
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user_ws"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fitness/live/abc?access_token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "user_ws", rec.Body.String())

	// Plain requests must use the header.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/user?access_token="+token, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetClerkID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetClerkID(req.Context())
	assert.False(t, ok)

	_, ok = GetClerkID(WithClerkID(req.Context(), ""))
	assert.False(t, ok)

	id, ok := GetClerkID(WithClerkID(req.Context(), "user_1"))
	assert.True(t, ok)
	assert.Equal(t, "user_1", id)
}
