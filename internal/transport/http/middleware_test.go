package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/carbon/internal/auth"
)

func TestCORSAnswersPreflightBeforeAuth(t *testing.T) {
	authMW := auth.NewMiddleware(auth.Config{Secret: "secret"}, auth.PublicPaths("/"))
	called := false
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), CORS("http://localhost:5173"), authMW.Wrap)

	req := httptest.NewRequest(http.MethodOptions, "/api/activities", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	require.False(t, called)
}

func TestChainAuthenticatesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	authMW := auth.NewMiddleware(auth.Config{Secret: "secret"}, auth.PublicPaths("/healthz"))

	var subject string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		subject = claims.Subject
		w.WriteHeader(http.StatusTeapot)
	})

	middlewares := append(RequestLogging(logger), CORS("http://example.test"), authMW.Wrap)
	handler := Chain(inner, middlewares...)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-9",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, "user-9", subject)
	require.NotEmpty(t, rr.Header().Get(requestIDHeader))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "request", entry["message"])
	require.EqualValues(t, http.StatusTeapot, entry["status"])
	require.Equal(t, http.MethodGet, entry["method"])
	require.NotEmpty(t, entry["request_id"])
}

func TestChainRejectsMissingToken(t *testing.T) {
	authMW := auth.NewMiddleware(auth.Config{Secret: "secret"}, auth.PublicPaths("/healthz"))
	handler := Chain(http.NotFoundHandler(), CORS("*"), authMW.Wrap)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/activities", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerAppliesTimeouts(t *testing.T) {
	srv := NewServer(ServerConfig{
		Address:      ":0",
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	}, http.NotFoundHandler())

	require.Equal(t, ":0", srv.Addr)
	require.Equal(t, time.Second, srv.ReadTimeout)
	require.Equal(t, 2*time.Second, srv.WriteTimeout)
	require.Equal(t, 3*time.Second, srv.IdleTimeout)
}
