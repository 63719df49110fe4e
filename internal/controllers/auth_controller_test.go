package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare-be/internal/jwt"
	"mindcare-be/internal/models"
	"mindcare-be/internal/repository"
	"mindcare-be/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthService returns fixed errors from every operation
type stubAuthService struct {
	err error
}

func (s stubAuthService) Register(context.Context, *models.SignupRequest) (*models.AuthResponse, error) {
	return nil, s.err
}

func (s stubAuthService) Authenticate(context.Context, *models.LoginRequest) (*models.AuthResponse, error) {
	return nil, s.err
}

func (s stubAuthService) Identify(context.Context, string) (*models.UserView, error) {
	return nil, s.err
}

func newEngine(svc service.AuthService) *gin.Engine {
	ac := NewAuthController(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	r.POST("/signup", ac.Signup)
	r.POST("/login", ac.Login)
	r.GET("/me", ac.Me)
	return r
}

func newRealEngine(t *testing.T) *gin.Engine {
	t.Helper()
	svc := service.NewAuthService(
		repository.NewMemoryAccountRepository(),
		jwt.NewJWTService("controller-test-secret", jwt.SessionTTL),
		service.NewPasswordHasher(2, nil),
		nil, nil, nil,
	)
	return newEngine(svc)
}

func do(r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.StatusError, body.Status)
	return body
}

func TestSignup_Created(t *testing.T) {
	r := newRealEngine(t)

	w := do(r, http.MethodPost, "/signup", `{"name":"Ana","email":"ana@x.io","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@x.io", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.Len(t, user, 3)
	assert.NotContains(t, w.Body.String(), "secret1")
}

func TestSignup_BadRequests(t *testing.T) {
	r := newRealEngine(t)
	require.Equal(t, http.StatusCreated,
		do(r, http.MethodPost, "/signup", `{"name":"Ana","email":"ana@x.io","password":"secret1"}`, nil).Code)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "invalid json", body: `{"name":`, wantMsg: "Missing fields"},
		{name: "empty body", body: "", wantMsg: "Missing fields"},
		{name: "missing password", body: `{"name":"Bo","email":"bo@x.io"}`, wantMsg: "Missing fields"},
		{name: "empty name", body: `{"name":"","email":"bo@x.io","password":"p"}`, wantMsg: "Missing fields"},
		{name: "duplicate email", body: `{"name":"Ana2","email":"ana@x.io","password":"other"}`, wantMsg: "Email already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/signup", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
		})
	}
}

func TestLogin(t *testing.T) {
	r := newRealEngine(t)
	require.Equal(t, http.StatusCreated,
		do(r, http.MethodPost, "/signup", `{"name":"Ana","email":"ana@x.io","password":"secret1"}`, nil).Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "success", body: `{"email":"ana@x.io","password":"secret1"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"email":"ana@x.io","password":"nope"}`, wantStatus: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
		{name: "unknown email", body: `{"email":"bo@x.io","password":"secret1"}`, wantStatus: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
		{name: "missing password", body: `{"email":"ana@x.io"}`, wantStatus: http.StatusBadRequest, wantMsg: "Missing email or password"},
		{name: "invalid json", body: `not json`, wantStatus: http.StatusBadRequest, wantMsg: "Missing email or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/login", tt.body, nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
				return
			}
			var body models.AuthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, models.StatusOK, body.Status)
			assert.NotEmpty(t, body.Token)
			assert.Equal(t, "ana@x.io", body.User.Email)
		})
	}
}

func TestMe(t *testing.T) {
	r := newRealEngine(t)
	w := do(r, http.MethodPost, "/signup", `{"name":"Ana","email":"ana@x.io","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var signup models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "valid token", header: "Bearer " + signup.Token, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + signup.Token, wantStatus: http.StatusOK},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: "No token"},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized, wantMsg: "Invalid token"},
		{name: "wrong scheme", header: "Basic " + signup.Token, wantStatus: http.StatusUnauthorized, wantMsg: "Invalid token"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized, wantMsg: "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			w := do(r, http.MethodGet, "/me", "", header)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
				return
			}
			var body models.MeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, signup.User, body.User)
		})
	}
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "account not found", err: service.ErrAccountNotFound, wantStatus: http.StatusNotFound, wantMsg: "User not found"},
		{name: "internal", err: errors.Join(service.ErrInternal, errors.New("dial tcp: refused")), wantStatus: http.StatusInternalServerError, wantMsg: "Server error"},
		{name: "unclassified", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(stubAuthService{err: tt.err})
			header := http.Header{"Authorization": []string{"Bearer t"}}

			w := do(r, http.MethodGet, "/me", "", header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
			assert.NotContains(t, w.Body.String(), "refused")
		})
	}
}

func TestSignup_InternalErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	ac := NewAuthController(stubAuthService{err: service.ErrInternal}, slog.New(slog.NewJSONHandler(&logs, nil)))
	r := gin.New()
	r.POST("/signup", ac.Signup)

	w := do(r, http.MethodPost, "/signup", `{"name":"Ana","email":"ana@x.io","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), `"path":"/signup"`)
	assert.Contains(t, logs.String(), "internal error")
}
