package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mycoseed/internal/service"
)

type fakeAuth map[string]string

func (f fakeAuth) Authenticate(_ context.Context, token string) (string, error) {
	switch token {
	case "replaced":
		return "", service.ErrSessionReplaced
	case "broken":
		return "", errors.New("redis down")
	}
	uid, ok := f[token]
	if !ok {
		return "", service.ErrInvalidToken
	}
	return uid, nil
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		c.String(http.StatusOK, "uid=%s", UserID(c))
	})
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(fakeAuth{"good": "u1"}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"ok", "Bearer good", http.StatusOK, "uid=u1"},
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Token good", http.StatusUnauthorized, "invalid authorization format"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "token 无效"},
		{"session replaced", "Bearer replaced", http.StatusUnauthorized, "账号已在其他地方登录"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "服务器内部错误"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuth(fakeAuth{"good": "u1"}))

	assert.Equal(t, "uid=u1", do(r, "Bearer good").Body.String())
	assert.Equal(t, "uid=", do(r, "").Body.String())
	assert.Equal(t, "uid=", do(r, "Bearer nope").Body.String())
	assert.Equal(t, http.StatusOK, do(r, "garbage").Code)
}
