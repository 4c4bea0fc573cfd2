package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mycoseed/internal/service"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		body   string
	}{
		{service.ErrNotAuthenticated, http.StatusUnauthorized, `{"msg":"未登录"}`},
		{service.ErrAlreadyMember, http.StatusConflict, `{"msg":"已是成员"}`},
		{service.ErrNotMember, http.StatusNotFound, `{"msg":"不是成员"}`},
		{service.ErrMustTransferFirst, http.StatusBadRequest, `{"msg":"请先转让总管理员再退出"}`},
		{fmt.Errorf("approve: %w", service.ErrRequestNotFound), http.StatusNotFound, `{"msg":"申请不存在或已处理"}`},
		{errors.New("connection refused"), http.StatusInternalServerError, `{"msg":"服务器内部错误"}`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeError(c, tt.err)
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.JSONEq(t, tt.body, w.Body.String())
	}
}
