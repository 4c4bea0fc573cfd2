package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrAlreadyMember, ErrConflict},
		{ErrNotMember, ErrNotFound},
		{ErrMustTransferFirst, ErrInvalidArgument},
		{forbidden("需要管理员权限"), ErrForbidden},
		{fmt.Errorf("approve: %w", ErrNotAuthenticated), ErrUnauthorized},
		{errors.New("boom"), nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Kind(tt.err), tt.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "已是成员", Message(ErrAlreadyMember))
	assert.Equal(t, "需要管理员权限", Message(forbidden("需要管理员权限")))
	assert.Equal(t, "申请不存在或已处理", Message(fmt.Errorf("approve: %w", ErrRequestNotFound)))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
