package service

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别，handler 依据类别映射 HTTP 状态码
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)

var kinds = []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrInvalidArgument}

var (
	ErrNotAuthenticated   = fmt.Errorf("%w: 未登录", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: 用户名或密码错误", ErrUnauthorized)
	ErrSessionReplaced    = fmt.Errorf("%w: 账号已在其他地方登录", ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("%w: 登录已过期，请重新登录", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: token 无效", ErrUnauthorized)

	ErrCommunityNotFound    = fmt.Errorf("%w: 社区不存在", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: 用户不存在", ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("%w: 成员不存在", ErrNotFound)
	ErrNotMember            = fmt.Errorf("%w: 不是成员", ErrNotFound)
	ErrRequestNotFound      = fmt.Errorf("%w: 申请不存在或已处理", ErrNotFound)
	ErrInviteNotFound       = fmt.Errorf("%w: 邀请码无效", ErrNotFound)
	ErrAnnouncementNotFound = fmt.Errorf("%w: 公告不存在", ErrNotFound)
	ErrPostNotFound         = fmt.Errorf("%w: 动态不存在", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("%w: 评论不存在", ErrNotFound)

	ErrAlreadyMember      = fmt.Errorf("%w: 已是成员", ErrConflict)
	ErrRequestPending     = fmt.Errorf("%w: 入社申请正在审核中", ErrConflict)
	ErrSlugTaken          = fmt.Errorf("%w: slug 已被使用", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("%w: 用户名已被注册", ErrConflict)
	ErrAlreadySystemAdmin = fmt.Errorf("%w: 已是系统管理员", ErrConflict)
	ErrSystemAdminLimit   = fmt.Errorf("%w: 系统管理员数量已达上限", ErrConflict)
	ErrPostExists         = fmt.Errorf("%w: 动态已存在", ErrConflict)

	ErrInvalidInviteCode      = fmt.Errorf("%w: 邀请码错误", ErrInvalidArgument)
	ErrMustTransferFirst      = fmt.Errorf("%w: 请先转让总管理员再退出", ErrInvalidArgument)
	ErrCannotTargetSuperAdmin = fmt.Errorf("%w: 不能移除或降级总管理员，请先转让", ErrInvalidArgument)
	ErrCannotTargetSelf       = fmt.Errorf("%w: 不能对自己执行该操作", ErrInvalidArgument)
	ErrCannotGrantSuperAdmin  = fmt.Errorf("%w: 总管理员只能通过转让产生", ErrInvalidArgument)
	ErrTargetNotMember        = fmt.Errorf("%w: 目标不是成员", ErrInvalidArgument)
	ErrInvalidRole            = fmt.Errorf("%w: 无效角色", ErrInvalidArgument)
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// Kind 返回 err 所属的错误类别，非业务错误返回 nil
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message 去掉类别前缀，返回给前端展示的文案
func Message(err error) string {
	msg := err.Error()
	if k := Kind(err); k != nil {
		prefix := k.Error() + ": "
		if i := strings.Index(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
	}
	return msg
}
