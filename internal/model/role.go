package model

import (
	"errors"
	"strings"
)

// Role 社区内的成员角色，member < sub_admin < super_admin
type Role string

const (
	RoleNone       Role = "" // 非成员
	RoleMember     Role = "member"
	RoleSubAdmin   Role = "sub_admin"
	RoleSuperAdmin Role = "super_admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole 只接受三种持久化角色，空串与未知值都视为非法
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleMember, RoleSubAdmin, RoleSuperAdmin:
		return r, nil
	}
	return RoleNone, ErrInvalidRole
}

// Rank 返回角色在权限全序中的位置，非成员为 0
func (r Role) Rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleSubAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// Compare 按权限高低比较，返回 -1 / 0 / 1
func (r Role) Compare(other Role) int {
	switch a, b := r.Rank(), other.Rank(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// AtLeast 判断 r 的权限是否不低于 min
func (r Role) AtLeast(min Role) bool {
	return r.Compare(min) >= 0
}

func (r Role) Valid() bool { return r.Rank() > 0 }

func (r Role) IsMember() bool { return r.Valid() }

func (r Role) IsAdmin() bool { return r.AtLeast(RoleSubAdmin) }

func (r Role) IsSuperAdmin() bool { return r == RoleSuperAdmin }

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
