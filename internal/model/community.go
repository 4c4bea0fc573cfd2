package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPointName = "积分"
	MaxSystemAdmins  = 5
)

type Community struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"size:64;not null" json:"name"`
	Slug          string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Description   string    `gorm:"type:text" json:"description"`
	MarkdownIntro string    `gorm:"type:text" json:"markdownIntro"`
	IsPublic      bool      `gorm:"not null" json:"isPublic"`
	SuperAdminID  string    `gorm:"size:36;index" json:"superAdminId"`
	PointName     string    `gorm:"size:32;not null" json:"pointName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (c *Community) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommunityMember 成员关系，(community_id, user_id) 唯一
type CommunityMember struct {
	ID          string    `gorm:"primaryKey;size:36" json:"-"`
	CommunityID string    `gorm:"size:36;not null;uniqueIndex:uk_member_community_user" json:"communityId"`
	UserID      string    `gorm:"size:36;not null;index;uniqueIndex:uk_member_community_user" json:"userId"`
	Role        Role      `gorm:"size:16;not null" json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	UpdatedAt   time.Time `json:"-"`
}

func (m *CommunityMember) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

// SystemAdmin 平台级管理员，与社区角色无关
type SystemAdmin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *SystemAdmin) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// NormalizeSlug 去首尾空白、转小写，内部连续空白折叠为 "-"
func NormalizeSlug(slug string) string {
	return strings.Join(strings.Fields(strings.ToLower(slug)), "-")
}
