package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxPostImages        = 9
	MaxCommentRunes      = 500
	DefaultPostLimit     = 20
	MaxPostLimit         = 100
	MaxAnnouncementTitle = 200
)

// Post 社区动态，置顶优先、时间倒序
type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CommunityID string    `gorm:"size:36;not null;index:idx_post_feed,priority:1" json:"communityId"`
	AuthorID    string    `gorm:"size:36;not null;index" json:"authorId"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Images      []string  `gorm:"serializer:json;type:text" json:"images"`
	IsPinned    bool      `gorm:"not null;index:idx_post_feed,priority:2" json:"isPinned"`
	CreatedAt   time.Time `gorm:"index:idx_post_feed,priority:3" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type PostComment struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	PostID        string    `gorm:"size:36;not null;index" json:"postId"`
	AuthorID      string    `gorm:"size:36;not null" json:"authorId"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ReplyToUserID string    `gorm:"size:36" json:"replyToUserId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (c *PostComment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Announcement 社区公告，仅管理员可写
type Announcement struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CommunityID string    `gorm:"size:36;not null;index" json:"communityId"`
	AuthorID    string    `gorm:"size:36;not null" json:"authorId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	IsPinned    bool      `gorm:"not null" json:"isPinned"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Announcement) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
