package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Avatar    string    `gorm:"size:512" json:"avatar"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserBrief 列表中展示的作者/成员信息
type UserBrief struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (u User) Brief() *UserBrief {
	return &UserBrief{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
