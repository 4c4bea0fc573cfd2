package model

import "time"

// CommunityView 社区详情/列表输出
type CommunityView struct {
	Community
	MemberCount int64 `json:"memberCount"`
	MyRole      Role  `json:"myRole,omitempty"`
}

type MemberView struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type JoinRequestView struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Avatar    string            `json:"avatar,omitempty"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

type PostView struct {
	Post
	Author        *UserBrief `json:"author,omitempty"`
	LikesCount    int64      `json:"likesCount"`
	CommentsCount int64      `json:"commentsCount"`
	IsLiked       bool       `json:"isLiked"`
}

type PostPage struct {
	Posts   []PostView `json:"posts"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	HasMore bool       `json:"hasMore"`
}

type CommentView struct {
	PostComment
	Author  *UserBrief `json:"author,omitempty"`
	ReplyTo *UserBrief `json:"replyTo,omitempty"`
}

type LikeView struct {
	PostLike
	User *UserBrief `json:"user,omitempty"`
}
