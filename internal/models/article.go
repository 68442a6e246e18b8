package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article 文章。四个计数字段由数据库触发器（点赞/收藏/评论）或浏览量原子自增维护，
// 应用层从不根据本地状态计算它们。
type Article struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Summary       string    `gorm:"size:500" json:"summary"`
	AuthorID      string    `gorm:"size:36;not null;index" json:"author_id"`
	AuthorName    string    `gorm:"not null" json:"author_name"`
	AuthorAvatar  string    `json:"author_avatar"`
	Category      string    `gorm:"size:50;index" json:"category"`
	Tags          []string  `gorm:"serializer:json;type:text" json:"tags"`
	ViewCount     int64     `gorm:"not null;default:0" json:"view_count"`
	LikeCount     int64     `gorm:"not null;default:0" json:"like_count"`
	CommentCount  int64     `gorm:"not null;default:0" json:"comment_count"`
	BookmarkCount int64     `gorm:"not null;default:0" json:"bookmark_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Counter 返回指定计数字段的当前快照值
func (a *Article) Counter(field Counter) int64 {
	switch field {
	case ViewCount:
		return a.ViewCount
	case LikeCount:
		return a.LikeCount
	case CommentCount:
		return a.CommentCount
	case BookmarkCount:
		return a.BookmarkCount
	}
	return 0
}

// SetCounter 把一次权威读取的结果合并进快照
func (a *Article) SetCounter(field Counter, value int64) {
	switch field {
	case ViewCount:
		a.ViewCount = value
	case LikeCount:
		a.LikeCount = value
	case CommentCount:
		a.CommentCount = value
	case BookmarkCount:
		a.BookmarkCount = value
	}
}
