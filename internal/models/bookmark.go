package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark 收藏记录 - 与 Like 同构，(article_id, user_id) 唯一
type Bookmark struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ArticleID string    `gorm:"size:36;not null;uniqueIndex:idx_bookmarks_article_user" json:"article_id"`
	Article   Article   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_bookmarks_article_user;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
