package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like 点赞记录，(article_id, user_id) 唯一
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ArticleID string    `gorm:"size:36;not null;uniqueIndex:idx_likes_article_user" json:"article_id"`
	Article   Article   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_likes_article_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
