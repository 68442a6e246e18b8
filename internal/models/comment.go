package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment 评论。Username / UserAvatar 是发表时作者信息的快照，创建后只允许删除。
type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ArticleID  string    `gorm:"size:36;not null;index" json:"article_id"`
	Article    Article   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	Username   string    `gorm:"not null" json:"username"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
