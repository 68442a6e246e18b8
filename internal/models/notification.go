package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeLike    NotificationType = "like"
)

// Notification 发给文章作者的站内通知。ActorName / ArticleTitle 是生成时的快照。
type Notification struct {
	ID           string           `gorm:"primaryKey;size:36" json:"id"`
	UserID       string           `gorm:"size:36;not null;index" json:"user_id"` // Receiver
	User         User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID      string           `gorm:"size:36;not null;index" json:"actor_id"` // Sender
	ActorName    string           `json:"actor_name"`
	ArticleID    string           `gorm:"size:36;not null;index" json:"article_id"`
	Article      Article          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ArticleTitle string           `json:"article_title"`
	CommentID    string           `gorm:"size:36" json:"comment_id,omitempty"`
	Type         NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Content      string           `gorm:"type:text" json:"content"`
	IsRead       bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
