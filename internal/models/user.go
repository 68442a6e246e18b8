package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationSettings struct {
	EmailNotifications      bool `json:"email_notifications"`
	CommentNotifications    bool `json:"comment_notifications"`
	LikeNotifications       bool `json:"like_notifications"`
	NewArticleNotifications bool `json:"new_article_notifications"`
}

type PrivacySettings struct {
	AllowComments bool `json:"allow_comments"`
	AllowLikes    bool `json:"allow_likes"`
}

type User struct {
	ID                   string               `gorm:"primaryKey;size:36" json:"id"`
	Username             string               `gorm:"not null" json:"username"` // Username can be modified
	Email                string               `gorm:"uniqueIndex;not null" json:"email"`
	Password             string               `gorm:"not null" json:"-"` // Hash
	AvatarURL            string               `json:"avatar_url"`
	Bio                  string               `gorm:"size:200" json:"bio"`
	NotificationSettings NotificationSettings `gorm:"serializer:json;type:text" json:"notification_settings"`
	PrivacySettings      PrivacySettings      `gorm:"serializer:json;type:text" json:"privacy_settings"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DefaultNotificationSettings 新用户的默认通知设置
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications:   true,
		CommentNotifications: true,
		LikeNotifications:    true,
	}
}

// DefaultPrivacySettings 新用户的默认隐私设置
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{AllowComments: true, AllowLikes: true}
}
