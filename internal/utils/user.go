package utils

import (
	"strings"
	"time"
)

const AnonymousName = "匿名用户"

// DefaultUsername 展示名优先，其次邮箱 @ 前缀，都没有时为 匿名用户
func DefaultUsername(displayName, email string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return AnonymousName
}

// GetDaysSinceJoined 计算注册天数
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}
