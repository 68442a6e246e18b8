package engine

import (
	"fmt"
	"time"

	"inkwell/internal/models"
)

var sampleTopics = []struct {
	title    string
	category string
	tags     []string
}{
	{"从零搭建一个 Go Web 服务", "后端开发", []string{"Go", "Web"}},
	{"React 状态管理实践", "前端开发", []string{"React", "前端"}},
	{"PostgreSQL 触发器入门", "数据库", []string{"PostgreSQL", "SQL"}},
	{"用 Docker 部署你的第一个应用", "运维", []string{"Docker", "部署"}},
	{"机器学习中的特征工程", "人工智能", []string{"机器学习"}},
}

// SampleArticles 后端不可用时展示的示例文章，id 带 sample- 前缀，不能互动
func SampleArticles(key string) []models.Article {
	now := time.Now()
	list := make([]models.Article, 0, len(sampleTopics))
	for i, t := range sampleTopics {
		title := t.title
		if key != "" {
			title = fmt.Sprintf("%s · %s", t.title, key)
		}
		list = append(list, models.Article{
			ID:         fmt.Sprintf("sample-%d", i+1),
			Title:      title,
			Summary:    "示例内容，服务恢复后将显示真实文章。",
			Content:    "示例内容，服务恢复后将显示真实文章。",
			AuthorID:   "sample",
			AuthorName: "Inkwell",
			Category:   t.category,
			Tags:       t.tags,
			CreatedAt:  now.Add(-time.Duration(i) * time.Hour),
			UpdatedAt:  now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return list
}
