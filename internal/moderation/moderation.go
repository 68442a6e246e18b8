// Package moderation 评论敏感词过滤
package moderation

import (
	"strings"

	"github.com/importcjj/sensitive"
)

const replChar = '*'

type Filter struct {
	filter *sensitive.Filter
}

// New 用给定词表构建过滤器，空白词条会被忽略
func New(words []string) *Filter {
	f := sensitive.New()
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			f.AddWord(w)
		}
	}
	return &Filter{filter: f}
}

// LoadFile 追加一个词库文件，每行一个词
func (f *Filter) LoadFile(path string) error {
	return f.filter.LoadWordDict(path)
}

// Replace 把命中的词替换为等长的 *
func (f *Filter) Replace(content string) string {
	return f.filter.Replace(content, replChar)
}

// Validate 返回内容是否干净，以及第一个命中的词
func (f *Filter) Validate(content string) (bool, string) {
	return f.filter.Validate(content)
}
