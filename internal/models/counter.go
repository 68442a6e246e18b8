package models

// Counter 是 articles 表上的聚合计数列名
type Counter string

const (
	ViewCount     Counter = "view_count"
	LikeCount     Counter = "like_count"
	CommentCount  Counter = "comment_count"
	BookmarkCount Counter = "bookmark_count"
)

// Valid 用于在拼接 SQL 列名之前做白名单校验
func (c Counter) Valid() bool {
	switch c {
	case ViewCount, LikeCount, CommentCount, BookmarkCount:
		return true
	}
	return false
}

// ToggleKind 点赞或收藏，行存在即表示"已开启"
type ToggleKind string

const (
	KindLike     ToggleKind = "like"
	KindBookmark ToggleKind = "bookmark"
)

func (k ToggleKind) Valid() bool {
	return k == KindLike || k == KindBookmark
}

// Counter 返回该开关对应的计数列
func (k ToggleKind) Counter() Counter {
	if k == KindBookmark {
		return BookmarkCount
	}
	return LikeCount
}

// Table 返回该开关对应的表名
func (k ToggleKind) Table() string {
	if k == KindBookmark {
		return "bookmarks"
	}
	return "likes"
}
