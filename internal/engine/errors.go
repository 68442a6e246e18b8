package engine

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Unauthenticated   Kind = "unauthenticated"
	AlreadyToggled    Kind = "already_toggled"
	NotAuthorized     Kind = "not_authorized"
	GatewayError      Kind = "gateway_error"
	NotFound          Kind = "not_found"
	Invalid           Kind = "invalid"
	CommentPostFailed Kind = "comment_post_failed"
)

var messages = map[Kind]string{
	Unauthenticated:   "请先登录",
	AlreadyToggled:    "操作已生效，请刷新后重试",
	NotAuthorized:     "无权执行此操作",
	GatewayError:      "服务暂时不可用，请稍后重试",
	NotFound:          "内容不存在或已被删除",
	Invalid:           "请求参数无效",
	CommentPostFailed: "评论发布失败",
}

// Message 面向用户的提示语
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return "未知错误"
}

// Error 是 Engine 对外返回的唯一错误类型
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 非 Engine 错误返回空字符串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
