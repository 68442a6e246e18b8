package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// MaxPage 页码上限，避免 offset 计算溢出
const MaxPage = 10000

// ParsePage 页码从 1 开始，非法值按第 1 页处理，超过 MaxPage 按 MaxPage 处理
func ParsePage(s string) int {
	p := StringToInt(s)
	switch {
	case p <= 0:
		return 1
	case p > MaxPage:
		return MaxPage
	}
	return p
}

// ParseLimit 解析 top/limit 之类的参数并限制在 [1, max]
func ParseLimit(s string, def, max int) int {
	n := StringToInt(s)
	switch {
	case n <= 0:
		return def
	case n > max:
		return max
	}
	return n
}
