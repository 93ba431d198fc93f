package util

import (
	"strconv"
)

// ParseIndex 解析非负整数下标，格式错误或为负数时返回 false
func ParseIndex(s string) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// ClampCount 将生成数量限制在 [MinGenerateCount, MaxGenerateCount]，0 表示使用默认值
func ClampCount(n int) int {
	switch {
	case n == 0:
		return DefaultGenerateCount
	case n < MinGenerateCount:
		return MinGenerateCount
	case n > MaxGenerateCount:
		return MaxGenerateCount
	}
	return n
}

// Truncate 按字符（rune）截断文本
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
