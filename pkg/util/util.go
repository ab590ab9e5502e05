// Package util 提供通用工具函数
package util

// Preview 取字符串的前 n 个字符并追加 "..."
// 用于分支列表的展示标签，无论内容长短都会追加省略号
// 按 rune 截取，避免把多字节字符截断成乱码
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

// StringPtr 返回字符串的指针
// 用于可选字段的赋值
func StringPtr(s string) *string {
	return &s
}
