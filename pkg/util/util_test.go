package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	// 无论内容长短都追加省略号
	assert.Equal(t, "short...", Preview("short", 30))
	assert.Equal(t, "012345678901234567890123456789...", Preview("0123456789012345678901234567890123", 30))

	// 按 rune 截取，不会截断多字节字符
	assert.Equal(t, "你好世界...", Preview("你好世界", 30))
	assert.Equal(t, "你好...", Preview("你好世界", 2))
}

func TestStringPtr(t *testing.T) {
	p := StringPtr("x")
	assert.Equal(t, "x", *p)
}
