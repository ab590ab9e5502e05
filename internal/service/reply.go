// Package service 提供业务逻辑层的实现
package service

import "context"

// ReplyGenerator 助手回复生成器
// 消息服务通过这个接口生成助手回复，替换实现即可接入
// 真实的生成后端，不需要改动消息服务的控制流程
type ReplyGenerator interface {
	// Generate 根据用户消息内容生成回复内容
	Generate(ctx context.Context, content string) (string, error)
}

// EchoReplyPrefix 回声回复的固定前缀
const EchoReplyPrefix = "You said: "

// EchoReply 确定性的回声回复生成器
// 对每条用户消息返回 "You said: " + 原文
type EchoReply struct{}

// NewEchoReply 创建 EchoReply 实例
func NewEchoReply() *EchoReply {
	return &EchoReply{}
}

// Generate 返回带固定前缀的原文
func (e *EchoReply) Generate(ctx context.Context, content string) (string, error) {
	return EchoReplyPrefix + content, nil
}
