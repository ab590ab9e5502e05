// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"branch-chat-server/internal/model"
)

// MessageRepository 消息数据访问层
// 负责消息相关的所有数据库操作
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建新消息
// 参数:
//   - ctx: 上下文
//   - message: 消息对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByID 根据 ID 获取消息
// 参数:
//   - ctx: 上下文
//   - id: 消息ID
//
// 返回:
//   - *model.Message: 消息对象，未找到返回 nil
//   - error: 数据库错误
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// GetByConversationID 获取对话的所有消息
// 按创建时间正序排列（最早的在前），不按分支过滤
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - []model.Message: 消息列表
//   - error: 数据库错误
func (r *MessageRepository) GetByConversationID(ctx context.Context, conversationID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC"). // 按时间正序，方便展示对话
		Find(&messages).Error
	return messages, err
}

// GetBranchRoots 获取对话的所有分支根
// 分支根是 parent_id 为 NULL 的消息，按创建时间正序排列
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - []model.Message: 分支根列表
//   - error: 数据库错误
func (r *MessageRepository) GetBranchRoots(ctx context.Context, conversationID string) ([]model.Message, error) {
	var roots []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND parent_id IS NULL", conversationID).
		Order("created_at ASC").
		Find(&roots).Error
	return roots, err
}

// UpdateContent 更新消息内容
// 只覆盖 content 字段，角色和归属不可变
// 参数:
//   - ctx: 上下文
//   - id: 消息ID
//   - content: 新内容
//
// 返回:
//   - error: 数据库错误
func (r *MessageRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", id).
		Update("content", content).Error
}

// DeleteByConversationID 删除对话的所有消息
// 在删除对话时使用
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - error: 数据库错误
func (r *MessageRepository) DeleteByConversationID(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&model.Message{}).Error
}

// CountByConversationID 统计对话的消息数量
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - int64: 消息数量
//   - error: 数据库错误
func (r *MessageRepository) CountByConversationID(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
