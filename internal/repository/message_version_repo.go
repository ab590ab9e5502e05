// Package repository 提供数据访问层的实现
package repository

import (
	"context"

	"gorm.io/gorm"

	"branch-chat-server/internal/model"
)

// MessageVersionRepository 消息历史版本数据访问层
// 版本记录是只追加的日志，这里不提供更新操作
type MessageVersionRepository struct {
	db *gorm.DB
}

// NewMessageVersionRepository 创建 MessageVersionRepository 实例
func NewMessageVersionRepository(db *gorm.DB) *MessageVersionRepository {
	return &MessageVersionRepository{db: db}
}

// Create 追加一条版本记录
// 参数:
//   - ctx: 上下文
//   - version: 版本对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *MessageVersionRepository) Create(ctx context.Context, version *model.MessageVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

// GetByMessageID 获取消息的所有历史版本
// 按创建时间倒序排列（最近一次编辑的在前）
// 参数:
//   - ctx: 上下文
//   - messageID: 消息ID
//
// 返回:
//   - []model.MessageVersion: 版本列表
//   - error: 数据库错误
func (r *MessageVersionRepository) GetByMessageID(ctx context.Context, messageID string) ([]model.MessageVersion, error) {
	var versions []model.MessageVersion
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at DESC").
		Find(&versions).Error
	return versions, err
}

// DeleteByConversationID 删除对话下所有消息的版本记录
// 在删除对话时使用，先于消息本身删除
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - error: 数据库错误
func (r *MessageVersionRepository) DeleteByConversationID(ctx context.Context, conversationID string) error {
	subQuery := r.db.
		Model(&model.Message{}).
		Select("id").
		Where("conversation_id = ?", conversationID)

	return r.db.WithContext(ctx).
		Where("message_id IN (?)", subQuery).
		Delete(&model.MessageVersion{}).Error
}

// CountByMessageID 统计消息的版本数量
func (r *MessageVersionRepository) CountByMessageID(ctx context.Context, messageID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MessageVersion{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}
