// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"branch-chat-server/internal/model"
)

// ConversationRepository 对话数据访问层
// 负责对话相关的所有数据库操作
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建新对话
// 参数:
//   - ctx: 上下文
//   - conversation: 对话对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// GetByID 根据 ID 获取对话
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//
// 返回:
//   - *model.Conversation: 对话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// List 获取所有对话
// 按创建时间倒序排列（最新的在前），与侧边栏展示顺序一致
// 返回:
//   - []model.Conversation: 对话列表
//   - error: 数据库错误
func (r *ConversationRepository) List(ctx context.Context) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// UpdateTitle 更新对话标题
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//   - title: 新标题
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) UpdateTitle(ctx context.Context, id, title string) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// Delete 删除对话
// 注意: 只删除对话本身，消息和版本的清理由服务层负责
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Conversation{}, "id = ?", id).Error
}
