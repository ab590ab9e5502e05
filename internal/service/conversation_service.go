// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"branch-chat-server/internal/cache"
	"branch-chat-server/internal/model"
	"branch-chat-server/internal/repository"
)

// 对话服务相关错误
var (
	ErrConversationNotFound = errors.New("对话不存在")
)

// ConversationService 对话服务
// 负责对话的创建、列表、重命名和删除
type ConversationService struct {
	convRepo    *repository.ConversationRepository   // 对话数据访问层
	messageRepo *repository.MessageRepository        // 消息数据访问层
	versionRepo *repository.MessageVersionRepository // 版本数据访问层
	cache       *cache.RedisCache                    // Redis 缓存
}

// NewConversationService 创建 ConversationService 实例
func NewConversationService(
	convRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	versionRepo *repository.MessageVersionRepository,
	cache *cache.RedisCache,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		versionRepo: versionRepo,
		cache:       cache,
	}
}

// ConversationResponse 对话响应
type ConversationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// CreateConversationRequest 创建对话请求
type CreateConversationRequest struct {
	Title string `json:"title"` // 标题，可以为空
}

// RenameConversationRequest 重命名对话请求
type RenameConversationRequest struct {
	Title string `json:"title"` // 新标题
}

// CreateConversation 创建新对话
// 标题去除首尾空白后为空时，使用默认标题 "New Conversation"
func (s *ConversationService) CreateConversation(ctx context.Context, req *CreateConversationRequest) (*ConversationResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.DefaultConversationTitle
	}

	conversation := &model.Conversation{
		Title: title,
	}
	if err := s.convRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	return s.toConversationResponse(conversation), nil
}

// ListConversations 获取所有对话
// 按创建时间倒序排列，新建的对话排在最前面
func (s *ConversationService) ListConversations(ctx context.Context) ([]ConversationResponse, error) {
	conversations, err := s.convRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ConversationResponse, len(conversations))
	for i := range conversations {
		result[i] = *s.toConversationResponse(&conversations[i])
	}
	return result, nil
}

// RenameConversation 重命名对话
func (s *ConversationService) RenameConversation(ctx context.Context, id string, req *RenameConversationRequest) (*ConversationResponse, error) {
	conversation, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	if err := s.convRepo.UpdateTitle(ctx, id, req.Title); err != nil {
		return nil, err
	}

	conversation.Title = req.Title
	return s.toConversationResponse(conversation), nil
}

// DeleteConversation 删除对话
// 级联清理：先删除版本记录，再删除消息，最后删除对话本身。
// 三步是顺序执行的独立写入，中途失败会留下部分删除的状态，
// 重新触发删除即可继续清理。
func (s *ConversationService) DeleteConversation(ctx context.Context, id string) error {
	conversation, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	if err := s.versionRepo.DeleteByConversationID(ctx, id); err != nil {
		return err
	}
	if err := s.messageRepo.DeleteByConversationID(ctx, id); err != nil {
		return err
	}
	if err := s.convRepo.Delete(ctx, id); err != nil {
		return err
	}

	// 缓存失效失败不影响删除结果
	_ = s.cache.InvalidateThread(ctx, id)

	return nil
}

// toConversationResponse 将对话模型转换为响应格式
func (s *ConversationService) toConversationResponse(conversation *model.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:        conversation.ID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt.Format(time.RFC3339),
	}
}
