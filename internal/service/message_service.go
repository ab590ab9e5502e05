// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"branch-chat-server/internal/cache"
	"branch-chat-server/internal/model"
	"branch-chat-server/internal/repository"
	"branch-chat-server/pkg/util"
)

// 消息服务相关错误
var (
	ErrMessageNotFound = errors.New("消息不存在")
	ErrEmptyContent    = errors.New("消息内容不能为空")
)

// BranchLabelLength 分支展示标签保留的内容长度
const BranchLabelLength = 30

// MessageService 消息服务
// 负责消息列表、发送（含助手回复）、编辑（含版本归档）、
// 分支根列表和历史版本列表
type MessageService struct {
	messageRepo *repository.MessageRepository        // 消息数据访问层
	versionRepo *repository.MessageVersionRepository // 版本数据访问层
	convRepo    *repository.ConversationRepository   // 对话数据访问层
	cache       *cache.RedisCache                    // Redis 缓存
	reply       ReplyGenerator                       // 助手回复生成器
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(
	messageRepo *repository.MessageRepository,
	versionRepo *repository.MessageVersionRepository,
	convRepo *repository.ConversationRepository,
	cache *cache.RedisCache,
	reply ReplyGenerator,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		versionRepo: versionRepo,
		convRepo:    convRepo,
		cache:       cache,
		reply:       reply,
	}
}

// MessageResponse 消息响应
type MessageResponse struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversation_id"`
	Content        string  `json:"content"`
	Role           string  `json:"role"`
	ParentID       *string `json:"parent_id"`
	CreatedAt      string  `json:"created_at"`
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content  string  `json:"content"`   // 消息内容
	ParentID *string `json:"parent_id"` // 当前选中的分支根ID，null 表示主分支
}

// SendMessageResponse 发送消息响应
// Reply 在助手回复写入失败时为 null，发送本身仍然算成功
type SendMessageResponse struct {
	Message *MessageResponse `json:"message"`
	Reply   *MessageResponse `json:"reply"`
}

// BranchResponse 分支根响应
type BranchResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`   // 内容前 30 个字符 + 省略号
	Content   string `json:"content"` // 完整内容
	CreatedAt string `json:"created_at"`
}

// VersionResponse 历史版本响应
type VersionResponse struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// GetThread 获取对话的完整消息列表
// 按创建时间正序返回，不按分支过滤——分支选择只影响写入，
// 不影响读取视图。优先从缓存读取，未命中时回源数据库并回填。
func (s *MessageService) GetThread(ctx context.Context, conversationID string) ([]MessageResponse, error) {
	conversation, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	messages, err := s.cache.GetThread(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			// 缓存故障时直接回源，不让 Redis 拖垮读取
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("thread cache read failed")
		}
		messages, err = s.messageRepo.GetByConversationID(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetThread(ctx, conversationID, messages); err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("thread cache write failed")
		}
	}

	result := make([]MessageResponse, len(messages))
	for i := range messages {
		result[i] = *s.toMessageResponse(&messages[i])
	}
	return result, nil
}

// SendMessage 发送用户消息并生成助手回复
// 流程：
//  1. 校验对话存在、内容非空白
//  2. 写入用户消息，parent_id 为当前选中的分支根（null 为主分支）
//  3. 生成助手回复并以相同的 parent_id 写入
//
// 助手回复环节失败只记录日志，不向调用方报错——用户消息保持可见、
// 没有对应回复。用户消息写入失败则整个操作失败，不产生任何消息。
func (s *MessageService) SendMessage(ctx context.Context, conversationID string, req *SendMessageRequest) (*SendMessageResponse, error) {
	conversation, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	userMessage := &model.Message{
		ConversationID: conversationID,
		Content:        req.Content,
		Role:           model.MessageRoleUser,
		ParentID:       req.ParentID,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return nil, err
	}

	resp := &SendMessageResponse{
		Message: s.toMessageResponse(userMessage),
	}

	// 助手回复与用户消息共享同一个分支根
	if reply, err := s.createReply(ctx, conversationID, req.Content, req.ParentID); err != nil {
		log.Warn().Err(err).
			Str("conversation_id", conversationID).
			Str("message_id", userMessage.ID).
			Msg("assistant reply failed, user message kept without reply")
	} else {
		resp.Reply = s.toMessageResponse(reply)
	}

	_ = s.cache.InvalidateThread(ctx, conversationID)

	return resp, nil
}

// createReply 生成并写入助手回复
func (s *MessageService) createReply(ctx context.Context, conversationID, userContent string, parentID *string) (*model.Message, error) {
	content, err := s.reply.Generate(ctx, userContent)
	if err != nil {
		return nil, err
	}

	replyMessage := &model.Message{
		ConversationID: conversationID,
		Content:        content,
		Role:           model.MessageRoleAssistant,
		ParentID:       parentID,
	}
	if err := s.messageRepo.Create(ctx, replyMessage); err != nil {
		return nil, err
	}
	return replyMessage, nil
}

// GetBranches 获取对话的分支根列表
// 分支根是 parent_id 为 NULL 的消息，按创建时间正序排列
func (s *MessageService) GetBranches(ctx context.Context, conversationID string) ([]BranchResponse, error) {
	conversation, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	roots, err := s.messageRepo.GetBranchRoots(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	result := make([]BranchResponse, len(roots))
	for i := range roots {
		result[i] = BranchResponse{
			ID:        roots[i].ID,
			Label:     util.Preview(roots[i].Content, BranchLabelLength),
			Content:   roots[i].Content,
			CreatedAt: roots[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return result, nil
}

// EditMessage 编辑消息内容
// 新内容为空白、或与当前内容相同时不做任何写入，直接返回当前消息。
// 其余情况分两步顺序写入：
//  1. 把编辑前的内容归档为一条版本记录
//  2. 覆盖消息内容
//
// 两步之间没有事务。第 2 步失败时不回滚第 1 步，会留下一条
// 没有对应内容变更的版本记录——无害但不对称，重新编辑即可恢复。
func (s *MessageService) EditMessage(ctx context.Context, messageID, newContent string) (*MessageResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	if strings.TrimSpace(newContent) == "" || newContent == message.Content {
		return s.toMessageResponse(message), nil
	}

	version := &model.MessageVersion{
		MessageID: messageID,
		Content:   message.Content,
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, newContent); err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateThread(ctx, message.ConversationID)

	message.Content = newContent
	return s.toMessageResponse(message), nil
}

// GetVersions 获取消息的历史版本列表
// 按创建时间倒序返回，最近一次编辑的版本在前
func (s *MessageService) GetVersions(ctx context.Context, messageID string) ([]VersionResponse, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	versions, err := s.versionRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	result := make([]VersionResponse, len(versions))
	for i := range versions {
		result[i] = VersionResponse{
			ID:        versions[i].ID,
			MessageID: versions[i].MessageID,
			Content:   versions[i].Content,
			CreatedAt: versions[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return result, nil
}

// toMessageResponse 将消息模型转换为响应格式
func (s *MessageService) toMessageResponse(message *model.Message) *MessageResponse {
	return &MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Content:        message.Content,
		Role:           message.Role,
		ParentID:       message.ParentID,
		CreatedAt:      message.CreatedAt.Format(time.RFC3339),
	}
}
