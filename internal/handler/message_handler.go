// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"branch-chat-server/internal/service"
	"branch-chat-server/pkg/response"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建 MessageHandler 实例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetMessages 获取对话的消息列表
// 返回完整列表，按创建时间正序，不按分支过滤
func (h *MessageHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	messages, err := h.messageService.GetThread(c.Request.Context(), conversationID)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			response.ConversationNotFound(c)
		default:
			response.InternalError(c, "获取消息列表失败")
		}
		return
	}

	response.Success(c, gin.H{
		"messages": messages,
		"total":    len(messages),
	})
}

// SendMessage 发送用户消息
// 请求体携带内容和当前选中的分支根ID（null 表示主分支）。
// 成功时返回用户消息和助手回复；助手回复写入失败时 reply 为 null，
// 整体仍返回成功。
func (h *MessageHandler) SendMessage(c *gin.Context) {
	conversationID := c.Param("id")
	if conversationID == "" {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	result, err := h.messageService.SendMessage(c.Request.Context(), conversationID, &req)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			response.ConversationNotFound(c)
		case service.ErrEmptyContent:
			response.EmptyContent(c)
		default:
			response.InternalError(c, "发送消息失败")
		}
		return
	}

	response.Created(c, result)
}

// EditMessageRequest 编辑消息请求
type EditMessageRequest struct {
	Content string `json:"content"` // 新内容
}

// EditMessage 编辑消息内容
// 编辑前的内容会先归档为一条历史版本。
// 新内容为空白或与当前内容相同时不做写入，直接返回当前消息。
func (h *MessageHandler) EditMessage(c *gin.Context) {
	messageID := c.Param("id")
	if messageID == "" {
		response.BadRequest(c, "无效的消息ID")
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	message, err := h.messageService.EditMessage(c.Request.Context(), messageID, req.Content)
	if err != nil {
		switch err {
		case service.ErrMessageNotFound:
			response.MessageNotFound(c)
		default:
			response.InternalError(c, "编辑消息失败")
		}
		return
	}

	response.Success(c, message)
}

// GetVersions 获取消息的历史版本列表
// 按创建时间倒序返回，最近一次编辑的版本在前
func (h *MessageHandler) GetVersions(c *gin.Context) {
	messageID := c.Param("id")
	if messageID == "" {
		response.BadRequest(c, "无效的消息ID")
		return
	}

	versions, err := h.messageService.GetVersions(c.Request.Context(), messageID)
	if err != nil {
		switch err {
		case service.ErrMessageNotFound:
			response.MessageNotFound(c)
		default:
			response.InternalError(c, "获取历史版本失败")
		}
		return
	}

	response.Success(c, gin.H{
		"versions": versions,
		"total":    len(versions),
	})
}
