// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"branch-chat-server/internal/service"
	"branch-chat-server/pkg/response"
)

// ConversationHandler 对话请求处理器
type ConversationHandler struct {
	convService    *service.ConversationService
	messageService *service.MessageService
}

// NewConversationHandler 创建 ConversationHandler 实例
func NewConversationHandler(convService *service.ConversationService, messageService *service.MessageService) *ConversationHandler {
	return &ConversationHandler{
		convService:    convService,
		messageService: messageService,
	}
}

// ListConversations 获取对话列表
// @Summary 获取对话列表
// @Description 获取所有对话，按创建时间倒序排列
// @Tags 对话
// @Produce json
// @Success 200 {object} response.Response{data=[]service.ConversationResponse}
// @Router /api/v1/conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	conversations, err := h.convService.ListConversations(c.Request.Context())
	if err != nil {
		response.InternalError(c, "获取对话列表失败")
		return
	}

	response.Success(c, gin.H{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

// CreateConversation 创建新对话
// @Summary 创建对话
// @Description 创建新对话，标题为空时使用默认标题
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body service.CreateConversationRequest true "对话标题"
// @Success 201 {object} response.Response{data=service.ConversationResponse}
// @Router /api/v1/conversations [post]
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req service.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	conversation, err := h.convService.CreateConversation(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c, "创建对话失败")
		return
	}

	response.Created(c, conversation)
}

// RenameConversation 重命名对话
// @Summary 重命名对话
// @Description 更新指定对话的标题
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "对话ID"
// @Param body body service.RenameConversationRequest true "新标题"
// @Success 200 {object} response.Response{data=service.ConversationResponse}
// @Router /api/v1/conversations/{id} [put]
func (h *ConversationHandler) RenameConversation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	var req service.RenameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	conversation, err := h.convService.RenameConversation(c.Request.Context(), id, &req)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			response.ConversationNotFound(c)
		default:
			response.InternalError(c, "重命名对话失败")
		}
		return
	}

	response.Success(c, conversation)
}

// DeleteConversation 删除对话
// @Summary 删除对话
// @Description 删除指定对话及其全部消息和历史版本
// @Tags 对话
// @Produce json
// @Param id path string true "对话ID"
// @Success 204 "删除成功"
// @Router /api/v1/conversations/{id} [delete]
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	err := h.convService.DeleteConversation(c.Request.Context(), id)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			response.ConversationNotFound(c)
		default:
			response.InternalError(c, "删除对话失败")
		}
		return
	}

	response.NoContent(c)
}

// ListBranches 获取对话的分支根列表
// @Summary 获取分支列表
// @Description 获取指定对话的所有分支根，按创建时间正序排列
// @Tags 对话
// @Produce json
// @Param id path string true "对话ID"
// @Success 200 {object} response.Response{data=[]service.BranchResponse}
// @Router /api/v1/conversations/{id}/branches [get]
func (h *ConversationHandler) ListBranches(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	branches, err := h.messageService.GetBranches(c.Request.Context(), id)
	if err != nil {
		switch err {
		case service.ErrConversationNotFound:
			response.ConversationNotFound(c)
		default:
			response.InternalError(c, "获取分支列表失败")
		}
		return
	}

	response.Success(c, gin.H{
		"branches": branches,
		"total":    len(branches),
	})
}
