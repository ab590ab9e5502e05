// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// code: 业务状态码（0 表示成功）
// message: 提示信息
// data: 响应数据
type Response struct {
	Code    int         `json:"code"`           // 业务状态码
	Message string      `json:"message"`        // 提示信息
	Data    interface{} `json:"data,omitempty"` // 响应数据，可选
}

// 业务状态码定义
const (
	CodeSuccess              = 0    // 成功
	CodeBadRequest           = 1000 // 请求参数错误
	CodeNotFound             = 1003 // 资源不存在
	CodeInternalError        = 1004 // 服务器内部错误
	CodeConversationNotFound = 1101 // 对话不存在
	CodeMessageNotFound      = 1102 // 消息不存在
	CodeEmptyContent         = 1103 // 消息内容为空
)

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "创建成功",
		Data:    data,
	})
}

// NoContent 返回 204 无内容响应（用于删除操作）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeBadRequest,
		Message: message,
	})
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeNotFound,
		Message: message,
	})
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeInternalError,
		Message: message,
	})
}

// ConversationNotFound 返回对话不存在错误
func ConversationNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeConversationNotFound,
		Message: "对话不存在",
	})
}

// MessageNotFound 返回消息不存在错误
func MessageNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeMessageNotFound,
		Message: "消息不存在",
	})
}

// EmptyContent 返回消息内容为空错误
func EmptyContent(c *gin.Context) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeEmptyContent,
		Message: "消息内容不能为空",
	})
}
