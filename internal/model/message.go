// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRole 消息角色常量
const (
	MessageRoleUser      = "user"      // 用户消息
	MessageRoleAssistant = "assistant" // 助手回复
)

// Message 消息模型
// 对应数据库表 messages
//
// 关于分支：ParentID 为 NULL 的消息是"分支根"，可以作为对话的
// 备选起点被选中。ParentID 非空时，它的值是创建该消息时选中的
// 分支根的 ID —— 即同一分支下的所有消息共享同一个 ParentID，
// 这是一个按分支根分组的标记，而不是逐条相连的父子链。
// 读取消息列表时不按分支过滤，分支选择只影响后续写入。
type Message struct {
	// ID 消息唯一标识，UUID 字符串
	ID string `gorm:"type:char(36);primaryKey" json:"id"`

	// ConversationID 所属对话ID，外键关联 conversations.id
	ConversationID string `gorm:"type:char(36);index;not null" json:"conversation_id"`

	// Content 消息内容，入库的消息内容不允许为空
	Content string `gorm:"type:text;not null" json:"content"`

	// Role 消息角色，user 或 assistant，创建后不可变
	Role string `gorm:"size:20;not null" json:"role"`

	// ParentID 所属分支根的ID，NULL 表示主分支
	ParentID *string `gorm:"type:char(36);index" json:"parent_id"`

	// CreatedAt 消息创建时间，列表按此字段正序展示
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Versions 消息的历史版本（一对多关系，编辑时追加）
	Versions []MessageVersion `gorm:"foreignKey:MessageID" json:"versions,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 在插入前生成 UUID 主键
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsBranchRoot 判断该消息是否为分支根（没有父分支的消息）
func (m *Message) IsBranchRoot() bool {
	return m.ParentID == nil
}
