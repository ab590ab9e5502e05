// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultConversationTitle 新建对话时的默认标题
// 当用户提交的标题为空（或仅包含空白字符）时使用
const DefaultConversationTitle = "New Conversation"

// Conversation 对话模型
// 对应数据库表 conversations
// 表示一个聊天对话，是消息的容器
// 列表展示时按创建时间倒序排列（最新的在前）
type Conversation struct {
	// ID 对话唯一标识，UUID 字符串，创建后不可变
	ID string `gorm:"type:char(36);primaryKey" json:"id"`

	// Title 对话标题，可通过重命名修改
	Title string `gorm:"size:255;not null" json:"title"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Messages 对话中的所有消息（一对多关系）
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate 在插入前生成 UUID 主键
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
