// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageVersion 消息历史版本模型
// 对应数据库表 message_versions
// 每次编辑消息时，会先把编辑前的内容归档为一条版本记录，
// 然后才覆盖消息内容。版本记录只追加、不修改、不删除。
type MessageVersion struct {
	// ID 版本唯一标识，UUID 字符串
	ID string `gorm:"type:char(36);primaryKey" json:"id"`

	// MessageID 所属消息ID，外键关联 messages.id
	MessageID string `gorm:"type:char(36);index;not null" json:"message_id"`

	// Content 编辑前的消息内容
	Content string `gorm:"type:text;not null" json:"content"`

	// CreatedAt 编辑发生的时间，版本列表按此字段倒序展示
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (MessageVersion) TableName() string {
	return "message_versions"
}

// BeforeCreate 在插入前生成 UUID 主键
func (v *MessageVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
