package models

import (
	"time"
)

// Message 群组消息模型，创建后不可修改
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"size:128;not null"`
	UserID    uint      `json:"userId" gorm:"not null;index"` // 作者ID
	Author    *User     `json:"-" gorm:"foreignKey:UserID"`
	GroupID   uint      `json:"groupId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"` // 由服务端在写入时赋值
}

// MessageResponse 消息响应模型
type MessageResponse struct {
	ID        uint         `json:"id"`
	Content   string       `json:"content"`
	UserID    uint         `json:"userId"`
	Author    UserResponse `json:"author"`
	GroupID   uint         `json:"groupId"`
	CreatedAt time.Time    `json:"createdAt"`
}

// PostMessageRequest 发送消息请求模型
type PostMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=128"`
}
