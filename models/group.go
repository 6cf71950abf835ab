package models

import (
	"time"
)

// Group 群组模型，每个群组有且仅有一个所有者
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:128;uniqueIndex;not null"` // 群组名全局唯一
	OwnerID   uint      `json:"ownerId" gorm:"not null;index"`
	Owner     *User     `json:"-" gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMember 群组成员关联表
// (group_id, user_id) 为联合主键，从约束上保证同一成员不会重复入组
type GroupMember struct {
	GroupID  uint      `json:"group_id" gorm:"primaryKey;autoIncrement:false"`
	UserID   uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateGroupRequest 创建群组请求模型
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=128"`
}
