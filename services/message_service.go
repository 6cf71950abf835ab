package services

import (
	"time"

	"gorm.io/gorm"

	"groupchat/models"
)

// MessageService 处理群组消息的存储和检索
type MessageService struct {
	db     *gorm.DB
	authz  *AuthzService
	events *EventService // 可为nil，此时不发布事件
}

// NewMessageService 创建消息服务
func NewMessageService(db *gorm.DB, authz *AuthzService, events *EventService) *MessageService {
	return &MessageService{
		db:     db,
		authz:  authz,
		events: events,
	}
}

// PostMessage 向群组发送消息（仅成员）
// 内容长度由接口层校验，时间戳由服务端赋值
func (s *MessageService) PostMessage(caller models.Identity, groupID uint, content string) (*models.MessageResponse, error) {
	if err := s.authz.RequireMember(caller, groupID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		Content:   content,
		UserID:    caller.ID,
		GroupID:   groupID,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventMessagePosted, ActorID: caller.ID, GroupID: groupID, MessageID: msg.ID})
	}

	return &models.MessageResponse{
		ID:      msg.ID,
		Content: msg.Content,
		UserID:  msg.UserID,
		Author: models.UserResponse{
			ID:      caller.ID,
			Name:    caller.Name,
			Email:   caller.Email,
			IsAdmin: caller.IsAdmin,
		},
		GroupID:   msg.GroupID,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// GetGroupMessages 获取群组全部消息（仅成员）
// 按创建时间倒序返回（最新在前），这是对外的固定契约
func (s *MessageService) GetGroupMessages(caller models.Identity, groupID uint) ([]models.MessageResponse, error) {
	if err := s.authz.RequireMember(caller, groupID); err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := s.db.Preload("Author").
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	responses := make([]models.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = models.MessageResponse{
			ID:        msg.ID,
			Content:   msg.Content,
			UserID:    msg.UserID,
			GroupID:   msg.GroupID,
			CreatedAt: msg.CreatedAt,
		}
		if msg.Author != nil {
			responses[i].Author = models.UserResponse{
				ID:      msg.Author.ID,
				Name:    msg.Author.Name,
				Email:   msg.Author.Email,
				IsAdmin: msg.Author.IsAdmin,
			}
		}
	}

	return responses, nil
}
