package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"groupchat/models"
)

// GroupService 群组服务
type GroupService struct {
	db     *gorm.DB
	authz  *AuthzService
	events *EventService // 可为nil，此时不发布事件
}

// NewGroupService 创建群组服务实例
func NewGroupService(db *gorm.DB, authz *AuthzService, events *EventService) *GroupService {
	return &GroupService{
		db:     db,
		authz:  authz,
		events: events,
	}
}

// CreateGroup 创建新群组，调用者成为所有者并自动入组
// 群组名全局唯一；群组记录和所有者成员记录在同一事务中写入，
// 保证不会出现所有者缺席成员表的群组
func (s *GroupService) CreateGroup(caller models.Identity, name string) (*models.Group, error) {
	// 检查群组名是否已被占用
	var existingGroup models.Group
	err := s.db.Where("name = ?", name).First(&existingGroup).Error
	if err == nil {
		return nil, Deny(ReasonConflict, "A group with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group := &models.Group{
		Name:    name,
		OwnerID: caller.ID,
	}

	// 开启事务
	tx := s.db.Begin()
	if err := tx.Create(group).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// 所有者自动加入群组
	groupMember := models.GroupMember{
		GroupID:  group.ID,
		UserID:   caller.ID,
		JoinedAt: time.Now(),
	}
	if err := tx.Create(&groupMember).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventGroupCreated, ActorID: caller.ID, GroupID: group.ID})
	}

	return group, nil
}

// DeleteGroup 删除群组（仅所有者），级联删除全部成员关系和消息
func (s *GroupService) DeleteGroup(caller models.Identity, groupID uint) error {
	if _, err := s.authz.RequireOwner(caller, groupID); err != nil {
		return err
	}

	// 开启事务
	tx := s.db.Begin()

	if err := tx.Where("group_id = ?", groupID).Delete(&models.Message{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&models.Group{}, groupID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventGroupDeleted, ActorID: caller.ID, GroupID: groupID})
	}

	return nil
}

// AddMember 添加群组成员（仅所有者）
func (s *GroupService) AddMember(caller models.Identity, groupID, targetUserID uint) error {
	if _, err := s.authz.RequireOwner(caller, groupID); err != nil {
		return err
	}

	// 检查目标用户是否存在
	var targetUser models.User
	if err := s.db.First(&targetUser, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Deny(ReasonNotFound, "User not found")
		}
		return err
	}

	// 检查目标用户是否已在群组中
	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, targetUserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return Deny(ReasonConflict, "User is already a member of the group")
	}

	groupMember := models.GroupMember{
		GroupID:  groupID,
		UserID:   targetUserID,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&groupMember).Error; err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventMemberAdded, ActorID: caller.ID, GroupID: groupID, UserID: targetUserID})
	}

	return nil
}

// RemoveMember 移除群组成员（仅所有者）
// 所有者自己的成员记录不允许通过此路径移除，只能随群组删除一并清除，
// 否则会破坏群组必含所有者的约束
func (s *GroupService) RemoveMember(caller models.Identity, groupID, targetUserID uint) error {
	group, err := s.authz.RequireOwner(caller, groupID)
	if err != nil {
		return err
	}

	if targetUserID == group.OwnerID {
		return Deny(ReasonForbidden, "Forbidden: The owner cannot be removed from the group")
	}

	// 检查目标用户是否在群组中
	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, targetUserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return Deny(ReasonNotFound, "User is not a member of the group")
	}

	if err := s.db.Where("group_id = ? AND user_id = ?", groupID, targetUserID).
		Delete(&models.GroupMember{}).Error; err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(&Event{Type: EventMemberRemoved, ActorID: caller.ID, GroupID: groupID, UserID: targetUserID})
	}

	return nil
}

// GetGroupMembers 获取群组成员列表
// 管理员、所有者或成员可读，其余调用者拒绝
func (s *GroupService) GetGroupMembers(caller models.Identity, groupID uint) ([]models.UserResponse, error) {
	if err := s.authz.RequireMemberAccess(caller, groupID); err != nil {
		return nil, err
	}

	var members []models.User
	if err := s.db.Table("users").
		Joins("JOIN group_members ON users.id = group_members.user_id").
		Where("group_members.group_id = ?", groupID).
		Order("users.id").
		Find(&members).Error; err != nil {
		return nil, err
	}

	responses := make([]models.UserResponse, len(members))
	for i, member := range members {
		responses[i] = models.UserResponse{
			ID:      member.ID,
			Name:    member.Name,
			Email:   member.Email,
			IsAdmin: member.IsAdmin,
		}
	}

	return responses, nil
}

// GetOwnedGroups 获取调用者拥有的所有群组
func (s *GroupService) GetOwnedGroups(caller models.Identity) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := s.db.Where("owner_id = ?", caller.ID).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// GetMemberGroups 获取调用者作为成员加入的所有群组
func (s *GroupService) GetMemberGroups(caller models.Identity) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := s.db.Table("groups").
		Joins("JOIN group_members ON groups.id = group_members.group_id").
		Where("group_members.user_id = ?", caller.ID).
		Order("groups.id").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
