package services

import (
	"errors"

	"gorm.io/gorm"

	"groupchat/models"
)

// AuthzService 授权引擎
// 对每个群组/成员/消息操作给出允许或带原因的拒绝决策
// 每次调用都重新读取当前的所有权/成员关系状态，不持有任何缓存或锁
type AuthzService struct {
	db *gorm.DB
}

// NewAuthzService 创建授权引擎实例
func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// GetGroup 读取群组，不存在时返回not_found拒绝
func (s *AuthzService) GetGroup(groupID uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Deny(ReasonNotFound, "Group not found")
		}
		return nil, err
	}
	return &group, nil
}

// RequireOwner 要求调用者是群组所有者
// 群组不存在返回not_found，非所有者返回forbidden
func (s *AuthzService) RequireOwner(caller models.Identity, groupID uint) (*models.Group, error) {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != caller.ID {
		return nil, Deny(ReasonForbidden, "Forbidden: Not the owner of the group")
	}
	return group, nil
}

// RequireMember 要求调用者是群组当前成员
// 非成员（包括群组不存在的情形）统一返回forbidden
func (s *AuthzService) RequireMember(caller models.Identity, groupID uint) error {
	isMember, err := s.isMember(groupID, caller.ID)
	if err != nil {
		return err
	}
	if !isMember {
		return Deny(ReasonForbidden, "Forbidden: Not a member of the group")
	}
	return nil
}

// RequireMemberAccess 成员列表的读取权限：管理员、所有者或成员均可
// 群组不存在优先返回not_found
func (s *AuthzService) RequireMemberAccess(caller models.Identity, groupID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	// 管理员标志以数据库为准，不信任令牌中的声明
	isAdmin, err := s.isAdmin(caller.ID)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	if group.OwnerID == caller.ID {
		return nil
	}

	isMember, err := s.isMember(groupID, caller.ID)
	if err != nil {
		return err
	}
	if isMember {
		return nil
	}

	return Deny(ReasonForbidden, "Forbidden: Not authorized to view group members")
}

// RequireAdmin 要求调用者是管理员
// 每次都重新查询用户表，管理员权限被撤销后立即生效
func (s *AuthzService) RequireAdmin(caller models.Identity) error {
	isAdmin, err := s.isAdmin(caller.ID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return Deny(ReasonForbidden, "Forbidden: Not an admin")
	}
	return nil
}

// isMember 检查用户是否是群组当前成员
func (s *AuthzService) isMember(groupID, userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// isAdmin 从用户表读取管理员标志
func (s *AuthzService) isAdmin(userID uint) (bool, error) {
	var user models.User
	if err := s.db.Select("is_admin").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 令牌对应的用户已被删除
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}
