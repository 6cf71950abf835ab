package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"groupchat/config"
	"groupchat/models"
)

// keyAllUsers 用户列表缓存键
const keyAllUsers = "users:all"

// UserService 用户服务
type UserService struct {
	db     *gorm.DB
	rdb    *redis.Client // 可为nil，此时跳过缓存
	authz  *AuthzService
	events *EventService // 可为nil，此时不发布事件
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, rdb *redis.Client, authz *AuthzService, events *EventService) *UserService {
	return &UserService{
		db:     db,
		rdb:    rdb,
		authz:  authz,
		events: events,
	}
}

// validPassword 校验密码强度
// 至少8位，包含数字、大写字母、小写字母和 !@#$%^&* 中的特殊字符，
// 且只允许单词字符和上述特殊字符
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasDigit, hasUpper, hasLower, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case strings.ContainsRune("!@#$%^&*", c):
			hasSpecial = true
		case c == '_':
			// 单词字符，允许但不计入任何类别
		default:
			return false
		}
	}
	return hasDigit && hasUpper && hasLower && hasSpecial
}

// Register 用户注册，新用户永远不是管理员
func (s *UserService) Register(name, email, password string) (*models.User, error) {
	if !validPassword(password) {
		return nil, Deny(ReasonInvalidInput, "Weak password! Password must contain at least 8 characters, including uppercase, lowercase, number and special character")
	}

	// 检查邮箱是否已被注册
	var existingUser models.User
	err := s.db.Where("email = ?", email).First(&existingUser).Error
	if err == nil {
		return nil, Deny(ReasonConflict, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 哈希密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := models.User{
		Name:     name,
		Email:    email,
		PassHash: string(hashedPassword),
		IsAdmin:  false,
	}

	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, err
	}

	s.invalidateUserCache()

	return &newUser, nil
}

// Login 校验邮箱和密码，返回用户记录
// 邮箱不存在和密码错误返回同一个拒绝，不泄露哪一项出错
func (s *UserService) Login(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Deny(ReasonForbidden, "Wrong email/password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return nil, Deny(ReasonForbidden, "Wrong email/password")
	}

	return &user, nil
}

// GetAllUsers 获取所有用户
// 列表只含展示字段，可以缓存；授权判断从不读取这份缓存
func (s *UserService) GetAllUsers() ([]models.UserResponse, error) {
	ctx := context.Background()

	// 先尝试从缓存获取
	if s.rdb != nil {
		usersJSON, err := s.rdb.Get(ctx, keyAllUsers).Result()
		if err == nil {
			var cached []models.UserResponse
			if err := json.Unmarshal([]byte(usersJSON), &cached); err == nil {
				return cached, nil
			}
		}
	}

	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	userResponses := make([]models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = models.UserResponse{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		}
	}

	// 更新缓存
	if s.rdb != nil {
		usersBytes, _ := json.Marshal(userResponses)
		s.rdb.Set(ctx, keyAllUsers, usersBytes, time.Duration(config.AppConfig.CacheExpiration)*time.Second)
	}

	return userResponses, nil
}

// UpdateUser 更新用户信息，name/email/password均可选但至少提供一项
func (s *UserService) UpdateUser(targetID uint, req models.UpdateUserRequest) (*models.User, error) {
	if req.Name == "" && req.Email == "" && req.Password == "" {
		return nil, Deny(ReasonInvalidInput, "You must specify the name, email or password")
	}

	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Deny(ReasonNotFound, "User not found")
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PassHash = string(hashedPassword)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}

	s.invalidateUserCache()

	return &user, nil
}

// UpdatePassword 修改当前用户自己的密码
func (s *UserService) UpdatePassword(callerID uint, password string) error {
	if !validPassword(password) {
		return Deny(ReasonInvalidInput, "Weak password! Password must contain at least 8 characters, including uppercase, lowercase, number and special character")
	}

	var user models.User
	if err := s.db.First(&user, callerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 令牌对应的用户已不存在
			return Deny(ReasonUnauthenticated, "Unauthorized")
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.db.Model(&user).Update("pass_hash", string(hashedPassword)).Error; err != nil {
		return err
	}

	return nil
}

// DeleteUser 删除用户（仅管理员）
// 级联删除其拥有的群组（连同成员关系和消息）、其成员关系和其发出的消息
func (s *UserService) DeleteUser(caller models.Identity, targetID uint) error {
	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}

	var user models.User
	if err := s.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Deny(ReasonNotFound, "User not found")
		}
		return err
	}

	// 该用户拥有的群组
	var ownedGroupIDs []uint
	if err := s.db.Model(&models.Group{}).
		Where("owner_id = ?", targetID).
		Pluck("id", &ownedGroupIDs).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(ownedGroupIDs) > 0 {
			if err := tx.Where("group_id IN ?", ownedGroupIDs).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id IN ?", ownedGroupIDs).Delete(&models.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_id = ?", targetID).Delete(&models.Group{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, targetID).Error
	})
	if err != nil {
		return err
	}

	s.invalidateUserCache()

	if s.events != nil {
		s.events.Publish(&Event{Type: EventUserDeleted, ActorID: caller.ID, UserID: targetID})
	}

	return nil
}

// invalidateUserCache 删除用户列表缓存
func (s *UserService) invalidateUserCache() {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(context.Background(), keyAllUsers)
}
