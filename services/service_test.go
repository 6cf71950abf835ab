package services

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"groupchat/models"
)

// newTestDB 创建内存sqlite数据库并迁移表结构
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试使用独立的命名内存库，避免连接池拿到不同的库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMember{}, &models.Message{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	return db
}

// newTestServices 创建一组共享同一数据库的服务，不带缓存和事件流
func newTestServices(db *gorm.DB) (*AuthzService, *UserService, *GroupService, *MessageService) {
	authz := NewAuthzService(db)
	users := NewUserService(db, nil, authz, nil)
	groups := NewGroupService(db, authz, nil)
	messages := NewMessageService(db, authz, nil)
	return authz, users, groups, messages
}

// createTestUser 直接插入一个用户记录
func createTestUser(t *testing.T, db *gorm.DB, name, email string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngP@ss"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		PassHash: string(hash),
		IsAdmin:  isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

// identityOf 由用户记录构造身份声明
func identityOf(user *models.User) models.Identity {
	return models.Identity{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}

// wantDeny 断言错误是指定原因的授权拒绝
func wantDeny(t *testing.T, err error, reason DenyReason) {
	t.Helper()

	if err == nil {
		t.Fatalf("期望拒绝 %s，实际没有错误", reason)
	}
	got, ok := DenyReasonOf(err)
	if !ok {
		t.Fatalf("期望拒绝 %s，实际是非拒绝错误: %v", reason, err)
	}
	if got != reason {
		t.Fatalf("期望拒绝原因 %s，实际 %s", reason, got)
	}
}
