package services

import (
	"testing"

	"groupchat/models"
)

func TestRequireOwner(t *testing.T) {
	db := newTestDB(t)
	authz, _, groups, _ := newTestServices(db)

	owner := createTestUser(t, db, "Owner", "owner@example.com", false)
	other := createTestUser(t, db, "Other", "other@example.com", false)

	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	// 群组不存在
	_, err = authz.RequireOwner(identityOf(owner), group.ID+100)
	wantDeny(t, err, ReasonNotFound)

	// 非所有者
	_, err = authz.RequireOwner(identityOf(other), group.ID)
	wantDeny(t, err, ReasonForbidden)

	// 所有者
	got, err := authz.RequireOwner(identityOf(owner), group.ID)
	if err != nil {
		t.Fatalf("所有者应被允许: %v", err)
	}
	if got.ID != group.ID {
		t.Fatalf("期望群组ID %d，实际 %d", group.ID, got.ID)
	}
}

func TestRequireMember(t *testing.T) {
	db := newTestDB(t)
	authz, _, groups, _ := newTestServices(db)

	owner := createTestUser(t, db, "Owner", "owner@example.com", false)
	member := createTestUser(t, db, "Member", "member@example.com", false)
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com", false)

	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	if err := groups.AddMember(identityOf(owner), group.ID, member.ID); err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}

	if err := authz.RequireMember(identityOf(member), group.ID); err != nil {
		t.Fatalf("成员应被允许: %v", err)
	}
	wantDeny(t, authz.RequireMember(identityOf(outsider), group.ID), ReasonForbidden)

	// 群组不存在对非成员同样是forbidden，不泄露群组是否存在
	wantDeny(t, authz.RequireMember(identityOf(outsider), group.ID+100), ReasonForbidden)
}

func TestRequireMemberAccess(t *testing.T) {
	db := newTestDB(t)
	authz, _, groups, _ := newTestServices(db)

	owner := createTestUser(t, db, "Owner", "owner@example.com", false)
	member := createTestUser(t, db, "Member", "member@example.com", false)
	outsider := createTestUser(t, db, "Outsider", "outsider@example.com", false)
	admin := createTestUser(t, db, "Admin", "admin@example.com", true)

	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	if err := groups.AddMember(identityOf(owner), group.ID, member.ID); err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}

	cases := []struct {
		name   string
		caller models.Identity
		reason DenyReason // 空表示允许
	}{
		{"owner", identityOf(owner), ""},
		{"member", identityOf(member), ""},
		{"admin", identityOf(admin), ""},
		{"outsider", identityOf(outsider), ReasonForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.RequireMemberAccess(tc.caller, group.ID)
			if tc.reason == "" {
				if err != nil {
					t.Fatalf("期望允许，实际: %v", err)
				}
				return
			}
			wantDeny(t, err, tc.reason)
		})
	}

	// 群组不存在优先返回not_found
	wantDeny(t, authz.RequireMemberAccess(identityOf(admin), group.ID+100), ReasonNotFound)
}

func TestAdminFlagReadFromStore(t *testing.T) {
	db := newTestDB(t)
	authz, _, _, _ := newTestServices(db)

	admin := createTestUser(t, db, "Admin", "admin@example.com", true)

	// 令牌中声明非管理员，但数据库为准
	staleClaims := identityOf(admin)
	staleClaims.IsAdmin = false
	if err := authz.RequireAdmin(staleClaims); err != nil {
		t.Fatalf("数据库中的管理员应被允许: %v", err)
	}

	// 撤销管理员权限后，旧令牌立即失效
	if err := db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", false).Error; err != nil {
		t.Fatalf("更新管理员标志失败: %v", err)
	}
	tokenClaims := identityOf(admin)
	tokenClaims.IsAdmin = true
	wantDeny(t, authz.RequireAdmin(tokenClaims), ReasonForbidden)
}
