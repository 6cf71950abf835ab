package services

import (
	"testing"
	"time"

	"groupchat/models"
)

func TestPostMessageMemberOnly(t *testing.T) {
	db := newTestDB(t)
	_, _, groups, messages := newTestServices(db)

	owner := createTestUser(t, db, "Alice", "alice@example.com", false)
	outsider := createTestUser(t, db, "Carol", "carol@example.com", false)

	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	// 非成员发送被拒绝，且不产生任何消息记录
	_, err = messages.PostMessage(identityOf(outsider), group.ID, "hello")
	wantDeny(t, err, ReasonForbidden)

	var count int64
	db.Model(&models.Message{}).Where("group_id = ?", group.ID).Count(&count)
	if count != 0 {
		t.Fatalf("拒绝的发送不应写入消息，实际 %d 条", count)
	}

	// 成员发送成功
	msg, err := messages.PostMessage(identityOf(owner), group.ID, "hello")
	if err != nil {
		t.Fatalf("发送消息失败: %v", err)
	}
	if msg.Content != "hello" || msg.UserID != owner.ID || msg.GroupID != group.ID {
		t.Fatalf("消息字段不符: %+v", msg)
	}
	if msg.CreatedAt.IsZero() {
		t.Fatalf("消息应带服务端时间戳")
	}
}

func TestGetGroupMessagesMemberOnly(t *testing.T) {
	db := newTestDB(t)
	_, _, groups, messages := newTestServices(db)

	owner := createTestUser(t, db, "Alice", "alice@example.com", false)
	member := createTestUser(t, db, "Bob", "bob@example.com", false)
	outsider := createTestUser(t, db, "Carol", "carol@example.com", false)

	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	if err := groups.AddMember(identityOf(owner), group.ID, member.ID); err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}

	_, err = messages.GetGroupMessages(identityOf(outsider), group.ID)
	wantDeny(t, err, ReasonForbidden)

	if _, err := messages.PostMessage(identityOf(owner), group.ID, "hello"); err != nil {
		t.Fatalf("发送消息失败: %v", err)
	}

	// 成员可以读到消息，内容和作者完整往返
	list, err := messages.GetGroupMessages(identityOf(member), group.ID)
	if err != nil {
		t.Fatalf("获取消息失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望1条消息，实际 %d", len(list))
	}
	if list[0].Content != "hello" || list[0].Author.ID != owner.ID || list[0].Author.Name != "Alice" {
		t.Fatalf("消息往返不一致: %+v", list[0])
	}
}

func TestGetGroupMessagesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	_, _, groups, messages := newTestServices(db)

	owner := createTestUser(t, db, "Alice", "alice@example.com", false)
	group, err := groups.CreateGroup(identityOf(owner), "Team")
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	// 直接插入时间错开的消息，绕过发送路径的即时时间戳
	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		msg := models.Message{
			Content:   content,
			UserID:    owner.ID,
			GroupID:   group.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("插入消息失败: %v", err)
		}
	}

	list, err := messages.GetGroupMessages(identityOf(owner), group.ID)
	if err != nil {
		t.Fatalf("获取消息失败: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望3条消息，实际 %d", len(list))
	}

	// 服务端契约：最新在前
	want := []string{"third", "second", "first"}
	for i, w := range want {
		if list[i].Content != w {
			t.Fatalf("第%d条期望 %q，实际 %q", i, w, list[i].Content)
		}
	}
}
