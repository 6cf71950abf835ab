package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"groupchat/models"
	"groupchat/services"
)

// GroupController 群组控制器
type GroupController struct {
	GroupService *services.GroupService
}

// NewGroupController 创建群组控制器
func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{
		GroupService: groupService,
	}
}

// parseIDParam 解析路径中的数字ID参数
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	idStr := ctx.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondInvalid(ctx, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// GetMyGroups 获取调用者拥有的群组
func (c *GroupController) GetMyGroups(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groups, err := c.GroupService.GetOwnedGroups(caller)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Groups retrieved successfully", groups)
}

// GetMemberGroups 获取调用者作为成员加入的群组
func (c *GroupController) GetMemberGroups(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groups, err := c.GroupService.GetMemberGroups(caller)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Groups retrieved successfully", groups)
}

// CreateGroup 创建群组，调用者成为所有者
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "Group name is required")
		return
	}

	group, err := c.GroupService.CreateGroup(caller, req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondCreated(ctx, "Group created successfully", group)
}

// DeleteGroup 删除群组（仅所有者）
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}

	if err := c.GroupService.DeleteGroup(caller, groupID); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Group deleted successfully", nil)
}

// GetGroupMembers 获取群组成员列表（管理员/所有者/成员）
func (c *GroupController) GetGroupMembers(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}

	members, err := c.GroupService.GetGroupMembers(caller, groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Group members retrieved successfully", members)
}

// AddMember 添加群组成员（仅所有者）
func (c *GroupController) AddMember(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}
	targetUserID, ok := parseIDParam(ctx, "uid")
	if !ok {
		return
	}

	if err := c.GroupService.AddMember(caller, groupID, targetUserID); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "User added to group successfully", nil)
}

// RemoveMember 移除群组成员（仅所有者）
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}
	targetUserID, ok := parseIDParam(ctx, "uid")
	if !ok {
		return
	}

	if err := c.GroupService.RemoveMember(caller, groupID, targetUserID); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "User removed from group successfully", nil)
}
