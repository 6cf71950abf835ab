package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"groupchat/models"
	"groupchat/services"
)

// UserController 用户控制器
type UserController struct {
	UserService *services.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// GetAllUsers 获取所有用户
func (c *UserController) GetAllUsers(ctx *gin.Context) {
	users, err := c.UserService.GetAllUsers()
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Returning users", users)
}

// UpdateUser 更新用户信息
func (c *UserController) UpdateUser(ctx *gin.Context) {
	if _, ok := currentIdentity(ctx); !ok {
		return
	}

	// 获取用户ID参数
	userIDStr := ctx.Param("id")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		respondInvalid(ctx, "Invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "You must specify the name, email or password")
		return
	}

	// 更新用户
	if _, err := c.UserService.UpdateUser(uint(userID), req); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "User updated", nil)
}

// UpdatePassword 修改当前用户密码
func (c *UserController) UpdatePassword(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	var req models.UpdatePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "You must specify the new password")
		return
	}

	if err := c.UserService.UpdatePassword(caller.ID, req.Password); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Password updated successfully", nil)
}

// DeleteUser 删除用户（仅管理员）
func (c *UserController) DeleteUser(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	// 获取用户ID参数
	userIDStr := ctx.Param("id")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		respondInvalid(ctx, "Invalid user id")
		return
	}

	if err := c.UserService.DeleteUser(caller, uint(userID)); err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "User deleted", nil)
}
