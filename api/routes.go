package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"groupchat/services"
)

// RegisterRoutes 注册API路由
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, events *services.EventService) {
	// 创建服务
	authzService := services.NewAuthzService(db)
	userService := services.NewUserService(db, rdb, authzService, events)
	groupService := services.NewGroupService(db, authzService, events)
	messageService := services.NewMessageService(db, authzService, events)

	// 创建控制器
	authController := NewAuthController(userService)
	userController := NewUserController(userService)
	groupController := NewGroupController(groupService)
	messageController := NewMessageController(messageService)
	monitorController := NewMonitorController(db, events)

	// 公开路由（JWT中间件按路径跳过认证）
	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)

	// 需要认证的路由
	api := r.Group("/api")
	{
		// 用户相关
		api.GET("/users", userController.GetAllUsers)
		api.PUT("/users/:id", userController.UpdateUser)
		api.DELETE("/users/:id", userController.DeleteUser)
		api.PUT("/password", userController.UpdatePassword)

		// 群组相关
		api.GET("/mygroups", groupController.GetMyGroups)
		api.POST("/mygroups", groupController.CreateGroup)
		api.GET("/mygroups/:gid", groupController.GetGroupMembers)
		api.DELETE("/mygroups/:gid", groupController.DeleteGroup)
		api.POST("/mygroups/:gid/:uid", groupController.AddMember)
		api.DELETE("/mygroups/:gid/:uid", groupController.RemoveMember)
		api.GET("/groupsmember", groupController.GetMemberGroups)

		// 消息相关
		api.GET("/messages/:gid", messageController.GetGroupMessages)
		api.POST("/messages/:gid", messageController.PostMessage)

		// 监控相关
		api.GET("/monitor/system", monitorController.GetSystemStatus)
	}

	// 未匹配的路由
	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, envelope{Status: false, Message: "Endpoint Not Found"})
	})
}
