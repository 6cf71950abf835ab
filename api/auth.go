package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"groupchat/middleware"
	"groupchat/models"
	"groupchat/services"
)

// AuthController 认证控制器
type AuthController struct {
	UserService *services.UserService
}

// NewAuthController 创建认证控制器
func NewAuthController(userService *services.UserService) *AuthController {
	return &AuthController{
		UserService: userService,
	}
}

// Register 用户注册
func (c *AuthController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "You must specify the name, email and password")
		return
	}

	// 注册用户
	_, err := c.UserService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondCreated(ctx, "User registered successfully", nil)
}

// Login 用户登录，校验通过后签发令牌
func (c *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "You must specify the email and password")
		return
	}

	// 验证用户
	user, err := c.UserService.Login(req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	// 生成JWT令牌
	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Login/Password ok",
		"token":   token,
	})
}
