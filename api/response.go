package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"groupchat/middleware"
	"groupchat/models"
	"groupchat/services"
)

// envelope 统一响应格式 {status, message, data?}
type envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondOK 成功响应
func respondOK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, envelope{Status: true, Message: message, Data: data})
}

// respondCreated 创建成功响应
func respondCreated(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, envelope{Status: true, Message: message, Data: data})
}

// respondInvalid 请求参数校验失败
func respondInvalid(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, envelope{Status: false, Message: message})
}

// respondError 将服务层错误映射为HTTP响应
// 授权拒绝按原因映射到4xx；存储层错误一律500且不泄露细节
func respondError(ctx *gin.Context, err error) {
	if reason, ok := services.DenyReasonOf(err); ok {
		ctx.JSON(statusOf(reason), envelope{Status: false, Message: err.Error()})
		return
	}

	log.Printf("内部错误 [%s %s]: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	ctx.JSON(http.StatusInternalServerError, envelope{Status: false, Message: "Internal Server Error"})
}

// statusOf 拒绝原因到HTTP状态码的映射
// 未认证沿用403的历史约定
func statusOf(reason services.DenyReason) int {
	switch reason {
	case services.ReasonUnauthenticated:
		return http.StatusForbidden
	case services.ReasonNotFound:
		return http.StatusNotFound
	case services.ReasonForbidden:
		return http.StatusForbidden
	case services.ReasonConflict:
		return http.StatusConflict
	case services.ReasonInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// currentIdentity 从上下文取出JWT中间件写入的身份声明
func currentIdentity(ctx *gin.Context) (models.Identity, bool) {
	value, exists := ctx.Get(middleware.IdentityKey)
	if !exists {
		ctx.JSON(http.StatusForbidden, envelope{Status: false, Message: "Token missing"})
		return models.Identity{}, false
	}
	return value.(models.Identity), true
}
