package api

import (
	"github.com/gin-gonic/gin"

	"groupchat/models"
	"groupchat/services"
)

// MessageController 消息控制器
type MessageController struct {
	MessageService *services.MessageService
}

// NewMessageController 创建消息控制器
func NewMessageController(messageService *services.MessageService) *MessageController {
	return &MessageController{
		MessageService: messageService,
	}
}

// GetGroupMessages 获取群组全部消息（仅成员），最新在前
func (c *MessageController) GetGroupMessages(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}

	messages, err := c.MessageService.GetGroupMessages(caller, groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondOK(ctx, "Messages retrieved successfully", messages)
}

// PostMessage 向群组发送消息（仅成员）
func (c *MessageController) PostMessage(ctx *gin.Context) {
	caller, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	groupID, ok := parseIDParam(ctx, "gid")
	if !ok {
		return
	}

	var req models.PostMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondInvalid(ctx, "Content is required")
		return
	}

	msg, err := c.MessageService.PostMessage(caller, groupID, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	respondCreated(ctx, "Message posted successfully", msg)
}
