package handler

import (
	chatbotRequest "PensionChat/internal/modules/chatbot/application/dto/request"
	"PensionChat/internal/modules/chatbot/application/service"
	"PensionChat/pkg/back"
	"PensionChat/pkg/xerr"
	"PensionChat/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type ChatbotHandler struct {
	svc service.ChatbotService
}

func NewChatbotHandler(svc service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{svc: svc}
}

// SendChat POST /chat/send 和 POST /chat/send/:sid
// 不带 sid 视为开启新会话，响应里带回分配的 sid。
func (h *ChatbotHandler) SendChat(c *gin.Context) {
	var req chatbotRequest.SendChatRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.SendChat(c.Request.Context(), c.Param("sid"), req.Question)
	back.Result(c, data, err)
}

// SendTerm GET /chat/send/:term 和 GET /chat/send/:term/:sid
func (h *ChatbotHandler) SendTerm(c *gin.Context) {
	term := c.Param("term")
	if term == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.SendTerm(c.Request.Context(), c.Param("sid"), term)
	back.Result(c, data, err)
}
