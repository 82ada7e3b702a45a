package handler

import (
	"PensionChat/internal/modules/chatbot/application/service"
	"PensionChat/pkg/back"

	"github.com/gin-gonic/gin"
)

type TermHandler struct {
	svc service.TermService
}

func NewTermHandler(svc service.TermService) *TermHandler {
	return &TermHandler{svc: svc}
}

// GetTermList GET /term/list
func (h *TermHandler) GetTermList(c *gin.Context) {
	data, err := h.svc.GetTermList(c.Request.Context())
	back.Result(c, data, err)
}
