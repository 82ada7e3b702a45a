package handler

import (
	"PensionChat/internal/modules/chatbot/application/service"
	"PensionChat/pkg/back"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	svc service.IngestService
}

func NewIngestHandler(svc service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// RebuildTermVectors POST /redis/update
// 全量重建术语向量（耗时随语料规模增长，同步执行）。
func (h *IngestHandler) RebuildTermVectors(c *gin.Context) {
	count, err := h.svc.RebuildTermVectors(c.Request.Context())
	back.Result(c, gin.H{"ingested": count}, err)
}
