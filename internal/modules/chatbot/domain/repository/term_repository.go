package repository

import (
	"context"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
)

// TermRepository 术语词典与问答语料仓储
type TermRepository interface {
	// SelectAllTerms 列出全部术语定义
	SelectAllTerms(ctx context.Context) ([]chatbot.TermDefinition, error)
	// SelectTermByID 按 termId 查询术语定义，不存在返回 nil
	SelectTermByID(ctx context.Context, termID int64) (*chatbot.TermDefinition, error)
	// SelectAllChatDummy 列出全部问答语料（向量摄取的来源）
	SelectAllChatDummy(ctx context.Context) ([]chatbot.ChatDummy, error)
	// SelectAnswerByID 按语料 id 解析候选答案，不存在返回 nil
	SelectAnswerByID(ctx context.Context, id int64) (*chatbot.AnswerRecord, error)
}
