package repository

import (
	"context"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
)

// ChatLogRepository 会话日志仓储（append-only）
type ChatLogRepository interface {
	// SelectLatestBySid 取最近 limit 条问答，按 created_at 倒序
	SelectLatestBySid(ctx context.Context, sid string, limit int) ([]chatbot.ChatLog, error)
	// Insert 持久化一轮问答
	Insert(ctx context.Context, sid, question, answer string) error
	// CountBySid 统计某会话的记录数（sid 去重生成用）
	CountBySid(ctx context.Context, sid string) (int64, error)
}
