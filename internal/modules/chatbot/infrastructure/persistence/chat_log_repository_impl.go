package persistence

import (
	"context"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"

	"gorm.io/gorm"
)

type chatLogRepositoryImpl struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) repository.ChatLogRepository {
	return &chatLogRepositoryImpl{db: db}
}

func (r *chatLogRepositoryImpl) SelectLatestBySid(ctx context.Context, sid string, limit int) ([]chatbot.ChatLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var logs []chatbot.ChatLog
	err := r.db.WithContext(ctx).
		Where("sid = ?", sid).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *chatLogRepositoryImpl) Insert(ctx context.Context, sid, question, answer string) error {
	return r.db.WithContext(ctx).Create(&chatbot.ChatLog{
		Sid:      sid,
		Question: question,
		Answer:   answer,
	}).Error
}

func (r *chatLogRepositoryImpl) CountBySid(ctx context.Context, sid string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chatbot.ChatLog{}).
		Where("sid = ?", sid).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
