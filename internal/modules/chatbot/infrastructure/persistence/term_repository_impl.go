package persistence

import (
	"context"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"

	"gorm.io/gorm"
)

type termRepositoryImpl struct {
	db *gorm.DB
}

func NewTermRepository(db *gorm.DB) repository.TermRepository {
	return &termRepositoryImpl{db: db}
}

func (r *termRepositoryImpl) SelectAllTerms(ctx context.Context) ([]chatbot.TermDefinition, error) {
	var terms []chatbot.TermDefinition
	if err := r.db.WithContext(ctx).Find(&terms).Error; err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *termRepositoryImpl) SelectTermByID(ctx context.Context, termID int64) (*chatbot.TermDefinition, error) {
	var term chatbot.TermDefinition
	err := r.db.WithContext(ctx).Where("id = ?", termID).Take(&term).Error
	if err == nil {
		return &term, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, err
}

func (r *termRepositoryImpl) SelectAllChatDummy(ctx context.Context) ([]chatbot.ChatDummy, error) {
	var rows []chatbot.ChatDummy
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *termRepositoryImpl) SelectAnswerByID(ctx context.Context, id int64) (*chatbot.AnswerRecord, error) {
	var row chatbot.ChatDummy
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err == nil {
		return &chatbot.AnswerRecord{TermId: row.TermId, Answer: row.Answer}, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, err
}
