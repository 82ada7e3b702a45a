package service

import (
	"context"

	chatbotRespond "PensionChat/internal/modules/chatbot/application/dto/respond"
	"PensionChat/internal/modules/chatbot/domain/repository"
	"PensionChat/pkg/xerr"
	"PensionChat/pkg/zlog"

	"go.uber.org/zap"
)

type TermService interface {
	GetTermList(ctx context.Context) ([]chatbotRespond.TermItem, error)
}

type termServiceImpl struct {
	termRepo repository.TermRepository
}

func NewTermService(termRepo repository.TermRepository) TermService {
	return &termServiceImpl{termRepo: termRepo}
}

func (s *termServiceImpl) GetTermList(ctx context.Context) ([]chatbotRespond.TermItem, error) {
	terms, err := s.termRepo.SelectAllTerms(ctx)
	if err != nil {
		zlog.Error("select terms failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := make([]chatbotRespond.TermItem, 0, len(terms))
	for i := range terms {
		t := terms[i]
		out = append(out, chatbotRespond.TermItem{
			TermId: t.Id,
			Term:   t.Term,
			Desc:   t.Desc,
		})
	}
	return out, nil
}
