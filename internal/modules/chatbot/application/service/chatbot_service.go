package service

import (
	"context"
	"strings"

	chatbotRespond "PensionChat/internal/modules/chatbot/application/dto/respond"
	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"
	"PensionChat/internal/modules/chatbot/infrastructure/pipeline"
	"PensionChat/pkg/util"
	"PensionChat/pkg/xerr"
	"PensionChat/pkg/zlog"

	"go.uber.org/zap"
)

type ChatbotService interface {
	SendChat(ctx context.Context, sid string, question string) (*chatbotRespond.ChatRespond, error)
	SendTerm(ctx context.Context, sid string, term string) (*chatbotRespond.ChatRespond, error)
}

type chatbotServiceImpl struct {
	pipeline    *pipeline.ChatPipeline
	chatLogRepo repository.ChatLogRepository
}

func NewChatbotService(p *pipeline.ChatPipeline, chatLogRepo repository.ChatLogRepository) ChatbotService {
	return &chatbotServiceImpl{
		pipeline:    p,
		chatLogRepo: chatLogRepo,
	}
}

// SendChat 走完整检索增强流水线回答用户问题
func (s *chatbotServiceImpl) SendChat(ctx context.Context, sid string, question string) (*chatbotRespond.ChatRespond, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	res, err := s.pipeline.Ask(ctx, &pipeline.ChatRequest{Sid: sid, Question: question})
	if err != nil {
		zlog.Error("chat pipeline error", zap.String("sid", sid), zap.Error(err))
		return nil, xerr.ErrChatPipeline
	}
	return &chatbotRespond.ChatRespond{Sid: res.Sid, Answer: res.Answer}, nil
}

// SendTerm 术语问答：先查速答表，命中直接返回固定解释并落会话日志；
// 未命中则把术语当作普通问题走完整流水线。
func (s *chatbotServiceImpl) SendTerm(ctx context.Context, sid string, term string) (*chatbotRespond.ChatRespond, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	answer, ok := chatbot.LookupQuickTerm(term)
	if !ok {
		return s.SendChat(ctx, sid, term)
	}

	sid = strings.TrimSpace(sid)
	if sid == "" {
		generated, err := s.newSid(ctx)
		if err != nil {
			zlog.Error("generate sid failed", zap.Error(err))
			return nil, xerr.ErrServerError
		}
		sid = generated
	}
	// 速答和正常回答一样进会话日志，保持后续对话上下文连续
	if err := s.chatLogRepo.Insert(ctx, sid, term, answer); err != nil {
		zlog.Error("insert chat log failed", zap.String("sid", sid), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &chatbotRespond.ChatRespond{Sid: sid, Answer: answer}, nil
}

// newSid 生成未被占用的会话 ID（存在即重新生成）
func (s *chatbotServiceImpl) newSid(ctx context.Context) (string, error) {
	for {
		sid := util.GenerateUUID()
		count, err := s.chatLogRepo.CountBySid(ctx, sid)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return sid, nil
		}
	}
}
