package pipeline

import (
	"context"
	"fmt"
	"testing"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- 测试替身 ----------

type fakeChatLogRepo struct {
	logs     map[string][]chatbot.ChatLog
	occupied map[string]bool // 预占的 sid（碰撞重试用）
}

func newFakeChatLogRepo() *fakeChatLogRepo {
	return &fakeChatLogRepo{logs: make(map[string][]chatbot.ChatLog), occupied: make(map[string]bool)}
}

func (f *fakeChatLogRepo) SelectLatestBySid(_ context.Context, sid string, limit int) ([]chatbot.ChatLog, error) {
	all := f.logs[sid]
	// 新在前
	out := make([]chatbot.ChatLog, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeChatLogRepo) Insert(_ context.Context, sid, question, answer string) error {
	f.logs[sid] = append(f.logs[sid], chatbot.ChatLog{Sid: sid, Question: question, Answer: answer})
	return nil
}

func (f *fakeChatLogRepo) CountBySid(_ context.Context, sid string) (int64, error) {
	if f.occupied[sid] {
		return 1, nil
	}
	return int64(len(f.logs[sid])), nil
}

type fakeTermRepo struct {
	terms   map[int64]chatbot.TermDefinition
	answers map[int64]chatbot.AnswerRecord
}

func newFakeTermRepo() *fakeTermRepo {
	return &fakeTermRepo{terms: make(map[int64]chatbot.TermDefinition), answers: make(map[int64]chatbot.AnswerRecord)}
}

func (f *fakeTermRepo) SelectAllTerms(_ context.Context) ([]chatbot.TermDefinition, error) {
	out := make([]chatbot.TermDefinition, 0, len(f.terms))
	for _, t := range f.terms {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTermRepo) SelectTermByID(_ context.Context, termID int64) (*chatbot.TermDefinition, error) {
	t, ok := f.terms[termID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTermRepo) SelectAllChatDummy(_ context.Context) ([]chatbot.ChatDummy, error) {
	return nil, nil
}

func (f *fakeTermRepo) SelectAnswerByID(_ context.Context, id int64) (*chatbot.AnswerRecord, error) {
	a, ok := f.answers[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type fakeVectorStore struct {
	entries map[string][][]float32
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{entries: make(map[string][][]float32)}
}

func (f *fakeVectorStore) Append(_ context.Context, key repository.VectorKey, vector []float32) error {
	k := key.String()
	f.entries[k] = append(f.entries[k], vector)
	return nil
}

func (f *fakeVectorStore) ScanAll(_ context.Context, namespace string, fn func(key repository.VectorKey, vector []float32) error) error {
	for raw, vectors := range f.entries {
		parsed, ok := repository.ParseVectorKey(raw)
		if !ok || parsed.Namespace != namespace {
			continue
		}
		for _, v := range vectors {
			if err := fn(parsed, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *fakeVectorStore) List(_ context.Context, key repository.VectorKey) ([][]float32, error) {
	return f.entries[key.String()], nil
}

// fixedEmbedder 对任意输入返回同一向量，方便让存储向量命中或落空
type fixedEmbedder struct {
	vec []float64
	err error
}

func (f *fixedEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeReranker struct {
	result []chatbot.AnswerRecord
	err    error
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, candidates []chatbot.AnswerRecord) ([]chatbot.AnswerRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return candidates, nil
}

type fakeGenerator struct {
	answer      string
	err         error
	gotContent  string
	invocations int
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, userContent string) (string, error) {
	f.invocations++
	f.gotContent = userContent
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// ---------- 搭建 ----------

type pipelineFixture struct {
	chatLogRepo *fakeChatLogRepo
	termRepo    *fakeTermRepo
	vs          *fakeVectorStore
	reranker    *fakeReranker
	generator   *fakeGenerator
}

func newFixture(t *testing.T) (*ChatPipeline, *pipelineFixture) {
	t.Helper()
	fx := &pipelineFixture{
		chatLogRepo: newFakeChatLogRepo(),
		termRepo:    newFakeTermRepo(),
		vs:          newFakeVectorStore(),
		reranker:    &fakeReranker{},
		generator:   &fakeGenerator{answer: "생성된 답변이에요!"},
	}
	p, err := NewChatPipeline(fx.chatLogRepo, fx.termRepo, fx.vs, &fixedEmbedder{vec: []float64{1, 0}}, fx.reranker, fx.generator, Options{})
	require.NoError(t, err)
	return p, fx
}

// seedCorpus 写入一条可命中的语料：向量、候选答案、术语定义
func seedCorpus(t *testing.T, fx *pipelineFixture) {
	t.Helper()
	key := repository.VectorKey{Namespace: "term", TermID: 1, EntryID: 100, Role: repository.RoleQuestion}
	require.NoError(t, fx.vs.Append(context.Background(), key, []float32{1, 0}))
	fx.termRepo.answers[100] = chatbot.AnswerRecord{TermId: 1, Answer: "IRP는 개인형 퇴직연금이에요"}
	fx.termRepo.terms[1] = chatbot.TermDefinition{Id: 1, Term: "IRP", Desc: "개인형 퇴직연금"}
}

// ---------- 用例 ----------

func TestChatPipeline_HappyPath(t *testing.T) {
	p, fx := newFixture(t)
	seedCorpus(t, fx)

	res, err := p.Ask(context.Background(), &ChatRequest{Question: "IRP가 뭐예요?"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Sid)
	assert.Equal(t, "생성된 답변이에요!", res.Answer)
	assert.False(t, res.IsFallback)
	assert.Equal(t, 1, res.TotalHits)
	assert.Equal(t, 1, res.ReturnedCount)

	// 问答进了会话日志
	logs := fx.chatLogRepo.logs[res.Sid]
	require.Len(t, logs, 1)
	assert.Equal(t, "IRP가 뭐예요?", logs[0].Question)
	assert.Equal(t, "생성된 답변이에요!", logs[0].Answer)

	// Prompt 里带上了术语定义和候选答案
	assert.Contains(t, fx.generator.gotContent, "Word: IRP")
	assert.Contains(t, fx.generator.gotContent, "IRP는 개인형 퇴직연금이에요")
}

func TestChatPipeline_ReusesSidAndHistory(t *testing.T) {
	p, fx := newFixture(t)
	seedCorpus(t, fx)
	require.NoError(t, fx.chatLogRepo.Insert(context.Background(), "sid-1", "이전 질문", "이전 답변"))

	res, err := p.Ask(context.Background(), &ChatRequest{Sid: "sid-1", Question: "IRP가 뭐예요?"})
	require.NoError(t, err)

	assert.Equal(t, "sid-1", res.Sid)
	assert.Contains(t, fx.generator.gotContent, "Q. 이전 질문")
	assert.Len(t, fx.chatLogRepo.logs["sid-1"], 2)
}

func TestChatPipeline_EmptyRecallFallsBack(t *testing.T) {
	p, fx := newFixture(t)
	// 不放任何向量

	res, err := p.Ask(context.Background(), &ChatRequest{Question: "날씨 어때요?"})
	require.NoError(t, err)

	assert.True(t, res.IsFallback)
	assert.Equal(t, chatbot.FallbackAnswer, res.Answer)
	assert.Equal(t, 0, res.TotalHits)
	// 兜底不落日志、不调用生成
	assert.Empty(t, fx.chatLogRepo.logs[res.Sid])
	assert.Zero(t, fx.generator.invocations)
}

func TestChatPipeline_BelowThresholdFallsBack(t *testing.T) {
	p, fx := newFixture(t)
	// 与查询向量 (1,0) 正交，相似度 0 低于阈值
	key := repository.VectorKey{Namespace: "term", TermID: 1, EntryID: 100, Role: repository.RoleQuestion}
	require.NoError(t, fx.vs.Append(context.Background(), key, []float32{0, 1}))

	res, err := p.Ask(context.Background(), &ChatRequest{Question: "질문"})
	require.NoError(t, err)
	assert.True(t, res.IsFallback)
	assert.Equal(t, chatbot.FallbackAnswer, res.Answer)
}

func TestChatPipeline_EmptyRerankFallsBack(t *testing.T) {
	p, fx := newFixture(t)
	seedCorpus(t, fx)
	fx.reranker.result = []chatbot.AnswerRecord{}

	res, err := p.Ask(context.Background(), &ChatRequest{Question: "IRP가 뭐예요?"})
	require.NoError(t, err)

	assert.True(t, res.IsFallback)
	assert.Equal(t, chatbot.FallbackAnswer, res.Answer)
	assert.Equal(t, 1, res.TotalHits)
	assert.Equal(t, 0, res.ReturnedCount)
	assert.Empty(t, fx.chatLogRepo.logs[res.Sid])
	assert.Zero(t, fx.generator.invocations)
}

func TestChatPipeline_FallbackShapedAnswerNotPersisted(t *testing.T) {
	p, fx := newFixture(t)
	seedCorpus(t, fx)
	// 模型判定离题，返回带标点差异的兜底话术
	fx.generator.answer = "잘 모르겠어요... 조금 더 자세히 질문해주세요!!!"

	res, err := p.Ask(context.Background(), &ChatRequest{Question: "오늘 점심 뭐 먹지?"})
	require.NoError(t, err)

	// 答案原样返回，但不进会话日志
	assert.Equal(t, "잘 모르겠어요... 조금 더 자세히 질문해주세요!!!", res.Answer)
	assert.Empty(t, fx.chatLogRepo.logs[res.Sid])
}

func TestChatPipeline_CandidateMissIsFatal(t *testing.T) {
	p, fx := newFixture(t)
	key := repository.VectorKey{Namespace: "term", TermID: 1, EntryID: 100, Role: repository.RoleQuestion}
	require.NoError(t, fx.vs.Append(context.Background(), key, []float32{1, 0}))
	// 故意不放 entryId=100 的候选答案

	_, err := p.Ask(context.Background(), &ChatRequest{Question: "IRP가 뭐예요?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestChatPipeline_EmbeddingFailureIsFatal(t *testing.T) {
	fx := &pipelineFixture{
		chatLogRepo: newFakeChatLogRepo(),
		termRepo:    newFakeTermRepo(),
		vs:          newFakeVectorStore(),
		reranker:    &fakeReranker{},
		generator:   &fakeGenerator{answer: "답변"},
	}
	p, err := NewChatPipeline(fx.chatLogRepo, fx.termRepo, fx.vs, &fixedEmbedder{err: fmt.Errorf("boom")}, fx.reranker, fx.generator, Options{})
	require.NoError(t, err)

	_, err = p.Ask(context.Background(), &ChatRequest{Question: "질문"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbedding)
}

func TestChatPipeline_EmptyQuestionRejected(t *testing.T) {
	p, _ := newFixture(t)
	_, err := p.Ask(context.Background(), &ChatRequest{Question: "   "})
	assert.Error(t, err)
}

func TestChatPipeline_SidCollisionRetries(t *testing.T) {
	p, fx := newFixture(t)

	// 预占若干 sid 不可能全部碰撞；这里验证分配出的 sid 一定未被占用
	res1, err := p.Ask(context.Background(), &ChatRequest{Question: "질문"})
	require.NoError(t, err)
	fx.chatLogRepo.occupied[res1.Sid] = true

	res2, err := p.Ask(context.Background(), &ChatRequest{Question: "질문"})
	require.NoError(t, err)
	assert.NotEqual(t, res1.Sid, res2.Sid)
}

func TestNormalizeTopK(t *testing.T) {
	assert.Equal(t, 10, normalizeTopK(0))
	assert.Equal(t, 10, normalizeTopK(-5))
	assert.Equal(t, 1, normalizeTopK(1))
	assert.Equal(t, 100, normalizeTopK(100))
	assert.Equal(t, 100, normalizeTopK(500))
}
