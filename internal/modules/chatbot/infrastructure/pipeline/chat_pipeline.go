package pipeline

import (
	"context"
	"errors"
	"fmt"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/compose"
)

// ErrEmbedding 向量化服务调用失败（不可达、非 2xx 或响应畸形），对本次请求致命
var ErrEmbedding = errors.New("embedding service call failed")

// ErrCandidateNotFound 命中的 entryId 在语料库查不到对应答案。
// 说明向量库与语料库不一致——这是摄取任务要保证的不变式，检索路径直接失败并记错误日志。
var ErrCandidateNotFound = errors.New("candidate answer not found")

// Reranker 交叉编码重排能力（infrastructure/rerank 实现）
type Reranker interface {
	Rerank(ctx context.Context, question string, candidates []chatbot.AnswerRecord) ([]chatbot.AnswerRecord, error)
}

// Generator 回答生成能力（infrastructure/gms 实现）
type Generator interface {
	GenerateAnswer(ctx context.Context, userContent string) (string, error)
}

// ChatRequest 对话流水线的输入请求
type ChatRequest struct {
	Sid      string // 会话 ID（可空，不传则分配新会话）
	Question string // 用户问题（必填）
}

// ChatResult 对话流水线的输出结果
type ChatResult struct {
	Sid           string // 会话 ID（新会话时为新分配的）
	Answer        string // 最终回答文本
	QueryID       string // 本次查询唯一 ID（便于追踪回放）
	IsFallback    bool   // 是否走了兜底短路
	TotalHits     int    // 召回命中数（阈值过滤后）
	ReturnedCount int    // 重排后保留的候选数
	DurationMs    int64  // 全程耗时（毫秒）
	EmbeddingMs   int64  // 向量化耗时（毫秒）
	SearchMs      int64  // 全量扫描检索耗时（毫秒）
	RerankMs      int64  // 重排耗时（毫秒）
	LLMMs         int64  // 生成耗时（毫秒）
}

// Options 召回与上下文参数
type Options struct {
	Namespace      string  // 向量命名空间（默认 term）
	TopK           int     // 召回 Top-K（默认 10，范围 1-100）
	ScoreThreshold float64 // 相似度绝对下限（默认 0.25）
	HistoryLimit   int     // 生成上下文携带的最近会话轮数（默认 10）
}

// ChatPipeline 检索增强对话流水线（基于 Eino compose.Graph）。
//
// 阶段严格串行：Session → Embed → Recall → Resolve → Rerank → Compose →
// Persist，每一阶段依赖上一阶段的输出，没有内部并发扇出。
// 召回为空或重排为空时短路返回兜底话术且不落会话日志；
// 任一外部调用失败直接终止，流水线内不做重试。
type ChatPipeline struct {
	chatLogRepo repository.ChatLogRepository
	termRepo    repository.TermRepository
	vs          repository.VectorStore
	embedder    embedding.Embedder
	reranker    Reranker
	generator   Generator
	opts        Options
	r           compose.Runnable[*ChatRequest, *ChatResult]
}

// NewChatPipeline 创建对话流水线
func NewChatPipeline(
	chatLogRepo repository.ChatLogRepository,
	termRepo repository.TermRepository,
	vs repository.VectorStore,
	embedder embedding.Embedder,
	reranker Reranker,
	generator Generator,
	opts Options,
) (*ChatPipeline, error) {
	if chatLogRepo == nil || termRepo == nil || vs == nil || embedder == nil || reranker == nil || generator == nil {
		return nil, fmt.Errorf("required dependencies are nil")
	}
	if opts.Namespace == "" {
		opts.Namespace = "term"
	}
	opts.TopK = normalizeTopK(opts.TopK)
	if opts.ScoreThreshold <= 0 {
		opts.ScoreThreshold = 0.25
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}

	p := &ChatPipeline{
		chatLogRepo: chatLogRepo,
		termRepo:    termRepo,
		vs:          vs,
		embedder:    embedder,
		reranker:    reranker,
		generator:   generator,
		opts:        opts,
	}
	// 构建 Eino Graph
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Ask 执行一次端到端问答（封装 Eino Runnable.Invoke）
func (p *ChatPipeline) Ask(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request is nil")
	}
	if p.r == nil {
		return nil, fmt.Errorf("pipeline runnable is nil")
	}
	return p.r.Invoke(ctx, req)
}

// normalizeTopK 规范化 TopK 参数（默认 10，范围 1-100）
func normalizeTopK(topK int) int {
	if topK <= 0 {
		return 10
	}
	if topK > 100 {
		return 100
	}
	return topK
}
