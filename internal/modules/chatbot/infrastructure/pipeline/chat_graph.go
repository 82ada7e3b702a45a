package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
	"PensionChat/internal/modules/chatbot/domain/repository"
	"PensionChat/internal/modules/chatbot/infrastructure/gms"
	"PensionChat/internal/modules/chatbot/infrastructure/vectordb"
	"PensionChat/pkg/util"
	"PensionChat/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"
)

// chatState 对话流水线的中间状态（在节点间传递）
type chatState struct {
	Req         *ChatRequest
	Sid         string                          // 会话 ID（可能是新分配的）
	IsNewSid    bool                            // 是否为本次新分配
	History     []chatbot.ChatLog               // 最近会话记录（新在前）
	QueryVec    []float32                       // 问题向量
	Hits        []repository.SearchHit          // 召回命中
	Candidates  []chatbot.AnswerRecord          // entryId 解析出的候选答案
	Accurate    []chatbot.AnswerRecord          // 重排后保留的候选
	TermMap     map[int64]chatbot.TermDefinition // 去重后的术语定义
	Answer      string                          // 最终回答
	Fallback    bool                            // 兜底短路标记
	QueryID     string
	Start       time.Time
	EmbeddingMs int64
	SearchMs    int64
	RerankMs    int64
	LLMMs       int64
	Err         error
}

// buildGraph 构建对话流水线的 Eino Graph
//
// 节点顺序：Session → Embed → Recall → Resolve → Rerank → Compose → Persist → BuildResult
func (p *ChatPipeline) buildGraph(ctx context.Context) (compose.Runnable[*ChatRequest, *ChatResult], error) {
	const (
		Session     = "Session"
		Embed       = "Embed"
		Recall      = "Recall"
		Resolve     = "Resolve"
		Rerank      = "Rerank"
		Compose     = "Compose"
		Persist     = "Persist"
		BuildResult = "BuildResult"
	)
	g := compose.NewGraph[*ChatRequest, *ChatResult]()
	// 添加节点
	_ = g.AddLambdaNode(Session, compose.InvokableLambdaWithOption(p.sessionNode), compose.WithNodeName(Session))
	_ = g.AddLambdaNode(Embed, compose.InvokableLambdaWithOption(p.embedNode), compose.WithNodeName(Embed))
	_ = g.AddLambdaNode(Recall, compose.InvokableLambdaWithOption(p.recallNode), compose.WithNodeName(Recall))
	_ = g.AddLambdaNode(Resolve, compose.InvokableLambdaWithOption(p.resolveNode), compose.WithNodeName(Resolve))
	_ = g.AddLambdaNode(Rerank, compose.InvokableLambdaWithOption(p.rerankNode), compose.WithNodeName(Rerank))
	_ = g.AddLambdaNode(Compose, compose.InvokableLambdaWithOption(p.composeNode), compose.WithNodeName(Compose))
	_ = g.AddLambdaNode(Persist, compose.InvokableLambdaWithOption(p.persistNode), compose.WithNodeName(Persist))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	// 添加边（定义节点顺序）
	_ = g.AddEdge(compose.START, Session)
	_ = g.AddEdge(Session, Embed)
	_ = g.AddEdge(Embed, Recall)
	_ = g.AddEdge(Recall, Resolve)
	_ = g.AddEdge(Resolve, Rerank)
	_ = g.AddEdge(Rerank, Compose)
	_ = g.AddEdge(Compose, Persist)
	_ = g.AddEdge(Persist, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	// 编译为 Runnable
	return g.Compile(ctx, compose.WithGraphName("ChatPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// sessionNode 节点 1：校验请求、分配/复用会话 ID、加载最近会话记录
func (p *ChatPipeline) sessionNode(ctx context.Context, req *ChatRequest, _ ...any) (*chatState, error) {
	st := &chatState{
		Req:     req,
		Start:   time.Now(),
		QueryID: fmt.Sprintf("q_%s_%d", util.GenerateShortUUID(), time.Now().UnixNano()),
	}
	if req == nil {
		st.Err = fmt.Errorf("chat request is nil")
		return st, nil
	}
	question := strings.TrimSpace(req.Question)
	req.Question = question
	if question == "" {
		st.Err = fmt.Errorf("missing question")
		return st, nil
	}

	sid := strings.TrimSpace(req.Sid)
	if sid == "" {
		// 首轮对话：分配新会话 ID。碰撞概率趋近于零，但契约上必须
		// 以重新生成应对，而不是报错。
		generated, err := p.generateSid(ctx)
		if err != nil {
			st.Err = err
			return st, nil
		}
		sid = generated
		st.IsNewSid = true
	}
	st.Sid = sid

	history, err := p.chatLogRepo.SelectLatestBySid(ctx, sid, p.opts.HistoryLimit)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.History = history
	return st, nil
}

// generateSid 生成未被占用的会话 ID（存在即重新生成）
func (p *ChatPipeline) generateSid(ctx context.Context) (string, error) {
	for {
		sid := util.GenerateUUID()
		count, err := p.chatLogRepo.CountBySid(ctx, sid)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return sid, nil
		}
	}
}

// embedNode 节点 2：将用户问题向量化
func (p *ChatPipeline) embedNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	embStart := time.Now()
	vecs, err := p.embedder.EmbedStrings(ctx, []string{st.Req.Question})
	if err != nil {
		st.Err = fmt.Errorf("%w: %v", ErrEmbedding, err)
		return st, nil
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		st.Err = fmt.Errorf("%w: empty embedding result", ErrEmbedding)
		return st, nil
	}
	vec64 := vecs[0]
	vec32 := make([]float32, len(vec64))
	for i := range vec64 {
		vec32[i] = float32(vec64[i])
	}
	st.QueryVec = vec32
	st.EmbeddingMs = time.Since(embStart).Milliseconds()
	return st, nil
}

// recallNode 节点 3：全量暴力扫描 + 有界 Top-K 召回
func (p *ChatPipeline) recallNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil {
		return st, nil
	}
	searchStart := time.Now()
	hits, err := vectordb.SearchTopK(ctx, p.vs, p.opts.Namespace, st.QueryVec, p.opts.TopK, p.opts.ScoreThreshold)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Hits = hits
	st.SearchMs = time.Since(searchStart).Milliseconds()
	// 兜底短路 1：没有任何候选过阈值
	if len(hits) == 0 {
		st.Fallback = true
		st.Answer = chatbot.FallbackAnswer
	}
	return st, nil
}

// resolveNode 节点 4：将命中的 entryId 解析为候选答案
func (p *ChatPipeline) resolveNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil || st.Fallback {
		return st, nil
	}
	candidates := make([]chatbot.AnswerRecord, 0, len(st.Hits))
	for _, hit := range st.Hits {
		record, err := p.termRepo.SelectAnswerByID(ctx, hit.Key.EntryID)
		if err != nil {
			st.Err = err
			return st, nil
		}
		if record == nil {
			st.Err = fmt.Errorf("%w: entryId=%d", ErrCandidateNotFound, hit.Key.EntryID)
			return st, nil
		}
		candidates = append(candidates, *record)
	}
	st.Candidates = candidates
	return st, nil
}

// rerankNode 节点 5：交叉编码重排（外部服务筛选并排序）
func (p *ChatPipeline) rerankNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil || st.Fallback {
		return st, nil
	}
	rerankStart := time.Now()
	accurate, err := p.reranker.Rerank(ctx, st.Req.Question, st.Candidates)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Accurate = accurate
	st.RerankMs = time.Since(rerankStart).Milliseconds()
	// 兜底短路 2：重排认为没有足够相关的候选
	if len(accurate) == 0 {
		st.Fallback = true
		st.Answer = chatbot.FallbackAnswer
	}
	return st, nil
}

// composeNode 节点 6：组装检索增强 Prompt 并调用生成服务
func (p *ChatPipeline) composeNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil || st.Fallback {
		return st, nil
	}

	// 术语定义按 termId 去重后懒解析（一个 termId 只查一次）
	termMap := make(map[int64]chatbot.TermDefinition)
	for _, record := range st.Accurate {
		if _, ok := termMap[record.TermId]; ok {
			continue
		}
		def, err := p.termRepo.SelectTermByID(ctx, record.TermId)
		if err != nil {
			st.Err = err
			return st, nil
		}
		if def == nil {
			st.Err = fmt.Errorf("%w: termId=%d", ErrCandidateNotFound, record.TermId)
			return st, nil
		}
		termMap[record.TermId] = *def
	}
	st.TermMap = termMap

	answers := make([]string, 0, len(st.Accurate))
	for _, record := range st.Accurate {
		answers = append(answers, record.Answer)
	}

	llmStart := time.Now()
	content := gms.BuildUserContent(st.Req.Question, termMap, answers, st.History)
	answer, err := p.generator.GenerateAnswer(ctx, content)
	if err != nil {
		st.Err = err
		return st, nil
	}
	st.Answer = answer
	st.LLMMs = time.Since(llmStart).Milliseconds()
	return st, nil
}

// persistNode 节点 7：落会话日志。
//
// 兜底短路、或生成结果归一化后等于兜底话术时跳过——避免无效回答
// 污染后续对话上下文。只有真正返回给用户的有效回答才会进日志。
func (p *ChatPipeline) persistNode(ctx context.Context, st *chatState, _ ...any) (*chatState, error) {
	if st == nil {
		return &chatState{Err: fmt.Errorf("nil state"), Start: time.Now()}, nil
	}
	if st.Err != nil || st.Fallback {
		return st, nil
	}
	if chatbot.IsFallbackAnswer(st.Answer) {
		return st, nil
	}
	if err := p.chatLogRepo.Insert(ctx, st.Sid, st.Req.Question, st.Answer); err != nil {
		st.Err = err
		return st, nil
	}
	return st, nil
}

// buildResultNode 节点 8：组装最终结果并记录观测日志
func (p *ChatPipeline) buildResultNode(ctx context.Context, st *chatState, _ ...any) (*ChatResult, error) {
	_ = ctx
	if st == nil {
		return nil, fmt.Errorf("nil state")
	}
	if st.Err != nil {
		zlog.Error("chat pipeline failed",
			zap.String("query_id", st.QueryID),
			zap.String("sid", st.Sid),
			zap.Error(st.Err),
		)
		return nil, st.Err
	}

	res := &ChatResult{
		Sid:           st.Sid,
		Answer:        st.Answer,
		QueryID:       st.QueryID,
		IsFallback:    st.Fallback,
		TotalHits:     len(st.Hits),
		ReturnedCount: len(st.Accurate),
		DurationMs:    time.Since(st.Start).Milliseconds(),
		EmbeddingMs:   st.EmbeddingMs,
		SearchMs:      st.SearchMs,
		RerankMs:      st.RerankMs,
		LLMMs:         st.LLMMs,
	}

	zlog.Info("chat pipeline done",
		zap.String("query_id", res.QueryID),
		zap.String("sid", res.Sid),
		zap.Bool("is_new_sid", st.IsNewSid),
		zap.Int("total_hits", res.TotalHits),
		zap.Int("returned_count", res.ReturnedCount),
		zap.Bool("is_fallback", res.IsFallback),
		zap.Int64("embedding_ms", res.EmbeddingMs),
		zap.Int64("search_ms", res.SearchMs),
		zap.Int64("rerank_ms", res.RerankMs),
		zap.Int64("llm_ms", res.LLMMs),
		zap.Int64("duration_ms", res.DurationMs),
	)
	return res, nil
}
