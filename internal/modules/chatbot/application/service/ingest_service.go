package service

import (
	"context"

	"PensionChat/internal/modules/chatbot/domain/repository"
	"PensionChat/pkg/xerr"
	"PensionChat/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

type IngestService interface {
	RebuildTermVectors(ctx context.Context) (int, error)
}

type ingestServiceImpl struct {
	termRepo  repository.TermRepository
	vs        repository.VectorStore
	embedder  embedding.Embedder
	namespace string
}

func NewIngestService(termRepo repository.TermRepository, vs repository.VectorStore, embedder embedding.Embedder, namespace string) IngestService {
	if namespace == "" {
		namespace = "term"
	}
	return &ingestServiceImpl{
		termRepo:  termRepo,
		vs:        vs,
		embedder:  embedder,
		namespace: namespace,
	}
}

// RebuildTermVectors 全量向量化摄取：遍历问答语料，把每条的问题和
// 答案分别向量化后追加进向量库（Q/A 两个角色键）。
//
// 向量库是只追加的——重跑摄取会在既有列表后追加新向量而不是覆盖，
// 需要全新基线时先清掉命名空间下的键再执行。
// 返回成功摄取的语料条数；任何一条失败即中止并返回错误。
func (s *ingestServiceImpl) RebuildTermVectors(ctx context.Context) (int, error) {
	rows, err := s.termRepo.SelectAllChatDummy(ctx)
	if err != nil {
		zlog.Error("select chat dummy failed", zap.Error(err))
		return 0, xerr.ErrServerError
	}

	count := 0
	for i := range rows {
		row := rows[i]
		vecs, err := s.embedder.EmbedStrings(ctx, []string{row.Question, row.Answer})
		if err != nil {
			zlog.Error("embed corpus row failed", zap.Int64("entry_id", row.Id), zap.Error(err))
			return count, xerr.ErrServerError
		}
		if len(vecs) != 2 {
			zlog.Error("unexpected embedding result size", zap.Int64("entry_id", row.Id), zap.Int("got", len(vecs)))
			return count, xerr.ErrServerError
		}

		qKey := repository.VectorKey{Namespace: s.namespace, TermID: row.TermId, EntryID: row.Id, Role: repository.RoleQuestion}
		if err := s.vs.Append(ctx, qKey, toFloat32(vecs[0])); err != nil {
			zlog.Error("append question vector failed", zap.String("key", qKey.String()), zap.Error(err))
			return count, xerr.ErrServerError
		}
		aKey := repository.VectorKey{Namespace: s.namespace, TermID: row.TermId, EntryID: row.Id, Role: repository.RoleAnswer}
		if err := s.vs.Append(ctx, aKey, toFloat32(vecs[1])); err != nil {
			zlog.Error("append answer vector failed", zap.String("key", aKey.String()), zap.Error(err))
			return count, xerr.ErrServerError
		}
		count++
	}

	zlog.Info("term vectors ingested", zap.String("namespace", s.namespace), zap.Int("rows", count))
	return count, nil
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i := range vec {
		out[i] = float32(vec[i])
	}
	return out
}
