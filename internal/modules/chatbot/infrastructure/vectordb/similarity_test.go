package vectordb

import (
	"context"
	"testing"

	"PensionChat/internal/modules/chatbot/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-9)
	// 零向量不报错、不产生 NaN
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float32{1}))
}

func key(entryID int64) repository.VectorKey {
	return repository.VectorKey{Namespace: "term", TermID: 1, EntryID: entryID, Role: repository.RoleQuestion}
}

func TestTopKCollector_ThresholdFloor(t *testing.T) {
	c := NewTopKCollector(10, 0.25)
	// 低于阈值的候选即使堆未满也不进入
	c.Offer(key(1), 0.24)
	c.Offer(key(2), 0.1)
	c.Offer(key(3), 0.25)
	c.Offer(key(4), 0.9)

	hits := c.Drain()
	require.Len(t, hits, 2)
	assert.Equal(t, int64(4), hits[0].Key.EntryID)
	assert.Equal(t, int64(3), hits[1].Key.EntryID)
}

func TestTopKCollector_BoundedAndDescending(t *testing.T) {
	c := NewTopKCollector(3, 0.25)
	sims := []float64{0.3, 0.8, 0.5, 0.9, 0.4, 0.7}
	for i, sim := range sims {
		c.Offer(key(int64(i)), sim)
	}

	hits := c.Drain()
	require.Len(t, hits, 3)
	assert.Equal(t, []float64{0.9, 0.8, 0.7}, []float64{hits[0].Similarity, hits[1].Similarity, hits[2].Similarity})
}

func TestTopKCollector_ZeroK(t *testing.T) {
	c := NewTopKCollector(0, 0.25)
	c.Offer(key(1), 0.9)
	assert.Empty(t, c.Drain())
}

// memVectorStore 纯内存实现，测试检索时替代 Redis
type memVectorStore struct {
	entries map[string][][]float32
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{entries: make(map[string][][]float32)}
}

func (m *memVectorStore) Append(_ context.Context, key repository.VectorKey, vector []float32) error {
	k := key.String()
	m.entries[k] = append(m.entries[k], vector)
	return nil
}

func (m *memVectorStore) ScanAll(_ context.Context, namespace string, fn func(key repository.VectorKey, vector []float32) error) error {
	for raw, vectors := range m.entries {
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

func (m *memVectorStore) List(_ context.Context, key repository.VectorKey) ([][]float32, error) {
	return m.entries[key.String()], nil
}

func TestSearchTopK(t *testing.T) {
	vs := newMemVectorStore()
	ctx := context.Background()

	// 与查询向量 (1,0) 夹角不同的三条向量
	require.NoError(t, vs.Append(ctx, key(1), []float32{1, 0}))     // cos = 1.0
	require.NoError(t, vs.Append(ctx, key(2), []float32{1, 1}))     // cos ≈ 0.707
	require.NoError(t, vs.Append(ctx, key(3), []float32{-1, 0}))    // cos = -1.0，被阈值过滤
	require.NoError(t, vs.Append(ctx, repository.VectorKey{Namespace: "other", TermID: 9, EntryID: 9, Role: repository.RoleAnswer}, []float32{1, 0}))

	hits, err := SearchTopK(ctx, vs, "term", []float32{1, 0}, 10, 0.25)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].Key.EntryID)
	assert.Equal(t, int64(2), hits[1].Key.EntryID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestSearchTopK_Empty(t *testing.T) {
	hits, err := SearchTopK(context.Background(), newMemVectorStore(), "term", []float32{1, 0}, 10, 0.25)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
