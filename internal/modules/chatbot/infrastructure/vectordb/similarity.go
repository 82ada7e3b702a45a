package vectordb

import (
	"container/heap"
	"context"
	"math"
	"sort"

	"PensionChat/internal/modules/chatbot/domain/repository"
)

// CosineSimilarity 标准余弦相似度（点积除以范数乘积）。
//
// 任一向量范数为零时返回 0.0 而不是错误，避免 NaN 向上传播。
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopKCollector 有界 Top-K 选择器：内部维护大小不超过 k 的最小堆。
//
// 阈值是绝对下限：低于阈值的候选直接丢弃，即使堆未满也不进入。
// 全部候选喂完后 Drain 按相似度降序导出。整体代价 O(N log k)。
type TopKCollector struct {
	k         int
	threshold float64
	h         hitHeap
}

func NewTopKCollector(k int, threshold float64) *TopKCollector {
	return &TopKCollector{k: k, threshold: threshold}
}

// Offer 喂入一个候选
func (c *TopKCollector) Offer(key repository.VectorKey, similarity float64) {
	if c.k <= 0 || similarity < c.threshold {
		return
	}
	heap.Push(&c.h, repository.SearchHit{Key: key, Similarity: similarity})
	if c.h.Len() > c.k {
		heap.Pop(&c.h)
	}
}

// Drain 导出命中结果（相似度降序），之后收集器可复用
func (c *TopKCollector) Drain() []repository.SearchHit {
	hits := make([]repository.SearchHit, c.h.Len())
	copy(hits, c.h)
	c.h = c.h[:0]
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	return hits
}

// SearchTopK 对 namespace 做全量暴力扫描并返回 Top-K 命中。
//
// 这是刻意为之的精确暴力检索（词典规模数据量），不要替换为近似索引，
// 那会改变可观测的排序行为。
func SearchTopK(ctx context.Context, vs repository.VectorStore, namespace string, query []float32, k int, threshold float64) ([]repository.SearchHit, error) {
	collector := NewTopKCollector(k, threshold)
	err := vs.ScanAll(ctx, namespace, func(key repository.VectorKey, vector []float32) error {
		collector.Offer(key, CosineSimilarity(query, vector))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collector.Drain(), nil
}

// hitHeap 以相似度为键的最小堆
type hitHeap []repository.SearchHit

func (h hitHeap) Len() int            { return len(h) }
func (h hitHeap) Less(i, j int) bool  { return h[i].Similarity < h[j].Similarity }
func (h hitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x interface{}) { *h = append(*h, x.(repository.SearchHit)) }
func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
