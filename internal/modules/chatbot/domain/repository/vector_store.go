package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// VectorStore 是 domain 层定义的"向量库能力抽象"。
//
// 设计约束：
// 1) application / domain 只能依赖本接口，不应直接依赖 Redis SDK。
// 2) infrastructure 通过适配器实现本接口（RedisVectorStore），从而可替换。
//
// 存储形态：每个 VectorKey 对应一条 append-only 的向量列表（同一语料可能
// 被重复摄取，允许重复向量累积，检索路径不去重）。

// VectorRole 向量归属：问题向量还是答案向量
type VectorRole string

const (
	RoleQuestion VectorRole = "Q"
	RoleAnswer   VectorRole = "A"
)

// VectorKey 向量列表的复合键，序列化为 namespace:termId:entryId:role
type VectorKey struct {
	Namespace string
	TermID    int64
	EntryID   int64
	Role      VectorRole
}

// String 序列化为存储键（role 统一大写）
func (k VectorKey) String() string {
	return fmt.Sprintf("%s:%d:%d:%s", k.Namespace, k.TermID, k.EntryID, k.Role)
}

// ParseVectorKey 从存储键还原 VectorKey。
//
// 字段数不足、id 非数字、role 非 Q/A 均视为坏键，返回 ok=false，
// 调用方跳过即可——存储里的脏键不能中断整次检索。role 读取时大小写不敏感。
func ParseVectorKey(raw string) (VectorKey, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return VectorKey{}, false
	}
	termID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return VectorKey{}, false
	}
	entryID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return VectorKey{}, false
	}
	role := VectorRole(strings.ToUpper(parts[3]))
	if role != RoleQuestion && role != RoleAnswer {
		return VectorKey{}, false
	}
	return VectorKey{
		Namespace: parts[0],
		TermID:    termID,
		EntryID:   entryID,
		Role:      role,
	}, true
}

// SearchHit 相似度检索命中（similarity 不低于阈值才会产生）
type SearchHit struct {
	Key        VectorKey
	Similarity float64
}

// VectorStore 向量存储接口（Append / ScanAll / List）
type VectorStore interface {
	// Append 向 key 对应列表追加一个向量，列表不存在则创建。不做去重。
	Append(ctx context.Context, key VectorKey, vector []float32) error
	// ScanAll 游标分页枚举 namespace 下全部向量，对每个 (key, vector) 调用 fn。
	// fn 返回 error 时终止枚举并透传该错误。坏键与坏编码静默跳过。
	ScanAll(ctx context.Context, namespace string, fn func(key VectorKey, vector []float32) error) error
	// List 按 key 取回有序向量列表
	List(ctx context.Context, key VectorKey) ([][]float32, error)
}
