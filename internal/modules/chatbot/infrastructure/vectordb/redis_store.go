package vectordb

import (
	"context"
	"errors"

	"PensionChat/internal/modules/chatbot/domain/repository"
	"PensionChat/pkg/redis"
	"PensionChat/pkg/zlog"

	"go.uber.org/zap"
)

const defaultScanCount = 100

// RedisVectorStore 基于 Redis list 的向量存储适配器。
//
// 每个 VectorKey 对应一个 list，RPUSH 追加编码后的向量字节串；
// 全量检索通过 SCAN 游标分页枚举 key 空间，而非一次性 KEYS。
// 摄取任务只追加、检索只读取，两侧无锁并存——检索容忍看到
// 部分新旧混杂的视图（最终一致即可）。
type RedisVectorStore struct {
	scanCount int64
}

// NewRedisVectorStore 创建向量存储（scanCount <= 0 时使用默认每页数量）
func NewRedisVectorStore(scanCount int64) repository.VectorStore {
	if scanCount <= 0 {
		scanCount = defaultScanCount
	}
	return &RedisVectorStore{scanCount: scanCount}
}

// Append 追加向量（允许同一 key 下重复向量累积，摄取侧不去重）
func (s *RedisVectorStore) Append(ctx context.Context, key repository.VectorKey, vector []float32) error {
	_, err := redis.RPush(ctx, key.String(), EncodeVector(vector))
	return err
}

// ScanAll 游标分页枚举 namespace 下全部向量。
//
// 每页独立可重启；扫描期间的并发写入可能被观察到也可能不被观察到，
// 对近似检索索引而言可接受。坏键与坏编码跳过并记日志，绝不中断检索。
func (s *RedisVectorStore) ScanAll(ctx context.Context, namespace string, fn func(key repository.VectorKey, vector []float32) error) error {
	match := namespace + ":*"
	var cursor uint64
	for {
		keys, next, err := redis.Scan(ctx, cursor, match, s.scanCount)
		if err != nil {
			return err
		}
		for _, raw := range keys {
			parsed, ok := repository.ParseVectorKey(raw)
			if !ok {
				zlog.Warn("skip malformed vector key", zap.String("key", raw))
				continue
			}
			keyType, err := redis.TypeOf(ctx, raw)
			if err != nil {
				return err
			}
			if keyType != "list" {
				continue
			}
			values, err := redis.LRange(ctx, raw, 0, -1)
			if err != nil {
				return err
			}
			for _, v := range values {
				vector, err := DecodeVector([]byte(v))
				if err != nil {
					if errors.Is(err, ErrInvalidEncoding) {
						zlog.Warn("skip corrupt vector bytes", zap.String("key", raw))
						continue
					}
					return err
				}
				if err := fn(parsed, vector); err != nil {
					return err
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// List 按 key 取回有序向量列表
func (s *RedisVectorStore) List(ctx context.Context, key repository.VectorKey) ([][]float32, error) {
	values, err := redis.LRange(ctx, key.String(), 0, -1)
	if err != nil {
		return nil, err
	}
	vectors := make([][]float32, 0, len(values))
	for _, v := range values {
		vector, err := DecodeVector([]byte(v))
		if err != nil {
			if errors.Is(err, ErrInvalidEncoding) {
				continue
			}
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}
