package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// SetClient 设置 Redis 客户端（由 internal/initial 调用）
func SetClient(c *redis.Client) {
	client = c
}

// Close 关闭 Redis 连接
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// IsConnected 检查 Redis 是否已连接
func IsConnected() bool {
	return client != nil
}

// GetClient 获取原始 Redis 客户端（高级用法）
func GetClient() *redis.Client {
	return client
}

// checkClient 检查客户端是否可用
func checkClient() error {
	if client == nil {
		return fmt.Errorf("Redis 未连接")
	}
	return nil
}

// ==================== String 操作 ====================

// Get 获取字符串值
func Get(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Get(ctx, key).Result()
}

// Set 设置字符串值
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Del 删除 key
func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

// Exists 检查 key 是否存在
func Exists(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Exists(ctx, keys...).Result()
}

// ==================== List 操作（向量分片按 list 追加存储）====================

// RPush 从列表右侧插入元素（value 可为 []byte，二进制安全）
func RPush(ctx context.Context, key string, values ...interface{}) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.RPush(ctx, key, values...).Result()
}

// LRange 获取列表范围元素（返回的 string 为二进制安全载荷）
func LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if err := checkClient(); err != nil {
		return nil, err
	}
	return client.LRange(ctx, key, start, stop).Result()
}

// LLen 获取列表长度
func LLen(ctx context.Context, key string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.LLen(ctx, key).Result()
}

// ==================== Key 空间操作（全量扫描用）====================

// Scan 游标分页枚举 key（match 为空时枚举全部）
//
// 返回本页 key 列表与下一游标；游标为 0 表示枚举结束。
func Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if err := checkClient(); err != nil {
		return nil, 0, err
	}
	return client.Scan(ctx, cursor, match, count).Result()
}

// TypeOf 获取 key 的数据类型（string/list/hash/...）
func TypeOf(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Type(ctx, key).Result()
}
