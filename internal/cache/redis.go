// Package cache 提供 Redis 缓存操作的封装
// 缓存对话的消息列表，减少热点对话的数据库读取
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"branch-chat-server/internal/config"
	"branch-chat-server/internal/model"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// DefaultThreadTTL 消息列表缓存的默认过期时间
const DefaultThreadTTL = 24 * time.Hour

// RedisCache 封装 Redis 客户端，提供业务相关的缓存操作
type RedisCache struct {
	client    *redis.Client // Redis 客户端实例
	threadTTL time.Duration // 消息列表缓存的过期时间
}

// NewRedisCache 创建 RedisCache 实例
// 参数:
//   - cfg: 应用配置（包含 Redis 连接信息）
//
// 返回:
//   - *RedisCache: 缓存实例
//   - error: 连接错误
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.Cache.ThreadTTL
	if ttl <= 0 {
		ttl = DefaultThreadTTL
	}

	return &RedisCache{client: client, threadTTL: ttl}, nil
}

// NewRedisCacheWithClient 使用已有客户端创建 RedisCache
// 测试时可以传入 miniredis 的客户端
func NewRedisCacheWithClient(client *redis.Client, threadTTL time.Duration) *RedisCache {
	if threadTTL <= 0 {
		threadTTL = DefaultThreadTTL
	}
	return &RedisCache{client: client, threadTTL: threadTTL}
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ==================== 消息列表缓存 ====================
// 以对话为单位缓存完整的消息列表（JSON 序列化）。
// 任何写入（发消息、编辑、删除对话）都会使对应的缓存失效，
// 下一次读取时回源数据库并重新填充。

// threadKey 生成消息列表的缓存 Key
func (c *RedisCache) threadKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

// GetThread 读取对话的缓存消息列表
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - []model.Message: 消息列表
//   - error: 未命中返回 ErrCacheMiss，其他为 Redis 操作错误
func (c *RedisCache) GetThread(ctx context.Context, conversationID string) ([]model.Message, error) {
	data, err := c.client.Get(ctx, c.threadKey(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return nil, fmt.Errorf("unmarshal cached thread: %w", err)
	}
	return messages, nil
}

// SetThread 写入对话的消息列表缓存
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//   - messages: 消息列表（已按创建时间正序排列）
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) SetThread(ctx context.Context, conversationID string, messages []model.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.threadKey(conversationID), data, c.threadTTL).Err()
}

// InvalidateThread 使对话的消息列表缓存失效
// 在发送消息、编辑消息、删除对话后调用
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) InvalidateThread(ctx context.Context, conversationID string) error {
	return c.client.Del(ctx, c.threadKey(conversationID)).Err()
}
