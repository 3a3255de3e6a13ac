package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadKeyPrefix 阅读去重标记 key 前缀
const ReadKeyPrefix = "news:read:"

// ReadTracker 用 SETNX 标记 (文章, 阅读会话) 是否已计数
// 尽力而为：未配置 Redis 时每次阅读都计数
type ReadTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReadTracker 创建阅读去重器，client 可为 nil
func NewReadTracker(client *redis.Client, ttl time.Duration) *ReadTracker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReadTracker{client: client, ttl: ttl}
}

// FirstRead 该阅读会话是否首次上报
func (t *ReadTracker) FirstRead(ctx context.Context, newsID uint, readerKey string) (bool, error) {
	if t == nil || t.client == nil || readerKey == "" {
		return true, nil
	}
	key := fmt.Sprintf("%s%d:%s", ReadKeyPrefix, newsID, readerKey)
	ok, err := t.client.SetNX(ctx, key, 1, t.ttl).Result()
	if err != nil {
		return true, fmt.Errorf("写入阅读标记失败: %w", err)
	}
	return ok, nil
}
