package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCacheInterface はセッション空席数キャッシュのインターフェース
type SeatCacheInterface interface {
	GetAvailableCount(ctx context.Context, sessionID string) (int, error)
	SetAvailableCount(ctx context.Context, sessionID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, sessionID string) error
}

// SeatCache はセッションごとの空席数キャッシュを管理する
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetAvailableCount はセッションの空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, sessionID string) (int, error) {
	key := c.availableCountKey(sessionID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount はセッションの空席数をキャッシュに保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, sessionID string, count int, ttl time.Duration) error {
	key := c.availableCountKey(sessionID)
	if err := c.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はセッションのキャッシュを無効化する
// 座席の確保・解放の後に呼び出される
func (c *SeatCache) Invalidate(ctx context.Context, sessionID string) error {
	key := c.availableCountKey(sessionID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) availableCountKey(sessionID string) string {
	return fmt.Sprintf("sessions:available:%s", sessionID)
}

var _ SeatCacheInterface = (*SeatCache)(nil)
