package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// CachedLock はキャッシュ上のロック表現
type CachedLock struct {
	HolderID  string    `json:"holder_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CachedShowState はスナップショット計算の元になる上映回の状態
type CachedShowState struct {
	Locks       map[string]CachedLock `json:"locks"`
	BookedSeats []string              `json:"booked_seats"`
}

// SnapshotCache は上映回状態のキャッシュを管理する
// 一回限りの空席照会のためにストア読み取りを節約する。変更通知を受けたら
// 必ず Invalidate されるため、TTLは安全側の上限にすぎない。
type SnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache は新しいSnapshotCacheインスタンスを作成する
func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Get は上映回の状態をキャッシュから取得する
func (c *SnapshotCache) Get(ctx context.Context, showID show.ID) (*CachedShowState, error) {
	val, err := c.client.Get(ctx, c.key(showID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var state CachedShowState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("キャッシュ復元に失敗: %w", err)
	}
	return &state, nil
}

// Set は上映回の状態をキャッシュに保存する
func (c *SnapshotCache) Set(ctx context.Context, showID show.ID, state *CachedShowState, ttl time.Duration) error {
	val, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("キャッシュ変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key(showID), val, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は上映回のキャッシュを無効化する
func (c *SnapshotCache) Invalidate(ctx context.Context, showID show.ID) error {
	if err := c.client.Del(ctx, c.key(showID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SnapshotCache) key(showID show.ID) string {
	return fmt.Sprintf("shows:state:%s", showID)
}
