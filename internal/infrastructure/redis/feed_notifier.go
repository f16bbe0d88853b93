package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
)

// 上映回の変更通知を流すPub/Subチャネル
const feedChannel = "seats:changed"

// FeedNotifier は Redis Pub/Sub を使った上映回変更の通知
// ロック・予約の書き込み成功時に上映回IDを発行し、購読側（AvailabilityFeed）が
// 受信のたびにストアを読み直してスナップショットを再計算する。
type FeedNotifier struct {
	client *redis.Client
}

// NewFeedNotifier は新しいFeedNotifierを作成する
func NewFeedNotifier(client *redis.Client) *FeedNotifier {
	return &FeedNotifier{client: client}
}

// Publish は上映回の変更を通知する
func (n *FeedNotifier) Publish(ctx context.Context, showID show.ID) error {
	if err := n.client.Publish(ctx, feedChannel, string(showID)).Err(); err != nil {
		return fmt.Errorf("変更通知の発行に失敗: %w", err)
	}
	return nil
}

// Subscribe は変更通知の購読を開始する
// 返される関数を呼ぶと購読を終了する。
func (n *FeedNotifier) Subscribe(ctx context.Context, handler func(show.ID)) (func(), error) {
	sub := n.client.Subscribe(ctx, feedChannel)
	// 購読確立を待つ
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("変更通知の購読に失敗: %w", err)
	}

	ch := sub.Channel()
	go func() {
		for msg := range ch {
			handler(show.ID(msg.Payload))
		}
		logger.Debug("変更通知の購読を終了", zap.String("channel", feedChannel))
	}()

	return func() {
		if err := sub.Close(); err != nil {
			logger.Warn("購読クローズに失敗", zap.Error(err))
		}
	}, nil
}
