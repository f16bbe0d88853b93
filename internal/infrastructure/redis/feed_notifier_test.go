package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

func TestFeedNotifier(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	notifier := NewFeedNotifier(client)

	t.Run("発行した上映回IDが購読側に届く", func(t *testing.T) {
		received := make(chan show.ID, 1)
		unsubscribe, err := notifier.Subscribe(ctx, func(showID show.ID) {
			select {
			case received <- showID:
			default:
			}
		})
		require.NoError(t, err)
		defer unsubscribe()

		showID := show.ID("m1_2026-09-01_19:30")
		require.NoError(t, notifier.Publish(ctx, showID))

		select {
		case got := <-received:
			assert.Equal(t, showID, got)
		case <-time.After(2 * time.Second):
			t.Fatal("通知が届かない")
		}
	})

	t.Run("購読終了後は通知が届かない", func(t *testing.T) {
		received := make(chan show.ID, 16)
		unsubscribe, err := notifier.Subscribe(ctx, func(showID show.ID) {
			received <- showID
		})
		require.NoError(t, err)
		unsubscribe()

		require.NoError(t, notifier.Publish(ctx, show.ID("m2_2026-09-01_19:30")))

		select {
		case got := <-received:
			t.Fatalf("購読終了後に通知を受信: %s", got)
		case <-time.After(300 * time.Millisecond):
		}
	})
}
