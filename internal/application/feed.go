package application

import (
	"context"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

// FeedNotifier は上映回変更の発行・購読インターフェース
// ロック・予約の書き込みが成功するたびに上映回IDが発行され、購読側は
// 受信のたびにストアを読み直す。通知は「変わった」という事実だけを運び、
// 状態そのものは常にストアが真実である。
type FeedNotifier interface {
	Publish(ctx context.Context, showID show.ID) error
	Subscribe(ctx context.Context, handler func(show.ID)) (func(), error)
}

// SeatStatus は閲覧者から見た座席の状態
type SeatStatus string

const (
	SeatAvailable     SeatStatus = "available"
	SeatHeldByMe      SeatStatus = "held-by-me"
	SeatLockedByOther SeatStatus = "locked-by-other"
	SeatBooked        SeatStatus = "booked"
)

// Snapshot は閲覧者ごとに導出される空席状況のスナップショット
// 永続化されない純粋な射影であり、下層の変更のたびに再計算される。
// Seats には available 以外の座席のみが含まれる。
type Snapshot struct {
	ShowID  show.ID
	Version uint64
	Seats   map[string]SeatStatus
}

// StatusOf は指定座席の状態を返す（未登場の座席は available）
func (s Snapshot) StatusOf(seatLabel string) SeatStatus {
	if status, ok := s.Seats[seatLabel]; ok {
		return status
	}
	return SeatAvailable
}
