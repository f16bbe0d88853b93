package seatlock

import (
	"time"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

// LockTTL はロックの有効期間
// 放置されたロックが能動的な掃除なしに速やかに解放されるよう短く設定する。
const LockTTL = 2 * time.Minute

// SeatLock は座席ロックエンティティを表す
// (上映回ID, 座席ラベル) をキーとし、同一キーのロックは常に高々1件。
// 有効期限は遅延評価であり、読み取る側が常に expiresAt と現在時刻を比較する。
type SeatLock struct {
	ShowID    show.ID
	SeatLabel string
	HolderID  string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSeatLock は新しい座席ロックを作成する
func NewSeatLock(showID show.ID, seatLabel, holderID string, ttl time.Duration) *SeatLock {
	now := time.Now()
	return &SeatLock{
		ShowID:    showID,
		SeatLabel: seatLabel,
		HolderID:  holderID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired はロックが期限切れかを返す
func (l *SeatLock) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IsLive はロックが有効かを返す
func (l *SeatLock) IsLive(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

// HeldBy は指定ホルダーが現在ロックを保持しているかを返す
func (l *SeatLock) HeldBy(holderID string, now time.Time) bool {
	return l.HolderID == holderID && l.IsLive(now)
}

// Refresh は同一ホルダーによる再取得で有効期限を延長する
func (l *SeatLock) Refresh(ttl time.Duration) {
	now := time.Now()
	l.ExpiresAt = now.Add(ttl)
	l.UpdatedAt = now
}

// Validate は座席ロックの検証を行う
func (l *SeatLock) Validate() error {
	if l.ShowID == "" {
		return ErrShowIDRequired
	}
	if l.SeatLabel == "" {
		return ErrSeatLabelRequired
	}
	if l.HolderID == "" {
		return ErrHolderIDRequired
	}
	return nil
}
