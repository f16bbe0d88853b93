package booking

import (
	"time"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

// Status は予約の状態を表す
// 本コアにキャンセルフローは存在せず、予約は常に confirmed で作成される。
type Status string

const (
	StatusConfirmed Status = "confirmed"
)

// Metadata は予約に付随する表示用メタデータ
type Metadata struct {
	MovieTitle string
	Date       string
	Time       string
	Poster     string
}

// Booking は予約エンティティを表す
// BookingCoordinator によって一度だけ原子的に作成され、以後不変。
// 同一上映回の予約同士で Seats が交差しないことが不変条件。
type Booking struct {
	ID         string
	ShowID     show.ID
	UserID     string
	Seats      []string
	TotalPrice int
	Status     Status
	Metadata   Metadata
	BookedAt   time.Time
}

// NewBooking は新しい確定済み予約を作成する
func NewBooking(showID show.ID, userID string, seats []string, totalPrice int, meta Metadata) *Booking {
	return &Booking{
		ShowID:     showID,
		UserID:     userID,
		Seats:      seats,
		TotalPrice: totalPrice,
		Status:     StatusConfirmed,
		Metadata:   meta,
		BookedAt:   time.Now(),
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.ShowID == "" {
		return ErrShowIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if len(b.Seats) == 0 {
		return ErrSeatsRequired
	}
	seen := make(map[string]struct{}, len(b.Seats))
	for _, s := range b.Seats {
		if _, ok := seen[s]; ok {
			return ErrDuplicateSeats
		}
		seen[s] = struct{}{}
	}
	if b.TotalPrice < 0 {
		return ErrInvalidTotalPrice
	}
	return nil
}

// Contains は予約に指定座席が含まれるかを返す
func (b *Booking) Contains(seatLabel string) bool {
	for _, s := range b.Seats {
		if s == seatLabel {
			return true
		}
	}
	return false
}
