package handler

import (
	"context"

	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

// LockServiceInterface は座席ロックサービスのインターフェース
type LockServiceInterface interface {
	Acquire(ctx context.Context, showID show.ID, seatLabel, holderID string) (*seatlock.SeatLock, error)
	Release(ctx context.Context, showID show.ID, seatLabel, holderID string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Confirm(ctx context.Context, input application.ConfirmBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// AvailabilityServiceInterface は空席状況サービスのインターフェース
type AvailabilityServiceInterface interface {
	Watch(ctx context.Context, showID show.ID, viewerID string, fn func(application.Snapshot)) (func(), error)
	Snapshot(ctx context.Context, showID show.ID, viewerID string) (application.Snapshot, error)
}
