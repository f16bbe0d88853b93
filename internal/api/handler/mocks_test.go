package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

type MockLockService struct {
	mock.Mock
}

func (m *MockLockService) Acquire(ctx context.Context, showID show.ID, seatLabel, holderID string) (*seatlock.SeatLock, error) {
	args := m.Called(ctx, showID, seatLabel, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatlock.SeatLock), args.Error(1)
}

func (m *MockLockService) Release(ctx context.Context, showID show.ID, seatLabel, holderID string) error {
	args := m.Called(ctx, showID, seatLabel, holderID)
	return args.Error(0)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Confirm(ctx context.Context, input application.ConfirmBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) Watch(ctx context.Context, showID show.ID, viewerID string, fn func(application.Snapshot)) (func(), error) {
	args := m.Called(ctx, showID, viewerID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockAvailabilityService) Snapshot(ctx context.Context, showID show.ID, viewerID string) (application.Snapshot, error) {
	args := m.Called(ctx, showID, viewerID)
	return args.Get(0).(application.Snapshot), args.Error(1)
}
