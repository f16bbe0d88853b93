package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

type MockSeatLockRepository struct {
	mock.Mock
}

func (m *MockSeatLockRepository) Get(ctx context.Context, showID show.ID, seatLabel string) (*seatlock.SeatLock, error) {
	args := m.Called(ctx, showID, seatLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatlock.SeatLock), args.Error(1)
}

func (m *MockSeatLockRepository) ListByShow(ctx context.Context, showID show.ID) ([]*seatlock.SeatLock, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seatlock.SeatLock), args.Error(1)
}

func (m *MockSeatLockRepository) ConditionalPut(ctx context.Context, lock *seatlock.SeatLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

func (m *MockSeatLockRepository) Delete(ctx context.Context, showID show.ID, seatLabel string) error {
	args := m.Called(ctx, showID, seatLabel)
	return args.Error(0)
}

func (m *MockSeatLockRepository) DeleteIfHolder(ctx context.Context, showID show.ID, seatLabel, holderID string) error {
	args := m.Called(ctx, showID, seatLabel, holderID)
	return args.Error(0)
}

func (m *MockSeatLockRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) ([]*seatlock.SeatLock, error) {
	args := m.Called(ctx, tx, showID, seatLabels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seatlock.SeatLock), args.Error(1)
}

func (m *MockSeatLockRepository) DeleteInTx(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) error {
	args := m.Called(ctx, tx, showID, seatLabels)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByShow(ctx context.Context, showID show.ID) ([]*booking.Booking, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) BookedSeatsInTx(ctx context.Context, tx transaction.Tx, showID show.ID) ([]string, error) {
	args := m.Called(ctx, tx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

type MockFeedNotifier struct {
	mock.Mock
}

func (m *MockFeedNotifier) Publish(ctx context.Context, showID show.ID) error {
	args := m.Called(ctx, showID)
	return args.Error(0)
}

func (m *MockFeedNotifier) Subscribe(ctx context.Context, handler func(showID show.ID)) (func(), error) {
	args := m.Called(ctx, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
