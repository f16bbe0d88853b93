package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

func liveLock(showID show.ID, seatLabel, holderID string) *seatlock.SeatLock {
	return &seatlock.SeatLock{
		ShowID:    showID,
		SeatLabel: seatLabel,
		HolderID:  holderID,
		ExpiresAt: time.Now().Add(time.Minute),
	}
}

func TestBookingService_Confirm(t *testing.T) {
	showID := show.ID("m1_2026-09-01_19:30")
	input := ConfirmBookingInput{
		ShowID: showID,
		Seats:  []string{"A1", "F5"},
		UserID: "user-1",
		Metadata: booking.Metadata{
			MovieTitle: "Fight Club",
			Date:       "2026-09-01",
			Time:       "19:30",
		},
	}

	t.Run("保持中のロックを予約へ変換できる", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		notifier := new(MockFeedNotifier)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, notifier, nil)

		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			liveLock(showID, "A1", "user-1"),
			liveLock(showID, "F5", "user-1"),
		}, nil)
		bookingRepo.On("BookedSeatsInTx", mock.Anything, tx, showID).Return([]string{}, nil)
		bookingRepo.On("Create", mock.Anything, tx, mock.MatchedBy(func(b *booking.Booking) bool {
			return b.UserID == "user-1" && len(b.Seats) == 2 && b.Status == booking.StatusConfirmed
		})).Return(nil)
		lockRepo.On("DeleteInTx", mock.Anything, tx, showID, input.Seats).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)
		notifier.On("Publish", mock.Anything, showID).Return(nil)

		b, err := service.Confirm(context.Background(), input)

		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, 150+250, b.TotalPrice)
		assert.Equal(t, "Fight Club", b.Metadata.MovieTitle)
		tx.AssertCalled(t, "Commit")
		lockRepo.AssertExpectations(t)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("ロック不在の座席が含まれる場合は失敗", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, nil, nil)

		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			liveLock(showID, "A1", "user-1"),
		}, nil)
		tx.On("Rollback").Return(nil)

		_, err := service.Confirm(context.Background(), input)

		assert.ErrorIs(t, err, booking.ErrNotHeldByCaller)
		bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
	})

	t.Run("別ホルダーのロックが含まれる場合は失敗", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, nil, nil)

		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			liveLock(showID, "A1", "user-1"),
			liveLock(showID, "F5", "user-2"),
		}, nil)
		tx.On("Rollback").Return(nil)

		_, err := service.Confirm(context.Background(), input)

		assert.ErrorIs(t, err, booking.ErrNotHeldByCaller)
	})

	t.Run("期限切れのロックは保持と見なさない", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, nil, nil)

		expired := liveLock(showID, "A1", "user-1")
		expired.ExpiresAt = time.Now().Add(-time.Second)
		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			expired,
			liveLock(showID, "F5", "user-1"),
		}, nil)
		tx.On("Rollback").Return(nil)

		_, err := service.Confirm(context.Background(), input)

		assert.ErrorIs(t, err, booking.ErrNotHeldByCaller)
	})

	t.Run("予約済み座席と重複する場合は失敗", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, nil, nil)

		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			liveLock(showID, "A1", "user-1"),
			liveLock(showID, "F5", "user-1"),
		}, nil)
		bookingRepo.On("BookedSeatsInTx", mock.Anything, tx, showID).Return([]string{"F5"}, nil)
		tx.On("Rollback").Return(nil)

		_, err := service.Confirm(context.Background(), input)

		assert.ErrorIs(t, err, booking.ErrSeatAlreadyBooked)
		bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("予約作成の失敗でロックは消費されない", func(t *testing.T) {
		txManager := new(MockTxManager)
		tx := new(MockTx)
		lockRepo := new(MockSeatLockRepository)
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(txManager, lockRepo, bookingRepo, nil, nil, nil)

		txManager.On("Begin", mock.Anything).Return(tx, nil)
		lockRepo.On("GetForUpdate", mock.Anything, tx, showID, input.Seats).Return([]*seatlock.SeatLock{
			liveLock(showID, "A1", "user-1"),
			liveLock(showID, "F5", "user-1"),
		}, nil)
		bookingRepo.On("BookedSeatsInTx", mock.Anything, tx, showID).Return([]string{}, nil)
		bookingRepo.On("Create", mock.Anything, tx, mock.Anything).Return(assert.AnError)
		tx.On("Rollback").Return(nil)

		_, err := service.Confirm(context.Background(), input)

		assert.Error(t, err)
		lockRepo.AssertNotCalled(t, "DeleteInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
		tx.AssertCalled(t, "Rollback")
	})

	t.Run("座席が空の場合はエラー", func(t *testing.T) {
		service := NewBookingService(nil, nil, nil, nil, nil, nil)

		_, err := service.Confirm(context.Background(), ConfirmBookingInput{
			ShowID: showID,
			UserID: "user-1",
		})

		assert.ErrorIs(t, err, booking.ErrSeatsRequired)
	})

	t.Run("座席が重複する場合はエラー", func(t *testing.T) {
		service := NewBookingService(nil, nil, nil, nil, nil, nil)

		_, err := service.Confirm(context.Background(), ConfirmBookingInput{
			ShowID: showID,
			Seats:  []string{"A1", "A1"},
			UserID: "user-1",
		})

		assert.ErrorIs(t, err, booking.ErrDuplicateSeats)
	})
}

func TestBookingService_ListUserBookings(t *testing.T) {
	t.Run("既定の件数上限が適用される", func(t *testing.T) {
		bookingRepo := new(MockBookingRepository)
		service := NewBookingService(nil, nil, bookingRepo, nil, nil, nil)

		bookingRepo.On("ListByUser", mock.Anything, "user-1", 20, 0).Return([]*booking.Booking{}, nil)

		_, err := service.ListUserBookings(context.Background(), "user-1", 0, 0)

		require.NoError(t, err)
		bookingRepo.AssertExpectations(t)
	})
}
