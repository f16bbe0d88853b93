package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/pricing"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
	redisinfra "github.com/Charangandrothu/SpotMySeat/internal/infrastructure/redis"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/metrics"
)

// BookingService は保持中のロックを原子的に予約へ変換する
// 座席が「一時確保」から「販売済み」へ遷移する唯一の経路であり、
// 予約作成とロック削除は必ず同一トランザクションで行う。
type BookingService struct {
	txManager   transaction.Manager
	lockRepo    seatlock.Repository
	bookingRepo booking.Repository
	lockManager *redisinfra.LockManager
	notifier    FeedNotifier
	metrics     *metrics.Metrics
}

func NewBookingService(
	txManager transaction.Manager,
	lockRepo seatlock.Repository,
	bookingRepo booking.Repository,
	lockManager *redisinfra.LockManager,
	notifier FeedNotifier,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:   txManager,
		lockRepo:    lockRepo,
		bookingRepo: bookingRepo,
		lockManager: lockManager,
		notifier:    notifier,
		metrics:     m,
	}
}

type ConfirmBookingInput struct {
	ShowID   show.ID
	Seats    []string
	UserID   string
	Metadata booking.Metadata
}

// Confirm は呼び出し元が保持するロックを1件の予約へ原子的に変換する
// 各座席のロックが有効かつ呼び出し元保持であることを検証し、既存予約との
// 重複を再検証したうえで、予約作成と消費ロックの削除を同一トランザクションで
// コミットする。失敗時に部分的な状態は残らない。
func (s *BookingService) Confirm(ctx context.Context, input ConfirmBookingInput) (*booking.Booking, error) {
	start := time.Now()

	if len(input.Seats) == 0 {
		return nil, booking.ErrSeatsRequired
	}
	seen := make(map[string]struct{}, len(input.Seats))
	for _, seat := range input.Seats {
		if _, ok := seen[seat]; ok {
			return nil, booking.ErrDuplicateSeats
		}
		seen[seat] = struct{}{}
	}

	totalPrice, err := pricing.TotalPrice(input.Seats)
	if err != nil {
		return nil, err
	}

	// 分散ロックで同一座席集合への同時確定を直列化（座席をソートしてデッドロック防止）
	// 正しさはトランザクション側で担保されるため、Redis未接続時は省略される
	if s.lockManager != nil {
		lockKey := s.buildSeatLockKey(input.ShowID, input.Seats)
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countBooking("contended")
				return nil, seatlock.ErrLockConflict
			}
			s.countBooking("error")
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 全座席のロックが有効かつ呼び出し元保持であることを検証
	locks, err := s.lockRepo.GetForUpdate(ctx, tx, input.ShowID, input.Seats)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	held := make(map[string]*seatlock.SeatLock, len(locks))
	for _, l := range locks {
		held[l.SeatLabel] = l
	}
	now := time.Now()
	for _, seat := range input.Seats {
		l, ok := held[seat]
		if !ok || !l.HeldBy(input.UserID, now) {
			s.countBooking("not_held")
			return nil, booking.ErrNotHeldByCaller
		}
	}

	// ロック不変条件に対する追加の再検証: 既存予約との座席重複を確認する
	bookedSeats, err := s.bookingRepo.BookedSeatsInTx(ctx, tx, input.ShowID)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	for _, seat := range bookedSeats {
		if _, ok := seen[seat]; ok {
			s.countBooking("already_booked")
			return nil, booking.ErrSeatAlreadyBooked
		}
	}

	b := booking.NewBooking(input.ShowID, input.UserID, input.Seats, totalPrice, input.Metadata)
	b.ID = uuid.New().String()
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// 予約作成と消費ロックの削除を同一トランザクションでコミット
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.countBooking("error")
		return nil, err
	}
	if err := s.lockRepo.DeleteInTx(ctx, tx, input.ShowID, input.Seats); err != nil {
		s.countBooking("error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking("success")
	if s.metrics != nil {
		s.metrics.BookingConfirmDuration.Observe(time.Since(start).Seconds())
	}
	s.publish(ctx, input.ShowID)
	return b, nil
}

// GetBooking はIDから予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListUserBookings はユーザーの予約一覧を新しい順に取得する
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.ListByUser(ctx, userID, limit, offset)
}

// buildSeatLockKey は座席集合からロックキーを生成（ソートしてデッドロック防止）
func (s *BookingService) buildSeatLockKey(showID show.ID, seats []string) string {
	sorted := make([]string, len(seats))
	copy(sorted, seats)
	sort.Strings(sorted)
	return "shows:" + showID.String() + ":" + strings.Join(sorted, ",")
}

func (s *BookingService) publish(ctx context.Context, showID show.ID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, showID); err != nil {
		logger.Warn("変更通知の発行に失敗", zap.String("show_id", showID.String()), zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}
