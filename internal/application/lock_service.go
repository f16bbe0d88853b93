package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/pricing"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/metrics"
)

// LockService は座席ロックの取得・解放を担う
type LockService struct {
	lockRepo seatlock.Repository
	notifier FeedNotifier
	metrics  *metrics.Metrics
	ttl      time.Duration
}

func NewLockService(lockRepo seatlock.Repository, notifier FeedNotifier, m *metrics.Metrics, ttl time.Duration) *LockService {
	if ttl <= 0 {
		ttl = seatlock.LockTTL
	}
	return &LockService{lockRepo: lockRepo, notifier: notifier, metrics: m, ttl: ttl}
}

// Acquire は座席ロックを取得する
// 別ホルダーの有効なロックが存在する場合は seatlock.ErrLockConflict。
// 同一ホルダーによる再取得は成功し、有効期限を延長する。
func (s *LockService) Acquire(ctx context.Context, showID show.ID, seatLabel, holderID string) (*seatlock.SeatLock, error) {
	if _, _, err := pricing.ParseLabel(seatLabel); err != nil {
		return nil, err
	}

	lock := seatlock.NewSeatLock(showID, seatLabel, holderID, s.ttl)
	if err := lock.Validate(); err != nil {
		return nil, err
	}

	if err := s.lockRepo.ConditionalPut(ctx, lock); err != nil {
		if errors.Is(err, seatlock.ErrLockConflict) {
			s.countLock("acquire", "conflict")
			return nil, err
		}
		s.countLock("acquire", "error")
		return nil, err
	}
	s.countLock("acquire", "success")

	s.publish(ctx, showID)
	return lock, nil
}

// Release は指定ホルダーが保持する座席ロックを解放する
// 不在・別ホルダー保持のロックに対する解放は設計上の無操作であり、
// エラーにしない（解放はセキュリティ境界ではなく助言的なクリーンアップ）。
func (s *LockService) Release(ctx context.Context, showID show.ID, seatLabel, holderID string) error {
	if err := s.lockRepo.DeleteIfHolder(ctx, showID, seatLabel, holderID); err != nil {
		s.countLock("release", "error")
		return err
	}
	s.countLock("release", "success")

	s.publish(ctx, showID)
	return nil
}

func (s *LockService) publish(ctx context.Context, showID show.ID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, showID); err != nil {
		// 通知の失敗はロック状態の正しさに影響しない。次の変更時に追いつく
		logger.Warn("変更通知の発行に失敗", zap.String("show_id", showID.String()), zap.Error(err))
	}
}

func (s *LockService) countLock(operation, status string) {
	if s.metrics != nil {
		s.metrics.SeatLocksTotal.WithLabelValues(operation, status).Inc()
	}
}
