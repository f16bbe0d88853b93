package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/metrics"
)

// ExpiredLockDeleter は期限切れ座席ロックを削除するインターフェース
type ExpiredLockDeleter interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// ExpiredLockSweeper は期限切れ座席ロックを掃除するワーカー
// 読み手は常に有効期限を遅延評価するため、掃除は観測可能な振る舞いを
// 変えない。放置された行がストアに溜まり続けるのを防ぐだけの最適化。
type ExpiredLockSweeper struct {
	deleter  ExpiredLockDeleter
	interval time.Duration
	metrics  *metrics.Metrics
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiredLockSweeper は新しいスイーパーを作成
func NewExpiredLockSweeper(deleter ExpiredLockDeleter, interval time.Duration, m *metrics.Metrics) *ExpiredLockSweeper {
	return &ExpiredLockSweeper{
		deleter:  deleter,
		interval: interval,
		metrics:  m,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *ExpiredLockSweeper) Start(ctx context.Context) {
	logger.Info("期限切れロックスイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れロックスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れロックスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpiredLockSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れロックを削除
func (s *ExpiredLockSweeper) sweep(ctx context.Context) {
	count, err := s.deleter.DeleteExpired(ctx)
	if err != nil {
		logger.Error("期限切れロックの掃除に失敗", zap.Error(err))
		return
	}

	if count > 0 {
		logger.Info("期限切れロックを削除", zap.Int("count", count))
		if s.metrics != nil {
			s.metrics.ExpiredLocksSwept.Add(float64(count))
		}
	} else {
		logger.Debug("期限切れロックなし")
	}
}
