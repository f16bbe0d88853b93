package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	redisinfra "github.com/Charangandrothu/SpotMySeat/internal/infrastructure/redis"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/metrics"
)

const snapshotCacheTTL = 10 * time.Second

// showState はスナップショット計算の元になる上映回の状態
// ロックは有効なもののみ（期限切れは読み取り時に除外済み）。
type showState struct {
	locks  map[string]lockInfo
	booked map[string]struct{}
}

type lockInfo struct {
	holderID  string
	expiresAt time.Time
}

// watcher は1つの購読を表す
type watcher struct {
	viewerID string
	fn       func(Snapshot)
}

// showFeed は上映回ごとの購読者集合
// mu が再計算と配信を直列化するため、購読者が受信済みのスナップショットより
// 古いものを観測することはない。
type showFeed struct {
	mu       sync.Mutex
	version  uint64
	nextID   int
	watchers map[int]*watcher
}

// AvailabilityService は空席状況の導出と購読配信を担う
// 上映回ごとのロック集合と予約集合を突き合わせ、期限切れロックを除外した
// スナップショットを購読者へ配信する。導出状態のみを所有し、真実は常に
// ストア側にある。
type AvailabilityService struct {
	lockRepo    seatlock.Repository
	bookingRepo booking.Repository
	notifier    FeedNotifier
	cache       *redisinfra.SnapshotCache
	metrics     *metrics.Metrics

	mu          sync.Mutex
	shows       map[show.ID]*showFeed
	unsubscribe func()
}

func NewAvailabilityService(
	lockRepo seatlock.Repository,
	bookingRepo booking.Repository,
	notifier FeedNotifier,
	cache *redisinfra.SnapshotCache,
	m *metrics.Metrics,
) *AvailabilityService {
	return &AvailabilityService{
		lockRepo:    lockRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		cache:       cache,
		metrics:     m,
		shows:       make(map[show.ID]*showFeed),
	}
}

// Start は変更通知の購読を開始する
func (s *AvailabilityService) Start(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	unsubscribe, err := s.notifier.Subscribe(ctx, func(showID show.ID) {
		s.refresh(context.WithoutCancel(ctx), showID)
	})
	if err != nil {
		return fmt.Errorf("変更通知の購読開始に失敗: %w", err)
	}
	s.unsubscribe = unsubscribe
	return nil
}

// Stop は変更通知の購読を終了する
func (s *AvailabilityService) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Watch は上映回の空席状況の購読を開始する
// 登録直後に現在のスナップショットを1回配信し、以後は下層の変更のたびに
// 再計算結果を配信する。返される関数で購読を終了する。
func (s *AvailabilityService) Watch(ctx context.Context, showID show.ID, viewerID string, fn func(Snapshot)) (func(), error) {
	s.mu.Lock()
	feed, ok := s.shows[showID]
	if !ok {
		feed = &showFeed{watchers: make(map[int]*watcher)}
		s.shows[showID] = feed
	}
	// s.mu を保持したまま feed.mu を取る。最後の購読者の解除が
	// フィードを map から外す前に登録が完了することを保証する。
	feed.mu.Lock()
	s.mu.Unlock()

	id := feed.nextID
	feed.nextID++
	feed.watchers[id] = &watcher{viewerID: viewerID, fn: fn}
	if s.metrics != nil {
		s.metrics.AvailabilityWatchers.Inc()
	}

	// 初回配信: 現在の状態をこの購読者だけに届ける
	state, err := s.loadState(ctx, showID)
	if err != nil {
		delete(feed.watchers, id)
		feed.mu.Unlock()
		if s.metrics != nil {
			s.metrics.AvailabilityWatchers.Dec()
		}
		return nil, err
	}
	fn(renderSnapshot(showID, feed.version, state, viewerID))
	feed.mu.Unlock()

	return func() {
		feed.mu.Lock()
		if _, ok := feed.watchers[id]; ok {
			delete(feed.watchers, id)
			if s.metrics != nil {
				s.metrics.AvailabilityWatchers.Dec()
			}
		}
		empty := len(feed.watchers) == 0
		feed.mu.Unlock()

		if empty {
			s.mu.Lock()
			if f, ok := s.shows[showID]; ok {
				f.mu.Lock()
				if len(f.watchers) == 0 {
					delete(s.shows, showID)
				}
				f.mu.Unlock()
			}
			s.mu.Unlock()
		}
	}, nil
}

// Snapshot は購読なしで現在の空席状況を1回だけ導出する
func (s *AvailabilityService) Snapshot(ctx context.Context, showID show.ID, viewerID string) (Snapshot, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, showID); err == nil {
			return renderSnapshot(showID, 0, stateFromCache(cached), viewerID), nil
		} else if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	state, err := s.loadState(ctx, showID)
	if err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, showID, stateToCache(state), snapshotCacheTTL); err != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(err))
		}
	}
	return renderSnapshot(showID, 0, state, viewerID), nil
}

// refresh は変更通知を受けて上映回のスナップショットを再計算・配信する
func (s *AvailabilityService) refresh(ctx context.Context, showID show.ID) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, showID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}

	s.mu.Lock()
	feed, ok := s.shows[showID]
	s.mu.Unlock()
	if !ok {
		return
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()
	if len(feed.watchers) == 0 {
		return
	}

	state, err := s.loadState(ctx, showID)
	if err != nil {
		logger.Error("スナップショット再計算に失敗", zap.String("show_id", showID.String()), zap.Error(err))
		return
	}

	feed.version++
	for _, w := range feed.watchers {
		w.fn(renderSnapshot(showID, feed.version, state, w.viewerID))
	}
}

// loadState はロック集合と予約集合を読み直し、期限切れロックを除外する
func (s *AvailabilityService) loadState(ctx context.Context, showID show.ID) (*showState, error) {
	locks, err := s.lockRepo.ListByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.ListByShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	state := &showState{
		locks:  make(map[string]lockInfo),
		booked: make(map[string]struct{}),
	}
	for _, l := range locks {
		if l.IsLive(now) {
			state.locks[l.SeatLabel] = lockInfo{holderID: l.HolderID, expiresAt: l.ExpiresAt}
		}
	}
	for _, b := range bookings {
		for _, seat := range b.Seats {
			state.booked[seat] = struct{}{}
		}
	}
	return state, nil
}

// renderSnapshot は上映回の状態を閲覧者視点のスナップショットに射影する
// booked がロックに優先する: 確定コミット後にロック削除前の残骸が見えた場合
// でも booked として解決される。
func renderSnapshot(showID show.ID, version uint64, state *showState, viewerID string) Snapshot {
	seats := make(map[string]SeatStatus, len(state.booked)+len(state.locks))
	for seat := range state.booked {
		seats[seat] = SeatBooked
	}
	for seat, l := range state.locks {
		if _, ok := seats[seat]; ok {
			continue
		}
		if l.holderID == viewerID {
			seats[seat] = SeatHeldByMe
		} else {
			seats[seat] = SeatLockedByOther
		}
	}
	return Snapshot{ShowID: showID, Version: version, Seats: seats}
}

func stateFromCache(cached *redisinfra.CachedShowState) *showState {
	now := time.Now()
	state := &showState{
		locks:  make(map[string]lockInfo, len(cached.Locks)),
		booked: make(map[string]struct{}, len(cached.BookedSeats)),
	}
	for seat, l := range cached.Locks {
		if now.Before(l.ExpiresAt) {
			state.locks[seat] = lockInfo{holderID: l.HolderID, expiresAt: l.ExpiresAt}
		}
	}
	for _, seat := range cached.BookedSeats {
		state.booked[seat] = struct{}{}
	}
	return state
}

func stateToCache(state *showState) *redisinfra.CachedShowState {
	cached := &redisinfra.CachedShowState{
		Locks:       make(map[string]redisinfra.CachedLock, len(state.locks)),
		BookedSeats: make([]string, 0, len(state.booked)),
	}
	for seat := range state.booked {
		cached.BookedSeats = append(cached.BookedSeats, seat)
	}
	for seat, l := range state.locks {
		cached.Locks[seat] = redisinfra.CachedLock{HolderID: l.holderID, ExpiresAt: l.expiresAt}
	}
	return cached
}
