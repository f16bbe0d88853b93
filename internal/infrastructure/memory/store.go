// Package memory はミューテックスで保護されたインメモリ実装を提供する
// 単一プロセスでの起動やテストで、トランザクショナルストアの原子性契約を
// 外部ミドルウェアなしに満たすための実装。書き込みは全体で直列化される。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

type lockKey struct {
	showID    show.ID
	seatLabel string
}

// Store は座席ロックと予約を保持するインメモリストア
type Store struct {
	mu       sync.Mutex
	locks    map[lockKey]seatlock.SeatLock
	bookings map[string]booking.Booking
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	return &Store{
		locks:    make(map[lockKey]seatlock.SeatLock),
		bookings: make(map[string]booking.Booking),
	}
}

// --- transaction ---

// Tx はストア全体のミューテックスを保持するトランザクション
// Begin から Commit/Rollback までストアの書き込みを独占するため、
// トランザクション内の検証と書き込みに他の書き込みが割り込むことはない。
type Tx struct {
	store   *Store
	pending []func()
	done    bool
}

func (t *Tx) Commit() error {
	if t.done {
		return fmt.Errorf("トランザクションは終了済みです")
	}
	for _, apply := range t.pending {
		apply()
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.pending = nil
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// TxManager は Store 用のトランザクションマネージャー
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	m.store.mu.Lock()
	return &Tx{store: m.store}, nil
}

func unwrapTx(tx transaction.Tx) (*Tx, error) {
	memTx, ok := tx.(*Tx)
	if !ok || memTx.done {
		return nil, fmt.Errorf("トランザクションの型が不正です")
	}
	return memTx, nil
}

// --- seat lock repository ---

// SeatLockRepository は Store に対する seatlock.Repository 実装
type SeatLockRepository struct {
	store *Store
}

func NewSeatLockRepository(store *Store) *SeatLockRepository {
	return &SeatLockRepository{store: store}
}

func (r *SeatLockRepository) Get(ctx context.Context, showID show.ID, seatLabel string) (*seatlock.SeatLock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.locks[lockKey{showID, seatLabel}]
	if !ok {
		return nil, seatlock.ErrLockNotFound
	}
	copied := l
	return &copied, nil
}

func (r *SeatLockRepository) ListByShow(ctx context.Context, showID show.ID) ([]*seatlock.SeatLock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var locks []*seatlock.SeatLock
	for key, l := range r.store.locks {
		if key.showID == showID {
			copied := l
			locks = append(locks, &copied)
		}
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].SeatLabel < locks[j].SeatLabel })
	return locks, nil
}

func (r *SeatLockRepository) ConditionalPut(ctx context.Context, lock *seatlock.SeatLock) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := lockKey{lock.ShowID, lock.SeatLabel}
	stored := *lock
	if existing, ok := r.store.locks[key]; ok {
		if existing.IsLive(time.Now()) && existing.HolderID != lock.HolderID {
			return seatlock.ErrLockConflict
		}
		// 既存キーの上書きでは CreatedAt を引き継ぐ（ON CONFLICT 時の upsert と同じ挙動）
		stored.CreatedAt = existing.CreatedAt
	}
	r.store.locks[key] = stored
	return nil
}

func (r *SeatLockRepository) Delete(ctx context.Context, showID show.ID, seatLabel string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.locks, lockKey{showID, seatLabel})
	return nil
}

func (r *SeatLockRepository) DeleteIfHolder(ctx context.Context, showID show.ID, seatLabel, holderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := lockKey{showID, seatLabel}
	if existing, ok := r.store.locks[key]; ok && existing.HolderID == holderID {
		delete(r.store.locks, key)
	}
	return nil
}

func (r *SeatLockRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) ([]*seatlock.SeatLock, error) {
	memTx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	var locks []*seatlock.SeatLock
	for _, label := range seatLabels {
		if l, ok := memTx.store.locks[lockKey{showID, label}]; ok {
			copied := l
			locks = append(locks, &copied)
		}
	}
	return locks, nil
}

func (r *SeatLockRepository) DeleteInTx(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) error {
	memTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	labels := append([]string(nil), seatLabels...)
	memTx.pending = append(memTx.pending, func() {
		for _, label := range labels {
			delete(memTx.store.locks, lockKey{showID, label})
		}
	})
	return nil
}

// DeleteExpired は期限切れロックを一括削除する（掃除ワーカー用）
func (r *SeatLockRepository) DeleteExpired(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	count := 0
	for key, l := range r.store.locks {
		if l.IsExpired(now) {
			delete(r.store.locks, key)
			count++
		}
	}
	return count, nil
}

var _ seatlock.Repository = (*SeatLockRepository)(nil)

// --- booking repository ---

// BookingRepository は Store に対する booking.Repository 実装
type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	memTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	copied := *b
	copied.Seats = append([]string(nil), b.Seats...)
	memTx.pending = append(memTx.pending, func() {
		memTx.store.bookings[copied.ID] = copied
	})
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	copied := b
	return &copied, nil
}

func (r *BookingRepository) ListByShow(ctx context.Context, showID show.ID) ([]*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var bookings []*booking.Booking
	for _, b := range r.store.bookings {
		if b.ShowID == showID {
			copied := b
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var bookings []*booking.Booking
	for _, b := range r.store.bookings {
		if b.UserID == userID {
			copied := b
			bookings = append(bookings, &copied)
		}
	}
	// bookedAt 降順
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].BookedAt.After(bookings[j].BookedAt) })
	if offset >= len(bookings) {
		return nil, nil
	}
	bookings = bookings[offset:]
	if limit > 0 && limit < len(bookings) {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

func (r *BookingRepository) BookedSeatsInTx(ctx context.Context, tx transaction.Tx, showID show.ID) ([]string, error) {
	memTx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	var seats []string
	for _, b := range memTx.store.bookings {
		if b.ShowID == showID {
			seats = append(seats, b.Seats...)
		}
	}
	return seats, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
