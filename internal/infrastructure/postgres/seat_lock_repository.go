package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

type seatLockRow struct {
	ShowID    string    `db:"show_id"`
	SeatLabel string    `db:"seat_label"`
	HolderID  string    `db:"holder_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *seatLockRow) toEntity() *seatlock.SeatLock {
	return &seatlock.SeatLock{
		ShowID:    show.ID(r.ShowID),
		SeatLabel: r.SeatLabel,
		HolderID:  r.HolderID,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type SeatLockRepository struct{ db *sqlx.DB }

func NewSeatLockRepository(db *sqlx.DB) *SeatLockRepository {
	return &SeatLockRepository{db: db}
}

func (r *SeatLockRepository) Get(ctx context.Context, showID show.ID, seatLabel string) (*seatlock.SeatLock, error) {
	query := `SELECT show_id, seat_label, holder_id, expires_at, created_at, updated_at FROM seat_locks WHERE show_id = $1 AND seat_label = $2`
	var row seatLockRow
	if err := r.db.GetContext(ctx, &row, query, string(showID), seatLabel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seatlock.ErrLockNotFound
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatLockRepository) ListByShow(ctx context.Context, showID show.ID) ([]*seatlock.SeatLock, error) {
	query := `SELECT show_id, seat_label, holder_id, expires_at, created_at, updated_at FROM seat_locks WHERE show_id = $1 ORDER BY seat_label`
	var rows []seatLockRow
	if err := r.db.SelectContext(ctx, &rows, query, string(showID)); err != nil {
		return nil, fmt.Errorf("ロック一覧取得に失敗: %w", err)
	}
	locks := make([]*seatlock.SeatLock, len(rows))
	for i, row := range rows {
		locks[i] = row.toEntity()
	}
	return locks, nil
}

// ConditionalPut は条件付きUPSERTを単一文で実行する
// 既存行が「期限切れ」または「同一ホルダー」の場合のみ DO UPDATE の WHERE が
// 成立する。別ホルダーの有効なロックが残っている場合は更新行数が0になるため
// ErrLockConflict を返す。判定と書き込みの原子性はストア側の行単位の
// 直列化に委ねる。
func (r *SeatLockRepository) ConditionalPut(ctx context.Context, lock *seatlock.SeatLock) error {
	query := `
		INSERT INTO seat_locks (show_id, seat_label, holder_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (show_id, seat_label) DO UPDATE
		SET holder_id = EXCLUDED.holder_id,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE seat_locks.expires_at <= NOW() OR seat_locks.holder_id = EXCLUDED.holder_id`
	result, err := r.db.ExecContext(ctx, query,
		string(lock.ShowID), lock.SeatLabel, lock.HolderID, lock.ExpiresAt, lock.CreatedAt, lock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ロック書き込みに失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seatlock.ErrLockConflict
	}
	return nil
}

func (r *SeatLockRepository) Delete(ctx context.Context, showID show.ID, seatLabel string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM seat_locks WHERE show_id = $1 AND seat_label = $2`, string(showID), seatLabel)
	if err != nil {
		return fmt.Errorf("ロック削除に失敗: %w", err)
	}
	return nil
}

func (r *SeatLockRepository) DeleteIfHolder(ctx context.Context, showID show.ID, seatLabel, holderID string) error {
	// 不在・別ホルダー保持は何もしない（解放は助言的なクリーンアップ）
	_, err := r.db.ExecContext(ctx, `DELETE FROM seat_locks WHERE show_id = $1 AND seat_label = $2 AND holder_id = $3`, string(showID), seatLabel, holderID)
	if err != nil {
		return fmt.Errorf("ロック削除に失敗: %w", err)
	}
	return nil
}

func (r *SeatLockRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) ([]*seatlock.SeatLock, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションの型が不正です")
	}
	query := `SELECT show_id, seat_label, holder_id, expires_at, created_at, updated_at FROM seat_locks WHERE show_id = $1 AND seat_label = ANY($2) FOR UPDATE`
	var rows []seatLockRow
	if err := sqlxTx.SelectContext(ctx, &rows, query, string(showID), pq.Array(seatLabels)); err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	locks := make([]*seatlock.SeatLock, len(rows))
	for i, row := range rows {
		locks[i] = row.toEntity()
	}
	return locks, nil
}

func (r *SeatLockRepository) DeleteInTx(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) error {
	if len(seatLabels) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}
	_, err := sqlxTx.ExecContext(ctx, `DELETE FROM seat_locks WHERE show_id = $1 AND seat_label = ANY($2)`, string(showID), pq.Array(seatLabels))
	if err != nil {
		return fmt.Errorf("ロック削除に失敗: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れロックを一括削除する（掃除ワーカー用）
// 読み手は常に expires_at を遅延評価するため、これは観測可能な振る舞いを
// 変えない最適化にすぎない。
func (r *SeatLockRepository) DeleteExpired(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seat_locks WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("期限切れロック削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

var _ seatlock.Repository = (*SeatLockRepository)(nil)
