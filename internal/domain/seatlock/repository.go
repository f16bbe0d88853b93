package seatlock

import (
	"context"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

// Repository は座席ロックリポジトリのインターフェース
type Repository interface {
	// Get は (上映回ID, 座席ラベル) からロックを取得する
	Get(ctx context.Context, showID show.ID, seatLabel string) (*SeatLock, error)

	// ListByShow は上映回の全ロックを取得する（期限切れ含む。除外は読み手の責務）
	ListByShow(ctx context.Context, showID show.ID) ([]*SeatLock, error)

	// ConditionalPut はロックを条件付きで書き込む
	// 現在の状態が「不在」「期限切れ」「同一ホルダー保持」のいずれかの場合のみ
	// 成功し、別ホルダーの有効なロックが存在する場合は ErrLockConflict を返す。
	// 判定と書き込みは単一の原子的操作として実行されなければならない。
	ConditionalPut(ctx context.Context, lock *SeatLock) error

	// Delete はロックを削除する（冪等。不在はエラーにしない）
	Delete(ctx context.Context, showID show.ID, seatLabel string) error

	// DeleteIfHolder は指定ホルダーが保持している場合のみロックを削除する
	// 不在または別ホルダー保持の場合は何もしない（エラーにしない）。
	DeleteIfHolder(ctx context.Context, showID show.ID, seatLabel, holderID string) error

	// GetForUpdate はトランザクション内でロックを取得し、コミットまで行を確保する
	GetForUpdate(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) ([]*SeatLock, error)

	// DeleteInTx はトランザクション内でロックを削除する
	DeleteInTx(ctx context.Context, tx transaction.Tx, showID show.ID, seatLabels []string) error
}
