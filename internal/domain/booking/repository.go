package booking

import (
	"context"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// ListByShow は上映回の全予約を取得する
	ListByShow(ctx context.Context, showID show.ID) ([]*Booking, error)

	// ListByUser はユーザーの予約一覧を取得する（bookedAt 降順）
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// BookedSeatsInTx はトランザクション内で上映回の予約済み座席ラベル集合を取得する
	// 確定処理のロック不変条件に対する追加の再検証に使用する。
	BookedSeatsInTx(ctx context.Context, tx transaction.Tx, showID show.ID) ([]string, error)
}
