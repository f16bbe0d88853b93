package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrNotHeldByCaller   = errors.New("座席ロックを保持していません")
	ErrSeatAlreadyBooked = errors.New("座席は既に予約済みです")
	ErrShowIDRequired    = errors.New("上映回IDは必須です")
	ErrUserIDRequired    = errors.New("ユーザーIDは必須です")
	ErrSeatsRequired     = errors.New("座席は1つ以上指定してください")
	ErrDuplicateSeats    = errors.New("座席が重複しています")
	ErrInvalidTotalPrice = errors.New("合計金額は0以上である必要があります")
)
