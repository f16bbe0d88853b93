package seatlock

import "errors"

// SeatLock ドメインのエラー定義
var (
	ErrLockConflict      = errors.New("座席は他のユーザーによってロックされています")
	ErrLockNotFound      = errors.New("座席ロックが見つかりません")
	ErrShowIDRequired    = errors.New("上映回IDは必須です")
	ErrSeatLabelRequired = errors.New("座席ラベルは必須です")
	ErrHolderIDRequired  = errors.New("ホルダーIDは必須です")
)
