package pricing

import (
	"errors"
	"strconv"
)

// Tier は座席の料金区分を表す
type Tier string

const (
	TierRegular  Tier = "Regular"
	TierPremium  Tier = "Premium"
	TierRecliner Tier = "Recliner"
)

const (
	priceRegular  = 150
	pricePremium  = 250
	priceRecliner = 400
)

var (
	ErrInvalidSeatLabel = errors.New("座席ラベルの形式が不正です")
)

// PriceFor は座席ラベルから料金区分と価格を返す
// ラベルは行文字（大文字1字）+ 列番号（正の整数）で構成される。
// 区分は行ごとに固定: E〜H が Premium、I〜J が Recliner、それ以外は Regular。
func PriceFor(seatLabel string) (Tier, int, error) {
	row, _, err := ParseLabel(seatLabel)
	if err != nil {
		return "", 0, err
	}
	switch {
	case row == 'I' || row == 'J':
		return TierRecliner, priceRecliner, nil
	case row >= 'E' && row <= 'H':
		return TierPremium, pricePremium, nil
	default:
		return TierRegular, priceRegular, nil
	}
}

// TotalPrice は座席ラベル集合の合計金額を返す
func TotalPrice(seatLabels []string) (int, error) {
	total := 0
	for _, label := range seatLabels {
		_, price, err := PriceFor(label)
		if err != nil {
			return 0, err
		}
		total += price
	}
	return total, nil
}

// ParseLabel は座席ラベルを行文字と列番号に分解する
func ParseLabel(seatLabel string) (byte, int, error) {
	if len(seatLabel) < 2 {
		return 0, 0, ErrInvalidSeatLabel
	}
	row := seatLabel[0]
	if row < 'A' || row > 'Z' {
		return 0, 0, ErrInvalidSeatLabel
	}
	col, err := strconv.Atoi(seatLabel[1:])
	if err != nil || col <= 0 {
		return 0, 0, ErrInvalidSeatLabel
	}
	return row, col, nil
}
