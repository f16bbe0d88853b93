package show

import (
	"errors"
	"fmt"
	"strings"
)

// ID は上映回の識別子
// 上映回は (映画ID, 日付, 開始時刻) の組で一意に定まり、
// "movieID_date_startTime" 形式の複合キーとして扱う。
// 上映回自体の永続レコードは存在せず、ロックや予約が参照した時点で暗黙に存在する。
type ID string

var (
	ErrInvalidShowID = errors.New("上映回IDの形式が不正です")
)

// New は構成要素から上映回IDを生成する
func New(movieID, date, startTime string) (ID, error) {
	if movieID == "" || date == "" || startTime == "" {
		return "", ErrInvalidShowID
	}
	if strings.Contains(movieID, "_") {
		return "", ErrInvalidShowID
	}
	return ID(fmt.Sprintf("%s_%s_%s", movieID, date, startTime)), nil
}

// Parse は複合キー文字列を検証してIDに変換する
func Parse(raw string) (ID, error) {
	parts := strings.Split(raw, "_")
	if len(parts) != 3 {
		return "", ErrInvalidShowID
	}
	for _, p := range parts {
		if p == "" {
			return "", ErrInvalidShowID
		}
	}
	return ID(raw), nil
}

// MovieID は映画IDを返す
func (id ID) MovieID() string { return id.part(0) }

// Date は上映日を返す
func (id ID) Date() string { return id.part(1) }

// StartTime は開始時刻を返す
func (id ID) StartTime() string { return id.part(2) }

func (id ID) String() string { return string(id) }

func (id ID) part(i int) string {
	parts := strings.Split(string(id), "_")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}
