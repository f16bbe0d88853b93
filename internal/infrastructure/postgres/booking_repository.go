package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/transaction"
)

type bookingRow struct {
	ID         string         `db:"id"`
	ShowID     string         `db:"show_id"`
	UserID     string         `db:"user_id"`
	Seats      pq.StringArray `db:"seats"`
	TotalPrice int            `db:"total_price"`
	Status     string         `db:"status"`
	MovieTitle string         `db:"movie_title"`
	ShowDate   string         `db:"show_date"`
	ShowTime   string         `db:"show_time"`
	Poster     string         `db:"poster"`
	BookedAt   time.Time      `db:"booked_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:         r.ID,
		ShowID:     show.ID(r.ShowID),
		UserID:     r.UserID,
		Seats:      []string(r.Seats),
		TotalPrice: r.TotalPrice,
		Status:     booking.Status(r.Status),
		Metadata: booking.Metadata{
			MovieTitle: r.MovieTitle,
			Date:       r.ShowDate,
			Time:       r.ShowTime,
			Poster:     r.Poster,
		},
		BookedAt: r.BookedAt,
	}
}

const bookingColumns = `id, show_id, user_id, seats, total_price, status, movie_title, show_date, show_time, poster, booked_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}
	query := `INSERT INTO bookings (id, show_id, user_id, seats, total_price, status, movie_title, show_date, show_time, poster, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := sqlxTx.ExecContext(ctx, query,
		b.ID, string(b.ShowID), b.UserID, pq.Array(b.Seats), b.TotalPrice, string(b.Status),
		b.Metadata.MovieTitle, b.Metadata.Date, b.Metadata.Time, b.Metadata.Poster, b.BookedAt)
	if err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) ListByShow(ctx context.Context, showID show.ID) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE show_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, string(showID)); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY booked_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

func (r *BookingRepository) BookedSeatsInTx(ctx context.Context, tx transaction.Tx, showID show.ID) ([]string, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションの型が不正です")
	}
	var seats []string
	query := `SELECT unnest(seats) FROM bookings WHERE show_id = $1`
	if err := sqlxTx.SelectContext(ctx, &seats, query, string(showID)); err != nil {
		return nil, fmt.Errorf("予約済み座席取得に失敗: %w", err)
	}
	return seats, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
