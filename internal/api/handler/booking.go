package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/pricing"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type ConfirmBookingRequest struct {
	Seats      []string `json:"seats" validate:"required,min=1" example:"E3,E4"`
	MovieTitle string   `json:"movie_title" example:"The Shawshank Redemption"`
	Date       string   `json:"date" example:"2026-09-01"`
	Time       string   `json:"time" example:"19:30"`
	Poster     string   `json:"poster"`
}

type BookingResponse struct {
	ID         string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ShowID     string    `json:"show_id" example:"tt0111161_2026-09-01_19:30"`
	UserID     string    `json:"user_id" example:"user-123"`
	Seats      []string  `json:"seats" example:"E3,E4"`
	TotalPrice int       `json:"total_price" example:"500"`
	Status     string    `json:"status" example:"confirmed"`
	MovieTitle string    `json:"movie_title,omitempty"`
	Date       string    `json:"date,omitempty"`
	Time       string    `json:"time,omitempty"`
	Poster     string    `json:"poster,omitempty"`
	BookedAt   time.Time `json:"booked_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, ShowID: b.ShowID.String(), UserID: b.UserID,
		Seats: b.Seats, TotalPrice: b.TotalPrice, Status: string(b.Status),
		MovieTitle: b.Metadata.MovieTitle, Date: b.Metadata.Date,
		Time: b.Metadata.Time, Poster: b.Metadata.Poster,
		BookedAt: b.BookedAt,
	}
}

// Confirm godoc
// @Summary 予約を確定
// @Description 保持中の座席ロックを1件の予約へ原子的に変換します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param showID path string true "上映回ID"
// @Param request body ConfirmBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "ロック未保持・期限切れ、または座席が予約済み"
// @Router /shows/{showID}/bookings [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	showID, err := show.Parse(c.Param("showID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req ConfirmBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Confirm(c.Request().Context(), application.ConfirmBookingInput{
		ShowID: showID,
		Seats:  req.Seats,
		UserID: userID,
		Metadata: booking.Metadata{
			MovieTitle: req.MovieTitle,
			Date:       req.Date,
			Time:       req.Time,
			Poster:     req.Poster,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotHeldByCaller),
			errors.Is(err, booking.ErrSeatAlreadyBooked),
			errors.Is(err, seatlock.ErrLockConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, booking.ErrSeatsRequired),
			errors.Is(err, booking.ErrDuplicateSeats),
			errors.Is(err, pricing.ErrInvalidSeatLabel):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListMine godoc
// @Summary ユーザーの予約一覧を取得
// @Description ログインユーザーの予約一覧を新しい順に取得します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.ListUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}
