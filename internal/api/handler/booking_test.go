package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/booking"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

func confirmedBooking() *booking.Booking {
	return &booking.Booking{
		ID:         "550e8400-e29b-41d4-a716-446655440000",
		ShowID:     show.ID(testShowID),
		UserID:     "user-1",
		Seats:      []string{"E3", "E4"},
		TotalPrice: 500,
		Status:     booking.StatusConfirmed,
		Metadata:   booking.Metadata{MovieTitle: "The Shawshank Redemption"},
		BookedAt:   time.Now(),
	}
}

func TestBookingHandler_Confirm(t *testing.T) {
	body := `{"seats":["E3","E4"],"movie_title":"The Shawshank Redemption","date":"2026-09-01","time":"19:30"}`

	t.Run("正常に予約を確定できる", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		service.On("Confirm", mock.Anything, mock.MatchedBy(func(input application.ConfirmBookingInput) bool {
			return input.ShowID == show.ID(testShowID) &&
				len(input.Seats) == 2 &&
				input.UserID == "user-1" &&
				input.Metadata.MovieTitle == "The Shawshank Redemption"
		})).Return(confirmedBooking(), nil)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("showID")
		c.SetParamValues(testShowID)

		require.NoError(t, h.Confirm(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_price":500`)
		service.AssertExpectations(t)
	})

	t.Run("ユーザーIDヘッダーがない場合は401", func(t *testing.T) {
		e := NewTestEcho()
		h := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("showID")
		c.SetParamValues(testShowID)

		assertHTTPError(t, h.Confirm(c), http.StatusUnauthorized)
	})

	t.Run("座席が空のリクエストは400", func(t *testing.T) {
		e := NewTestEcho()
		h := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seats":[]}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("showID")
		c.SetParamValues(testShowID)

		err := h.Confirm(c)

		require.Error(t, err)
	})

	t.Run("ロック未保持の場合は409", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		service.On("Confirm", mock.Anything, mock.Anything).Return(nil, booking.ErrNotHeldByCaller)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("showID")
		c.SetParamValues(testShowID)

		assertHTTPError(t, h.Confirm(c), http.StatusConflict)
	})

	t.Run("座席が予約済みの場合は409", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		service.On("Confirm", mock.Anything, mock.Anything).Return(nil, booking.ErrSeatAlreadyBooked)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("showID")
		c.SetParamValues(testShowID)

		assertHTTPError(t, h.Confirm(c), http.StatusConflict)
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	t.Run("予約を取得できる", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		b := confirmedBooking()
		service.On("GetBooking", mock.Anything, b.ID).Return(b, nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(b.ID)

		require.NoError(t, h.GetByID(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), b.ID)
	})

	t.Run("存在しない予約は404", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		service.On("GetBooking", mock.Anything, "missing").Return(nil, booking.ErrBookingNotFound)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		assertHTTPError(t, h.GetByID(c), http.StatusNotFound)
	})
}

func TestBookingHandler_ListMine(t *testing.T) {
	t.Run("予約一覧を取得できる", func(t *testing.T) {
		e := NewTestEcho()
		service := new(MockBookingService)
		h := NewBookingHandler(service)

		service.On("ListUserBookings", mock.Anything, "user-1", 10, 0).Return([]*booking.Booking{confirmedBooking()}, nil)

		req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.ListMine(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("ユーザーIDヘッダーがない場合は401", func(t *testing.T) {
		e := NewTestEcho()
		h := NewBookingHandler(new(MockBookingService))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assertHTTPError(t, h.ListMine(c), http.StatusUnauthorized)
	})
}
