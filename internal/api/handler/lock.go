package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Charangandrothu/SpotMySeat/internal/domain/pricing"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/seatlock"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
)

type LockHandler struct {
	service LockServiceInterface
}

func NewLockHandler(s LockServiceInterface) *LockHandler {
	return &LockHandler{service: s}
}

type AcquireLockRequest struct {
	SeatLabel string `json:"seat_label" validate:"required" example:"E3"`
}

type LockResponse struct {
	ShowID    string    `json:"show_id" example:"tt0111161_2026-09-01_19:30"`
	SeatLabel string    `json:"seat_label" example:"E3"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Acquire godoc
// @Summary 座席ロックを取得
// @Description 座席を一定時間仮押さえします。自分の保持中ロックの再取得は期限を延長します
// @Tags locks
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param showID path string true "上映回ID"
// @Param request body AcquireLockRequest true "座席情報"
// @Success 201 {object} LockResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が他のユーザーによってロック済み"
// @Router /shows/{showID}/locks [post]
func (h *LockHandler) Acquire(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	showID, err := show.Parse(c.Param("showID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req AcquireLockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lock, err := h.service.Acquire(c.Request().Context(), showID, req.SeatLabel, userID)
	if err != nil {
		switch {
		case errors.Is(err, seatlock.ErrLockConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, pricing.ErrInvalidSeatLabel):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, LockResponse{
		ShowID:    lock.ShowID.String(),
		SeatLabel: lock.SeatLabel,
		ExpiresAt: lock.ExpiresAt,
	})
}

// Release godoc
// @Summary 座席ロックを解放
// @Description 自分の保持するロックを解放します。不在・他ユーザー保持の場合も成功を返します（冪等）
// @Tags locks
// @Param X-User-ID header string true "ユーザーID"
// @Param showID path string true "上映回ID"
// @Param seatLabel path string true "座席ラベル"
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /shows/{showID}/locks/{seatLabel} [delete]
func (h *LockHandler) Release(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	showID, err := show.Parse(c.Param("showID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Release(c.Request().Context(), showID, c.Param("seatLabel"), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
