package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/domain/show"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
)

const (
	// WebSocket書き込みの猶予時間
	writeWait = 10 * time.Second

	// pong応答の待ち時間。pingはこれより短い周期で送る
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type AvailabilityHandler struct {
	service AvailabilityServiceInterface
}

func NewAvailabilityHandler(s AvailabilityServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{service: s}
}

type SnapshotResponse struct {
	ShowID  string            `json:"show_id" example:"tt0111161_2026-09-01_19:30"`
	Version uint64            `json:"version"`
	Seats   map[string]string `json:"seats"`
}

func toSnapshotResponse(s application.Snapshot) SnapshotResponse {
	seats := make(map[string]string, len(s.Seats))
	for label, status := range s.Seats {
		seats[label] = string(status)
	}
	return SnapshotResponse{ShowID: s.ShowID.String(), Version: s.Version, Seats: seats}
}

// Snapshot godoc
// @Summary 空席状況を取得
// @Description 上映回の現在の空席状況を返します。記載のない座席は available です
// @Tags availability
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param showID path string true "上映回ID"
// @Success 200 {object} SnapshotResponse
// @Failure 400 {object} map[string]string
// @Router /shows/{showID}/availability [get]
func (h *AvailabilityHandler) Snapshot(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	showID, err := show.Parse(c.Param("showID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := h.service.Snapshot(c.Request().Context(), showID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toSnapshotResponse(snapshot))
}

// Watch godoc
// @Summary 空席状況の購読（WebSocket）
// @Description 接続直後に現在のスナップショットを送信し、以後は変更のたびに再計算結果を送信します
// @Tags availability
// @Param X-User-ID header string true "ユーザーID"
// @Param showID path string true "上映回ID"
// @Router /shows/{showID}/availability/ws [get]
func (h *AvailabilityHandler) Watch(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		userID = c.QueryParam("user_id")
	}
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	showID, err := show.Parse(c.Param("showID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	// 購読コールバックは配信側のゴルーチンで呼ばれるため、チャネル経由で
	// 書き込みゴルーチンへ渡す。バッファが詰まったら最も古いものを捨てる:
	// 新しいスナップショットは古いものを常に包含する
	send := make(chan application.Snapshot, 16)
	unsubscribe, err := h.service.Watch(c.Request().Context(), showID, userID, func(s application.Snapshot) {
		for {
			select {
			case send <- s:
				return
			default:
				select {
				case <-send:
				default:
				}
			}
		}
	})
	if err != nil {
		conn.Close()
		return err
	}

	go h.writePump(conn, send)

	// 読み取りループは切断検出のためだけに回す
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	unsubscribe()
	close(send)
	return nil
}

func (h *AvailabilityHandler) writePump(conn *websocket.Conn, send <-chan application.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-send:
			if !ok {
				conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toSnapshotResponse(snapshot)); err != nil {
				logger.Debug("WebSocket書き込みに失敗", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
