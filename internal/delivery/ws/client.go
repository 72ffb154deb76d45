package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 8 << 10
	sendBufferSize = 32
	presenceWait   = 5 * time.Second
)

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Handler upgrades authenticated requests and pumps frames between the
// socket and the chat use case.
type Handler struct {
	hub         *Hub
	chatUseCase *chat.ChatUseCase
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// NewHandler builds a socket handler. allowedOrigins is matched exactly
// against the Origin header; "*" admits every origin and an empty list
// keeps the same-origin check of the upgrader.
func NewHandler(hub *Hub, chatUseCase *chat.ChatUseCase, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:         hub,
		chatUseCase: chatUseCase,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	set := lo.SliceToMap(allowed, func(origin string) (string, struct{}) {
		return strings.TrimRight(origin, "/"), struct{}{}
	})
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

// ServeWS handles GET /chat/ws
// @Summary Open a chat socket
// @Tags chat
// @Security BearerAuth
// @Param access_token query string false "Token when headers cannot be set"
// @Router /chat/ws [get]
func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	cl := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	h.setPresence(userID, h.chatUseCase.Connect)
	h.hub.register(cl)
	h.logger.Debug("socket opened", zap.Int64("user_id", userID))

	go h.writePump(cl)
	h.readPump(c.Request.Context(), cl)

	h.hub.unregister(cl)
	h.setPresence(userID, h.chatUseCase.Disconnect)
	h.logger.Debug("socket closed", zap.Int64("user_id", userID))
}

func (h *Handler) readPump(ctx context.Context, cl *client) {
	defer cl.conn.Close()

	cl.conn.SetReadLimit(maxFrameSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("socket read failed", zap.Int64("user_id", cl.userID), zap.Error(err))
			}
			return
		}

		var in InboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			h.reply(cl, OutboundFrame{Type: FrameTypeError, Error: "malformed frame"})
			continue
		}

		msg, err := h.chatUseCase.Send(ctx, cl.userID, in.To, in.Body)
		if err != nil {
			h.reply(cl, OutboundFrame{Type: FrameTypeError, Error: frameError(err)})
			continue
		}
		h.reply(cl, OutboundFrame{Type: FrameTypeAck, Message: msg})
	}
}

func (h *Handler) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues a frame for this socket only.
func (h *Handler) reply(cl *client, frame OutboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to encode frame", zap.Error(err))
		return
	}
	select {
	case cl.send <- payload:
	default:
		h.logger.Warn("dropping reply for slow client", zap.Int64("user_id", cl.userID))
	}
}

func (h *Handler) setPresence(userID int64, fn func(context.Context, int64) error) {
	ctx, cancel := context.WithTimeout(context.Background(), presenceWait)
	defer cancel()
	if err := fn(ctx, userID); err != nil {
		h.logger.Warn("failed to update presence", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func frameError(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Field + ": " + verr.Reason
	}
	for _, known := range []error{domain.ErrNotConnected, domain.ErrCannotTargetSelf} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "failed to send message"
}
