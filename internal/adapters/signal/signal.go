package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/app"
	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

// SignalWSController routes participant intents to room sessions and fans the
// resulting broadcasts back out over the members' connections.
type SignalWSController struct {
	Registry       *app.Registry
	Recommender    core.Recommender
	CatalogTimeout time.Duration
	ReadLimit      int64
	CreateLimiter  *RoomRateLimiter
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// broadcastRoom delivers v to every member of the room. Slow consumers are
// skipped; the periodic reconcile on the client recovers them.
func (ctl *SignalWSController) broadcastRoom(roomID domain.RoomID, v any) {
	for _, sid := range ctl.Registry.MembersOf(roomID) {
		if conn, ok := ctl.Registry.Connection(sid); ok {
			ctl.sendJSON(conn, v)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.BindSignal(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
