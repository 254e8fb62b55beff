// Package ws is the websocket transport: one read pump and one write
// pump per connection, a buffered send channel, and a JSON envelope
// dispatched by type.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/app"
	"github.com/sorsu/tiktalk/internal/core"
)

const writeWait = 5 * time.Second

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Orch       *app.Orchestrator
	ReadLimit  int64
	PingPeriod time.Duration

	// reportLimiter throttles report submissions per origin address.
	reportLimiter *IPRateLimiter
}

func NewController(orch *app.Orchestrator, readLimit int64, pingPeriod time.Duration, reportLimiter *IPRateLimiter) *Controller {
	return &Controller{
		Orch:          orch,
		ReadLimit:     readLimit,
		PingPeriod:    pingPeriod,
		reportLimiter: reportLimiter,
	}
}

// wsConn implements core.EventConn over one websocket.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Event

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(ev core.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- ev:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
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

// Handle upgrades the request and runs the connection. The moderation
// gate is consulted before any session state exists: a banned origin
// gets the ban notice and is cut off right here.
func (ctl *Controller) Handle(c *gin.Context) {
	// The cookie token is browser-scoped and shared across tabs; session
	// identity is per connection, never reused. Each connection gets a
	// fresh id, prefixed by the token when one exists.
	sid := core.SessionID(uuid.NewString())
	if token := c.GetString("client_token"); token != "" {
		sid = core.SessionID(token + "." + uuid.NewString())
	}
	ip := ClientIP(c.Request)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	if status := ctl.Orch.Gate.Check(ip); status.Banned {
		log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("banned origin rejected")
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteJSON(core.Event{Type: core.EvBanned, Data: status})
		_ = ws.Close()
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Event, 32),
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("new connection")

	go ctl.writePump(conn)
	go ctl.readPump(sid, ip, conn)
}

func (ctl *Controller) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(sid core.SessionID, ip string, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("connection closing")
		ctl.Orch.Disconnect(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("read error")
			}
			return
		}
		ctl.dispatch(sid, ip, c, data)
	}
}

// envelope is the inbound frame shape.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (ctl *Controller) sendError(c *wsConn, err error) {
	_ = c.TrySend(core.Event{Type: core.EvError, Data: core.ErrorPayload{Message: err.Error()}})
}
