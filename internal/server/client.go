package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/network"
	"github.com/lumpybrain/DedMult/pkg/api"
	"github.com/lumpybrain/DedMult/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	requestTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и сессией матча.
//
// readPump - единственный, кто пишет в send, и единственный, кто его
// закрывает. Рассылку хаба writePump получает через subscribed.
// player меняет и читает только readPump.
type Client struct {
	ID      uuid.UUID
	session *engine.Session
	hub     *network.Broadcaster
	conn    *websocket.Conn
	limiter *rate.Limiter

	send       chan api.ServerResponse
	subscribed chan chan api.ServerResponse

	player types.EntityID
}

func NewClient(session *engine.Session, hub *network.Broadcaster, conn *websocket.Conn, limits config.RateLimitConfig) *Client {
	c := &Client{
		ID:         uuid.New(),
		session:    session,
		hub:        hub,
		conn:       conn,
		send:       make(chan api.ServerResponse, 16),
		subscribed: make(chan chan api.ServerResponse, 1),
	}
	if limits.Enabled {
		c.limiter = rate.NewLimiter(rate.Limit(limits.MessagesPerSecond), limits.BurstSize)
	}
	return c
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "server",
		"client":    c.ID.String(),
		"player":    c.player.String(),
	})
}

// submit передает сообщение в сессию. Если сессия не ответила, клиент
// получает ERROR.
func (c *Client) submit(action domain.ActionType, cmd api.ClientCommand) api.ServerResponse {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := c.session.Submit(ctx, domain.InternalCommand{
		Action:  action,
		Player:  c.player,
		Payload: cmd.Payload,
	})
	if err != nil {
		return api.ServerResponse{
			Type:      api.TypeError,
			Action:    cmd.Action,
			Error:     err.Error(),
			ErrorKind: string(errs.KindInternal),
		}
	}
	return resp
}

// readPump читает сообщения клиента. Первое сообщение обязано быть JOIN.
func (c *Client) readPump() {
	defer func() {
		if !c.player.IsNil() {
			c.hub.Unregister(c.player)
			c.submit(domain.ActionLeave, api.ClientCommand{Action: domain.ActionLeave.String()})
		}
		close(c.send)
		c.log().Info("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log().WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE
	var join api.ClientCommand
	if err := c.conn.ReadJSON(&join); err != nil {
		c.log().WithError(err).Warn("Handshake failed")
		return
	}
	if domain.ParseAction(join.Action) != domain.ActionJoin {
		c.send <- api.ServerResponse{
			Type:      api.TypeError,
			Action:    join.Action,
			Error:     "first message must be JOIN",
			ErrorKind: string(errs.KindForbidden),
		}
		return
	}

	welcome := c.submit(domain.ActionJoin, join)
	c.send <- welcome
	if welcome.Type != api.TypeWelcome {
		return
	}
	c.player = welcome.PlayerID
	c.subscribed <- c.hub.Register(c.player)
	c.log().WithField("team", welcome.Team).Info("Client joined")

	// 2. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().WithError(err).Warn("WS error")
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.log().WithField("action", cmd.Action).Warn("Rate limit exceeded")
			c.send <- api.ServerResponse{
				Type:      api.TypeError,
				Action:    cmd.Action,
				Error:     "rate limit exceeded",
				ErrorKind: "rate_limited",
			}
			continue
		}

		c.send <- c.submit(domain.ParseAction(cmd.Action), cmd)
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	var updates chan api.ServerResponse
	for {
		var (
			message api.ServerResponse
			ok      bool
		)

		select {
		case updates = <-c.subscribed:
			continue
		case message, ok = <-c.send:
			if !ok {
				c.writeClose()
				return
			}
		case message, ok = <-updates:
			if !ok {
				updates = nil
				continue
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).WithField("client", c.ID.String()).Debug("ping failed")
				return
			}
			continue
		}

		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteJSON(message); err != nil {
			logger.Log.WithError(err).WithField("client", c.ID.String()).Debug("write json message failed")
			return
		}
	}
}

func (c *Client) writeClose() {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		logger.Log.WithError(err).WithField("client", c.ID.String()).Debug("write close message failed")
	}
}
