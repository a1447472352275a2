package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Client is the websocket transport handle for one session. Pushes go
// through a bounded queue drained by WritePump, so the engine never
// blocks on a slow peer; a full queue fails the push instead.
type Client struct {
	engine    *Engine
	conn      *websocket.Conn
	send      chan []byte
	sessionID string

	mu     sync.Mutex
	closed bool
}

func NewClient(engine *Engine, conn *websocket.Conn) *Client {
	return &Client{
		engine:    engine,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: uuid.NewString(),
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// Push queues an event for delivery. It implements Transport.
func (c *Client) Push(evt OutboundEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close stops the write pump; WritePump sends the close frame.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump decodes inbound frames and dispatches them to the engine.
// It owns the disconnect path: when the read loop ends the session is
// unregistered and departure notifications go out.
func (c *Client) ReadPump() {
	defer func() {
		c.engine.Disconnect(c.sessionID)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error on session %s: %v", c.sessionID, err)
			}
			return
		}

		var evt InboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.Push(OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed event frame"}})
			continue
		}
		c.dispatch(evt)
	}
}

func (c *Client) dispatch(evt InboundEvent) {
	ctx := context.Background()

	switch evt.Event {
	case EventJoinChannel:
		var p JoinChannelPayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.Join(ctx, c.sessionID, p.ChannelID)

	case EventLeaveChannel:
		var p LeaveChannelPayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.Leave(c.sessionID, p.ChannelID)

	case EventSendMessage:
		var p SendMessagePayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.SendText(ctx, c.sessionID, p)

	case EventSendFile:
		var p SendFilePayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.SendFile(ctx, c.sessionID, p)

	case EventTyping:
		var p TypingPayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.Typing(c.sessionID, p)

	case EventMarkRead:
		var p MarkReadPayload
		if !c.decode(evt.Data, &p) {
			return
		}
		c.engine.MarkRead(ctx, c.sessionID, p)

	default:
		c.Push(OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "unknown event: " + evt.Event}})
	}
}

func (c *Client) decode(raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		c.Push(OutboundEvent{Event: EventError, Data: ErrorPayload{Message: "malformed event payload"}})
		return false
	}
	return true
}

// WritePump drains the send queue onto the connection and keeps the
// peer alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error on session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
