package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/campusdeals/api/internal/apperr"
	"github.com/campusdeals/api/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one live websocket session for an authenticated user. A
// user may hold several clients at once; each gets its own session id
// in the presence registry.
type Client struct {
	conn       *websocket.Conn
	server     *Server
	log        *log.Logger
	user       types.User
	sessionId  string
	send       chan *ServerEvent
	convos     map[int]struct{}
	convosLock sync.RWMutex
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, s *Server, l *log.Logger) *Client {
	return &Client{
		conn:      conn,
		server:    s,
		log:       l,
		user:      user,
		sessionId: uuid.NewString(),
		send:      make(chan *ServerEvent, 256),
		convos:    make(map[int]struct{}),
		stop:      make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(evt)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeFrame(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var evt ClientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
			continue
		}

		c.dispatch(&evt)
	}
}

// dispatch routes one client event to the server. Handler failures are
// reported back on this connection only and never close it.
func (c *Client) dispatch(evt *ClientEvent) {
	switch evt.Type {
	case EvSendMessage:
		c.server.handleSendMessage(c, evt.Data)
	case EvJoinConversation:
		c.server.handleJoinConversation(c, evt.Data)
	case EvLeaveConversation:
		c.server.handleLeaveConversation(c, evt.Data)
	case EvMarkAsRead:
		c.server.handleMarkRead(c, evt.Data)
	case EvTypingStart:
		c.server.handleTyping(c, evt.Data, true)
	case EvTypingStop:
		c.server.handleTyping(c, evt.Data, false)
	case EvGetOnlineUsers:
		c.server.handleOnlineUsers(c)
	default:
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "unknown event type"))
	}
}

func (c *Client) queueEvent(evt *ServerEvent) bool {
	select {
	case c.send <- evt:
	default:
		c.log.Println("failed to queue event, channel is full")
		return false
	}

	return true
}

func (c *Client) writeFrame(msgType int, payload []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, payload); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write frame: %s", err)
		}
		return false
	}

	return true
}

// stopClient is safe to call more than once: a session torn down by
// server shutdown still runs the read pump's deferred cleanup.
func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.server.UnregisterClient(c)
	c.stopClient()
}

func (c *Client) addConversation(id int) {
	c.convosLock.Lock()
	defer c.convosLock.Unlock()

	c.convos[id] = struct{}{}
}

func (c *Client) delConversation(id int) {
	c.convosLock.Lock()
	defer c.convosLock.Unlock()

	delete(c.convos, id)
}

func (c *Client) inConversation(id int) bool {
	c.convosLock.RLock()
	defer c.convosLock.RUnlock()

	_, ok := c.convos[id]
	return ok
}
