// Package realtime is the live delivery channel: it tracks which users
// have open websocket sessions and pushes freshly stored messages,
// read receipts and typing notices to them. Messages are durable
// before any push happens, so a user with no live session simply picks
// them up later over the REST API.
package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/campusdeals/api/internal/apperr"
	"github.com/campusdeals/api/internal/messaging"
	"github.com/campusdeals/api/internal/stats"
)

type Server struct {
	log      *log.Logger
	store    *messaging.Store
	presence Registry
	stats    stats.StatsProvider

	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[int]map[*Client]struct{}
}

func NewServer(logger *log.Logger, store *messaging.Store, presence Registry, sp stats.StatsProvider) *Server {
	return &Server{
		log:      logger,
		store:    store,
		presence: presence,
		stats:    sp,
		clients:  make(map[*Client]struct{}),
		byUser:   make(map[int]map[*Client]struct{}),
	}
}

// RegisterClient admits an authenticated session: it joins the user's
// inbox, records presence and acknowledges the connection. The first
// session for a user announces them online to everyone else.
func (s *Server) RegisterClient(c *Client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	set, ok := s.byUser[c.user.Id]
	if !ok {
		set = make(map[*Client]struct{})
		s.byUser[c.user.Id] = set
	}
	set[c] = struct{}{}
	s.mu.Unlock()

	first, err := s.presence.Register(c.user.Id, c.sessionId)
	if err != nil {
		s.log.Printf("presence register for user %d: %v", c.user.Id, err)
	}

	s.stats.Incr(stats.ActiveConnections)
	c.queueEvent(Connected(c.user.Id, c.sessionId))

	if first {
		s.broadcastExcept(UserOnline(c.user.Id), c.user.Id)
	}
}

// UnregisterClient drops a session. When the user's last session goes,
// everyone else gets a best-effort offline notice.
func (s *Server) UnregisterClient(c *Client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, c)
	if set, ok := s.byUser[c.user.Id]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.byUser, c.user.Id)
		}
	}
	s.mu.Unlock()

	last, err := s.presence.Unregister(c.user.Id, c.sessionId)
	if err != nil {
		s.log.Printf("presence unregister for user %d: %v", c.user.Id, err)
	}

	s.stats.Decr(stats.ActiveConnections)

	if last {
		s.broadcastExcept(UserOffline(c.user.Id), c.user.Id)
	}
}

// SendToUser queues evt on every live session of userId and reports
// whether at least one session received it.
func (s *Server) SendToUser(userId int, evt *ServerEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.byUser[userId]
	if !ok || len(set) == 0 {
		return false
	}

	for c := range set {
		c.queueEvent(evt)
	}

	return true
}

func (s *Server) broadcastExcept(evt *ServerEvent, skipUserId int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		if c.user.Id == skipUserId {
			continue
		}
		c.queueEvent(evt)
	}
}

func (s *Server) handleSendMessage(c *Client, data json.RawMessage) {
	var req SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
		return
	}

	msg, err := s.store.SendMessage(c.user.Id, req.ReceiverId, req.Content, req.ListingId)
	if err != nil {
		c.queueEvent(errEventFor(err))
		return
	}

	s.stats.Incr(stats.MessagesSent)
	c.queueEvent(MessageSent(msg))

	// The receiver sees the same message from their side.
	received := msg
	received.IsMine = false
	if s.SendToUser(msg.ReceiverId, NewMessage(received)) {
		s.stats.Incr(stats.LiveDeliveries)
	} else {
		s.stats.Incr(stats.OfflineStores)
	}
}

func (s *Server) handleJoinConversation(c *Client, data json.RawMessage) {
	var req ConversationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
		return
	}

	ok, err := s.store.IsParticipant(req.ConversationId, c.user.Id)
	if err != nil {
		c.queueEvent(errEventFor(err))
		return
	}
	if !ok {
		c.queueEvent(ErrEvent(apperr.CodeForbidden, "not a participant in this conversation"))
		return
	}

	c.addConversation(req.ConversationId)
	c.queueEvent(JoinedConversation(req.ConversationId))
}

func (s *Server) handleLeaveConversation(c *Client, data json.RawMessage) {
	var req ConversationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
		return
	}

	c.delConversation(req.ConversationId)
	c.queueEvent(LeftConversation(req.ConversationId))
}

func (s *Server) handleMarkRead(c *Client, data json.RawMessage) {
	var req ConversationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
		return
	}

	marked, err := s.store.MarkRead(req.ConversationId, c.user.Id)
	if err != nil {
		c.queueEvent(errEventFor(err))
		return
	}

	if marked > 0 {
		s.stats.Incr(stats.ReadReceipts)
	}
	c.queueEvent(MarkedAsRead(req.ConversationId, marked))

	other, err := s.store.OtherParticipant(req.ConversationId, c.user.Id)
	if err != nil {
		s.log.Printf("resolve other participant in conversation %d: %v", req.ConversationId, err)
		return
	}
	s.SendToUser(other, MessagesRead(req.ConversationId, c.user.Id))
}

// handleTyping forwards an ephemeral typing notice to the other
// participant's inbox. Nothing is persisted and an offline receiver
// means a silent no-op.
func (s *Server) handleTyping(c *Client, data json.RawMessage, start bool) {
	var req TypingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInvalidArgument, "invalid event format"))
		return
	}

	ok, err := s.store.IsParticipant(req.ConversationId, c.user.Id)
	if err != nil || !ok {
		return
	}

	evt := UserTyping(req.ConversationId, c.user.Id)
	if !start {
		evt = UserStoppedTyping(req.ConversationId, c.user.Id)
	}
	s.SendToUser(req.ReceiverId, evt)
}

func (s *Server) handleOnlineUsers(c *Client) {
	userIds, err := s.presence.OnlineUsers()
	if err != nil {
		c.queueEvent(ErrEvent(apperr.CodeInternal, "internal server error"))
		return
	}

	c.queueEvent(OnlineUsers(userIds))
}

// Shutdown stops every live session's pumps.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		c.stopClient()
	}
}

// errEventFor translates a store failure into an error event, hiding
// internal causes from the client.
func errEventFor(err error) *ServerEvent {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code != apperr.CodeInternal {
		return ErrEvent(appErr.Code, appErr.Message)
	}

	return ErrEvent(apperr.CodeInternal, "internal server error")
}
