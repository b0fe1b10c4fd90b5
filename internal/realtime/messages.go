package realtime

import (
	"encoding/json"
	"time"

	"github.com/campusdeals/api/internal/types"
)

// Client-originated event types.
const (
	EvSendMessage       = "send_message"
	EvJoinConversation  = "join_conversation"
	EvLeaveConversation = "leave_conversation"
	EvMarkAsRead        = "mark_as_read"
	EvTypingStart       = "typing_start"
	EvTypingStop        = "typing_stop"
	EvGetOnlineUsers    = "get_online_users"
)

// Server-originated event types.
const (
	EvConnected         = "connected"
	EvUserOnline        = "user_online"
	EvUserOffline       = "user_offline"
	EvMessageSent       = "message_sent"
	EvNewMessage        = "new_message"
	EvJoinedConvo       = "joined_conversation"
	EvLeftConvo         = "left_conversation"
	EvMarkedAsRead      = "marked_as_read"
	EvMessagesRead      = "messages_read"
	EvUserTyping        = "user_typing"
	EvUserStoppedTyping = "user_stopped_typing"
	EvOnlineUsers       = "online_users"
	EvError             = "error"
)

// ClientEvent is the envelope for everything a connection sends us. The
// payload stays raw until the event type selects a concrete shape.
type ClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ServerEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type SendMessageRequest struct {
	ReceiverId int    `json:"receiver_id"`
	Content    string `json:"content"`
	ListingId  *int   `json:"listing_id,omitempty"`
}

type ConversationRequest struct {
	ConversationId int `json:"conversation_id"`
}

type TypingRequest struct {
	ConversationId int `json:"conversation_id"`
	ReceiverId     int `json:"receiver_id"`
}

type PresenceEvent struct {
	UserId int `json:"user_id"`
}

type ConnectedEvent struct {
	UserId    int    `json:"user_id"`
	SessionId string `json:"session_id"`
}

type ConversationEvent struct {
	ConversationId int `json:"conversation_id"`
}

type MarkedAsReadEvent struct {
	ConversationId int `json:"conversation_id"`
	MarkedCount    int `json:"marked_count"`
}

type MessagesReadEvent struct {
	ConversationId int `json:"conversation_id"`
	ReaderId       int `json:"reader_id"`
}

type TypingEvent struct {
	ConversationId int `json:"conversation_id"`
	UserId         int `json:"user_id"`
}

type OnlineUsersEvent struct {
	UserIds []int `json:"user_ids"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newEvent(eventType string, data any) *ServerEvent {
	return &ServerEvent{
		Type:      eventType,
		Timestamp: Now(),
		Data:      data,
	}
}

func Connected(userId int, sessionId string) *ServerEvent {
	return newEvent(EvConnected, ConnectedEvent{UserId: userId, SessionId: sessionId})
}

func UserOnline(userId int) *ServerEvent {
	return newEvent(EvUserOnline, PresenceEvent{UserId: userId})
}

func UserOffline(userId int) *ServerEvent {
	return newEvent(EvUserOffline, PresenceEvent{UserId: userId})
}

func MessageSent(msg types.Message) *ServerEvent {
	return newEvent(EvMessageSent, msg)
}

func NewMessage(msg types.Message) *ServerEvent {
	return newEvent(EvNewMessage, msg)
}

func JoinedConversation(conversationId int) *ServerEvent {
	return newEvent(EvJoinedConvo, ConversationEvent{ConversationId: conversationId})
}

func LeftConversation(conversationId int) *ServerEvent {
	return newEvent(EvLeftConvo, ConversationEvent{ConversationId: conversationId})
}

func MarkedAsRead(conversationId, markedCount int) *ServerEvent {
	return newEvent(EvMarkedAsRead, MarkedAsReadEvent{
		ConversationId: conversationId,
		MarkedCount:    markedCount,
	})
}

func MessagesRead(conversationId, readerId int) *ServerEvent {
	return newEvent(EvMessagesRead, MessagesReadEvent{
		ConversationId: conversationId,
		ReaderId:       readerId,
	})
}

func UserTyping(conversationId, userId int) *ServerEvent {
	return newEvent(EvUserTyping, TypingEvent{ConversationId: conversationId, UserId: userId})
}

func UserStoppedTyping(conversationId, userId int) *ServerEvent {
	return newEvent(EvUserStoppedTyping, TypingEvent{ConversationId: conversationId, UserId: userId})
}

func OnlineUsers(userIds []int) *ServerEvent {
	return newEvent(EvOnlineUsers, OnlineUsersEvent{UserIds: userIds})
}

func ErrEvent(code, message string) *ServerEvent {
	return newEvent(EvError, ErrorEvent{Code: code, Message: message})
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
