// Package messaging owns conversations and their messages: conversation
// identity resolution between two users, message persistence with the
// conversation's last-message snapshot, read-state transitions and the
// soft-delete sentinel. The realtime layer and the REST handlers both
// funnel into this package, so delivery and retrieval always agree on
// what was stored.
package messaging

import (
	"log"
	"strings"

	"github.com/campusdeals/api/internal/apperr"
	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/types"
)

const (
	// MaxContentLen bounds a single message body.
	MaxContentLen = 5000
	// DeletedSentinel replaces the content of a deleted message. The
	// row survives so conversation ordering and counts are unchanged.
	DeletedSentinel = "[Message deleted]"
)

// MessagePolicy governs pagination of a conversation's message history.
var MessagePolicy = query.Policy{
	DefaultSortBy: "created_at",
	SortFields:    []string{"created_at"},
}

type Store struct {
	repo   database.Repository
	logger *log.Logger
}

func NewStore(repo database.Repository, logger *log.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
	}
}

// ResolveConversation returns the conversation between senderId and
// receiverId scoped to listingId, creating it if absent. The pair is
// unordered for lookup but stored in call order. A nil listingId only
// matches conversations with no listing.
func (s *Store) ResolveConversation(senderId, receiverId int, listingId *int) (database.Conversation, error) {
	if senderId == receiverId {
		return database.Conversation{}, apperr.InvalidOperation("cannot send a message to yourself")
	}

	if _, err := s.repo.GetUserById(senderId); err != nil {
		if database.IsNotFound(err) {
			return database.Conversation{}, apperr.NotFound("sender")
		}
		return database.Conversation{}, apperr.Internal("failed to load sender", err)
	}
	if _, err := s.repo.GetUserById(receiverId); err != nil {
		if database.IsNotFound(err) {
			return database.Conversation{}, apperr.NotFound("receiver")
		}
		return database.Conversation{}, apperr.Internal("failed to load receiver", err)
	}

	if listingId != nil {
		if _, err := s.repo.GetListingById(*listingId); err != nil {
			if database.IsNotFound(err) {
				return database.Conversation{}, apperr.NotFound("listing")
			}
			return database.Conversation{}, apperr.Internal("failed to load listing", err)
		}
	}

	conv, err := s.repo.GetConversationByParticipants(senderId, receiverId, listingId)
	if err == nil {
		return conv, nil
	}
	if !database.IsNotFound(err) {
		return database.Conversation{}, apperr.Internal("failed to look up conversation", err)
	}

	conv, err = s.repo.CreateConversation(senderId, receiverId, listingId)
	if err == nil {
		return conv, nil
	}

	// Two first messages between the same pair can race past the
	// lookup. The unique index rejects the loser, which then adopts
	// the winner's row.
	if database.IsUniqueViolation(err) {
		conv, lookupErr := s.repo.GetConversationByParticipants(senderId, receiverId, listingId)
		if lookupErr == nil {
			s.logger.Printf("adopted conversation %d after concurrent create by users %d and %d", conv.Id, senderId, receiverId)
			return conv, nil
		}
		s.logger.Printf("failed to re-read conversation after unique violation: %v", lookupErr)
		return database.Conversation{}, apperr.Conflict("conversation already exists", err)
	}

	return database.Conversation{}, apperr.Internal("failed to create conversation", err)
}

// SendMessage stores content from senderId to receiverId, resolving the
// conversation first. The returned message carries the conversation id
// so callers can route realtime delivery without another lookup.
func (s *Store) SendMessage(senderId, receiverId int, content string, listingId *int) (types.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return types.Message{}, apperr.InvalidArgument("message content is required",
			apperr.FieldError{Field: "content", Message: "must not be empty"})
	}
	if len(content) > MaxContentLen {
		return types.Message{}, apperr.InvalidArgument("message content too long",
			apperr.FieldError{Field: "content", Message: "exceeds maximum length"})
	}

	conv, err := s.ResolveConversation(senderId, receiverId, listingId)
	if err != nil {
		return types.Message{}, err
	}

	msg, err := s.repo.CreateMessage(database.CreateMessageParams{
		ConversationId: conv.Id,
		SenderId:       senderId,
		ReceiverId:     receiverId,
		Content:        content,
	})
	if err != nil {
		return types.Message{}, apperr.Internal("failed to store message", err)
	}

	return toMessage(msg, senderId), nil
}

// ListConversations returns userId's conversations newest-activity
// first, each with the other participant, the optional listing and an
// unread count, computed in a single repository call.
func (s *Store) ListConversations(userId int) ([]types.Conversation, error) {
	summaries, err := s.repo.ListConversationSummaries(userId)
	if err != nil {
		return nil, apperr.Internal("failed to list conversations", err)
	}

	conversations := make([]types.Conversation, 0, len(summaries))
	for _, summary := range summaries {
		conversations = append(conversations, toConversation(summary))
	}

	return conversations, nil
}

// GetConversation returns the conversation detail for a participant.
func (s *Store) GetConversation(conversationId, requestingUserId int) (types.Conversation, error) {
	conv, err := s.participantConversation(conversationId, requestingUserId)
	if err != nil {
		return types.Conversation{}, err
	}

	otherId := conv.User1Id
	if otherId == requestingUserId {
		otherId = conv.User2Id
	}

	other, err := s.repo.GetUserById(otherId)
	if err != nil {
		return types.Conversation{}, apperr.Internal("failed to load participant", err)
	}

	detail := types.Conversation{
		Id: conv.Id,
		OtherUser: types.User{
			Id:           other.Id,
			Name:         other.Name,
			EmailAddress: other.EmailAddress,
		},
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	if conv.LastMessageContent.Valid {
		detail.LastMessage.Content = conv.LastMessageContent.String
	}
	if conv.LastMessageAt.Valid {
		sentAt := conv.LastMessageAt.Time
		detail.LastMessage.SentAt = &sentAt
	}

	if conv.ListingId.Valid {
		listing, err := s.repo.GetListingById(int(conv.ListingId.Int64))
		if err != nil {
			return types.Conversation{}, apperr.Internal("failed to load listing", err)
		}
		detail.Listing = &types.ListingRef{
			Id:    listing.Id,
			Title: listing.Title,
			Price: listing.Price,
		}
	}

	return detail, nil
}

// ListMessages returns a page of a conversation's history, newest
// first, each message annotated with whether the requesting user sent
// it.
func (s *Store) ListMessages(conversationId, requestingUserId int, p query.Params) (query.Page[types.Message], error) {
	if _, err := s.participantConversation(conversationId, requestingUserId); err != nil {
		return query.Page[types.Message]{}, err
	}

	total, err := s.repo.CountMessages(conversationId)
	if err != nil {
		return query.Page[types.Message]{}, apperr.Internal("failed to count messages", err)
	}

	rows, err := s.repo.ListMessages(conversationId, p.Limit, p.Offset())
	if err != nil {
		return query.Page[types.Message]{}, apperr.Internal("failed to list messages", err)
	}

	messages := make([]types.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toMessage(row, requestingUserId))
	}

	return query.Page[types.Message]{
		Meta: query.NewMeta(p, total, nil),
		Data: messages,
	}, nil
}

// MarkRead marks every unread message addressed to requestingUserId in
// the conversation as read and returns how many transitioned. A second
// call finds nothing left to mark and returns zero.
func (s *Store) MarkRead(conversationId, requestingUserId int) (int, error) {
	if _, err := s.participantConversation(conversationId, requestingUserId); err != nil {
		return 0, err
	}

	marked, err := s.repo.MarkMessagesRead(conversationId, requestingUserId)
	if err != nil {
		return 0, apperr.Internal("failed to mark messages read", err)
	}

	return marked, nil
}

// DeleteMessage replaces the message content with the deletion
// sentinel. Only the original sender may delete, and the row is kept.
func (s *Store) DeleteMessage(messageId, requestingUserId int) (types.Message, error) {
	msg, err := s.repo.GetMessageById(messageId)
	if err != nil {
		if database.IsNotFound(err) {
			return types.Message{}, apperr.NotFound("message")
		}
		return types.Message{}, apperr.Internal("failed to load message", err)
	}

	if msg.SenderId != requestingUserId {
		return types.Message{}, apperr.Forbidden("only the sender can delete a message")
	}

	updated, err := s.repo.ReplaceMessageContent(messageId, DeletedSentinel)
	if err != nil {
		return types.Message{}, apperr.Internal("failed to delete message", err)
	}

	return toMessage(updated, requestingUserId), nil
}

// IsParticipant reports whether userId belongs to the conversation.
// The realtime layer uses it to gate conversation subscriptions.
func (s *Store) IsParticipant(conversationId, userId int) (bool, error) {
	_, err := s.participantConversation(conversationId, userId)
	if err == nil {
		return true, nil
	}
	if apperr.IsCode(err, apperr.CodeForbidden) || apperr.IsCode(err, apperr.CodeNotFound) {
		return false, nil
	}
	return false, err
}

// OtherParticipant returns the id of the conversation member that is
// not userId.
func (s *Store) OtherParticipant(conversationId, userId int) (int, error) {
	conv, err := s.participantConversation(conversationId, userId)
	if err != nil {
		return 0, err
	}

	if conv.User1Id == userId {
		return conv.User2Id, nil
	}
	return conv.User1Id, nil
}

func (s *Store) participantConversation(conversationId, userId int) (database.Conversation, error) {
	conv, err := s.repo.GetConversationById(conversationId)
	if err != nil {
		if database.IsNotFound(err) {
			return database.Conversation{}, apperr.NotFound("conversation")
		}
		return database.Conversation{}, apperr.Internal("failed to load conversation", err)
	}

	if conv.User1Id != userId && conv.User2Id != userId {
		return database.Conversation{}, apperr.Forbidden("not a participant in this conversation")
	}

	return conv, nil
}

func toMessage(msg database.Message, viewerId int) types.Message {
	out := types.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		SenderId:       msg.SenderId,
		ReceiverId:     msg.ReceiverId,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		IsMine:         msg.SenderId == viewerId,
		CreatedAt:      msg.CreatedAt,
	}
	if msg.ReadAt.Valid {
		readAt := msg.ReadAt.Time
		out.ReadAt = &readAt
	}

	return out
}

func toConversation(summary database.ConversationSummary) types.Conversation {
	conv := types.Conversation{
		Id: summary.Id,
		OtherUser: types.User{
			Id:           summary.OtherUserId,
			Name:         summary.OtherUserName,
			EmailAddress: summary.OtherUserEmail,
		},
		UnreadCount: summary.UnreadCount,
		CreatedAt:   summary.CreatedAt,
		UpdatedAt:   summary.UpdatedAt,
	}
	if summary.LastMessageContent.Valid {
		conv.LastMessage.Content = summary.LastMessageContent.String
	}
	if summary.LastMessageAt.Valid {
		sentAt := summary.LastMessageAt.Time
		conv.LastMessage.SentAt = &sentAt
	}
	if summary.ListingId.Valid && summary.ListingTitle.Valid {
		conv.Listing = &types.ListingRef{
			Id:    int(summary.ListingId.Int64),
			Title: summary.ListingTitle.String,
		}
		if summary.ListingPrice.Valid {
			conv.Listing.Price = summary.ListingPrice.Float64
		}
	}

	return conv
}
