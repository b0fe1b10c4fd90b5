package messaging

import (
	"bytes"
	"database/sql"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campusdeals/api/internal/apperr"
	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/testutil"
)

func intPtr(i int) *int {
	return &i
}

func TestResolveConversation(t *testing.T) {
	existing := database.Conversation{
		Id:      7,
		User1Id: 1,
		User2Id: 2,
	}

	tcases := []struct {
		name        string
		senderId    int
		receiverId  int
		listingId   *int
		setupMocks  func(repo *database.MockRepository)
		expected    database.Conversation
		expectedErr string
	}{
		{
			name:       "returns existing conversation",
			senderId:   1,
			receiverId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(existing, nil).Once()
			},
			expected: existing,
		},
		{
			name:       "creates conversation when none exists",
			senderId:   1,
			receiverId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(database.Conversation{}, sql.ErrNoRows).Once()
				repo.On("CreateConversation", 1, 2, (*int)(nil)).
					Return(existing, nil).Once()
			},
			expected: existing,
		},
		{
			name:        "rejects self conversation",
			senderId:    1,
			receiverId:  1,
			setupMocks:  func(repo *database.MockRepository) {},
			expectedErr: apperr.CodeInvalidOperation,
		},
		{
			name:       "reports missing sender",
			senderId:   1,
			receiverId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{}, sql.ErrNoRows).Once()
			},
			expectedErr: apperr.CodeNotFound,
		},
		{
			name:       "reports missing receiver",
			senderId:   1,
			receiverId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{}, sql.ErrNoRows).Once()
			},
			expectedErr: apperr.CodeNotFound,
		},
		{
			name:       "validates listing when scoped",
			senderId:   1,
			receiverId: 2,
			listingId:  intPtr(9),
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetListingById", 9).Return(database.Listing{}, sql.ErrNoRows).Once()
			},
			expectedErr: apperr.CodeNotFound,
		},
		{
			name:       "adopts winner after losing the creation race",
			senderId:   1,
			receiverId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(database.Conversation{}, sql.ErrNoRows).Once()
				repo.On("CreateConversation", 1, 2, (*int)(nil)).
					Return(database.Conversation{}, &pq.Error{Code: "23505"}).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(existing, nil).Once()
			},
			expected: existing,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMocks(mockRepo)

			store := NewStore(mockRepo, testutil.TestLogger(t))
			conv, err := store.ResolveConversation(tc.senderId, tc.receiverId, tc.listingId)

			if tc.expectedErr != "" {
				assert.Error(t, err, "expected an error")
				assert.Equal(t, tc.expectedErr, apperr.CodeOf(err), "unexpected error code")
			} else {
				assert.NoError(t, err, "expected no error")
				assert.Equal(t, tc.expected, conv, "unexpected conversation")
			}
		})
	}
}

func TestResolveConversationLogsRaceAdoption(t *testing.T) {
	existing := database.Conversation{Id: 7, User1Id: 1, User2Id: 2}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
	mockRepo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
	mockRepo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
		Return(database.Conversation{}, sql.ErrNoRows).Once()
	mockRepo.On("CreateConversation", 1, 2, (*int)(nil)).
		Return(database.Conversation{}, &pq.Error{Code: "23505"}).Once()
	mockRepo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
		Return(existing, nil).Once()

	buf := &bytes.Buffer{}
	store := NewStore(mockRepo, log.New(buf, "", 0))

	conv, err := store.ResolveConversation(1, 2, nil)

	assert.NoError(t, err, "expected no error")
	assert.Equal(t, existing, conv, "unexpected conversation")
	assert.Contains(t, buf.String(), "adopted conversation 7 after concurrent create",
		"expected the lost race to be logged")
}

func TestResolveConversationOrderIndependent(t *testing.T) {
	conv := database.Conversation{Id: 3, User1Id: 2, User2Id: 5}

	for _, pair := range [][2]int{{2, 5}, {5, 2}} {
		mockRepo := &database.MockRepository{}
		mockRepo.On("GetUserById", pair[0]).Return(database.User{Id: pair[0]}, nil).Once()
		mockRepo.On("GetUserById", pair[1]).Return(database.User{Id: pair[1]}, nil).Once()
		mockRepo.On("GetConversationByParticipants", pair[0], pair[1], (*int)(nil)).
			Return(conv, nil).Once()

		store := NewStore(mockRepo, testutil.TestLogger(t))
		got, err := store.ResolveConversation(pair[0], pair[1], nil)

		assert.NoError(t, err, "expected no error")
		assert.Equal(t, conv.Id, got.Id, "expected same conversation for both orderings")
		mockRepo.AssertExpectations(t)
	}
}

func TestSendMessage(t *testing.T) {
	conv := database.Conversation{Id: 4, User1Id: 1, User2Id: 2}
	stored := database.Message{
		Id:             11,
		ConversationId: 4,
		SenderId:       1,
		ReceiverId:     2,
		Content:        "Is this available?",
		CreatedAt:      time.Now().UTC(),
	}

	tcases := []struct {
		name        string
		content     string
		setupMocks  func(repo *database.MockRepository)
		expectedErr string
	}{
		{
			name:    "stores message and reports conversation id",
			content: "Is this available?",
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(conv, nil).Once()
				repo.On("CreateMessage", database.CreateMessageParams{
					ConversationId: 4,
					SenderId:       1,
					ReceiverId:     2,
					Content:        "Is this available?",
				}).Return(stored, nil).Once()
			},
		},
		{
			name:        "rejects empty content",
			content:     "   ",
			setupMocks:  func(repo *database.MockRepository) {},
			expectedErr: apperr.CodeInvalidArgument,
		},
		{
			name:        "rejects oversized content",
			content:     strings.Repeat("a", MaxContentLen+1),
			setupMocks:  func(repo *database.MockRepository) {},
			expectedErr: apperr.CodeInvalidArgument,
		},
		{
			name:    "wraps storage failures",
			content: "hello",
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetUserById", 1).Return(database.User{Id: 1}, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2}, nil).Once()
				repo.On("GetConversationByParticipants", 1, 2, (*int)(nil)).
					Return(conv, nil).Once()
				repo.On("CreateMessage", mock.Anything).
					Return(database.Message{}, errors.New("db error")).Once()
			},
			expectedErr: apperr.CodeInternal,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMocks(mockRepo)

			store := NewStore(mockRepo, testutil.TestLogger(t))
			msg, err := store.SendMessage(1, 2, tc.content, nil)

			if tc.expectedErr != "" {
				assert.Error(t, err, "expected an error")
				assert.Equal(t, tc.expectedErr, apperr.CodeOf(err), "unexpected error code")
			} else {
				assert.NoError(t, err, "expected no error")
				assert.Equal(t, stored.Id, msg.Id, "unexpected message id")
				assert.Equal(t, conv.Id, msg.ConversationId, "expected conversation id on result")
				assert.True(t, msg.IsMine, "sender's view of their own message")
				assert.False(t, msg.IsRead, "new message starts unread")
			}
		})
	}
}

func TestListConversations(t *testing.T) {
	lastAt := time.Now().UTC()
	summaries := []database.ConversationSummary{
		{
			Conversation: database.Conversation{
				Id:                 1,
				User1Id:            1,
				User2Id:            2,
				ListingId:          sql.NullInt64{Int64: 7, Valid: true},
				LastMessageContent: sql.NullString{String: "hello", Valid: true},
				LastMessageAt:      sql.NullTime{Time: lastAt, Valid: true},
			},
			OtherUserId:    2,
			OtherUserName:  "Jordan",
			OtherUserEmail: "jordan@example.com",
			ListingTitle:   sql.NullString{String: "Desk lamp", Valid: true},
			ListingPrice:   sql.NullFloat64{Float64: 12.5, Valid: true},
			UnreadCount:    3,
		},
		{
			Conversation: database.Conversation{Id: 2, User1Id: 3, User2Id: 1},
			OtherUserId:  3,
		},
	}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("ListConversationSummaries", 1).Return(summaries, nil).Once()

	store := NewStore(mockRepo, testutil.TestLogger(t))
	conversations, err := store.ListConversations(1)

	assert.NoError(t, err, "expected no error")
	assert.Len(t, conversations, 2, "expected both conversations")

	first := conversations[0]
	assert.Equal(t, 2, first.OtherUser.Id, "unexpected other participant")
	assert.Equal(t, "hello", first.LastMessage.Content, "unexpected snapshot content")
	assert.Equal(t, 3, first.UnreadCount, "unexpected unread count")
	assert.NotNil(t, first.Listing, "expected listing context")
	assert.Equal(t, "Desk lamp", first.Listing.Title, "unexpected listing title")

	second := conversations[1]
	assert.Nil(t, second.Listing, "conversation without listing has no listing context")
	assert.Empty(t, second.LastMessage.Content, "conversation without messages has no snapshot")
}

func TestGetConversation(t *testing.T) {
	conv := database.Conversation{
		Id:        4,
		User1Id:   1,
		User2Id:   2,
		ListingId: sql.NullInt64{Int64: 7, Valid: true},
	}

	tcases := []struct {
		name        string
		userId      int
		setupMocks  func(repo *database.MockRepository)
		expectedErr string
	}{
		{
			name:   "returns detail for a participant",
			userId: 1,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetConversationById", 4).Return(conv, nil).Once()
				repo.On("GetUserById", 2).Return(database.User{Id: 2, Name: "Jordan"}, nil).Once()
				repo.On("GetListingById", 7).
					Return(database.Listing{Id: 7, Title: "Bike", Price: 80}, nil).Once()
			},
		},
		{
			name:   "rejects non-participant",
			userId: 9,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetConversationById", 4).Return(conv, nil).Once()
			},
			expectedErr: apperr.CodeForbidden,
		},
		{
			name:   "reports missing conversation",
			userId: 1,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetConversationById", 4).
					Return(database.Conversation{}, sql.ErrNoRows).Once()
			},
			expectedErr: apperr.CodeNotFound,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMocks(mockRepo)

			store := NewStore(mockRepo, testutil.TestLogger(t))
			detail, err := store.GetConversation(4, tc.userId)

			if tc.expectedErr != "" {
				assert.Error(t, err, "expected an error")
				assert.Equal(t, tc.expectedErr, apperr.CodeOf(err), "unexpected error code")
			} else {
				assert.NoError(t, err, "expected no error")
				assert.Equal(t, 2, detail.OtherUser.Id, "unexpected other participant")
				assert.NotNil(t, detail.Listing, "expected listing context")
				assert.Equal(t, "Bike", detail.Listing.Title, "unexpected listing title")
			}
		})
	}
}

func TestListMessages(t *testing.T) {
	conv := database.Conversation{Id: 4, User1Id: 1, User2Id: 2}
	rows := []database.Message{
		{Id: 12, ConversationId: 4, SenderId: 2, ReceiverId: 1, Content: "sure"},
		{Id: 11, ConversationId: 4, SenderId: 1, ReceiverId: 2, Content: "still available?"},
	}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetConversationById", 4).Return(conv, nil).Once()
	mockRepo.On("CountMessages", 4).Return(25, nil).Once()
	mockRepo.On("ListMessages", 4, 10, 10).Return(rows, nil).Once()

	store := NewStore(mockRepo, testutil.TestLogger(t))
	page, err := store.ListMessages(4, 1, query.Params{
		Page:   2,
		Limit:  10,
		SortBy: "created_at",
		Order:  "desc",
	})

	assert.NoError(t, err, "expected no error")
	assert.Equal(t, 25, page.Meta.Total, "unexpected total")
	assert.Equal(t, 3, page.Meta.TotalPages, "unexpected total pages")
	assert.True(t, page.Meta.HasNext, "expected a next page")
	assert.True(t, page.Meta.HasPrev, "expected a previous page")
	assert.Len(t, page.Data, 2, "unexpected page size")
	assert.False(t, page.Data[0].IsMine, "received message is not mine")
	assert.True(t, page.Data[1].IsMine, "sent message is mine")
}

func TestMarkRead(t *testing.T) {
	conv := database.Conversation{Id: 4, User1Id: 1, User2Id: 2}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetConversationById", 4).Return(conv, nil).Twice()
	mockRepo.On("MarkMessagesRead", 4, 2).Return(1, nil).Once()
	mockRepo.On("MarkMessagesRead", 4, 2).Return(0, nil).Once()

	store := NewStore(mockRepo, testutil.TestLogger(t))

	marked, err := store.MarkRead(4, 2)
	assert.NoError(t, err, "expected no error")
	assert.Equal(t, 1, marked, "expected one message marked")

	marked, err = store.MarkRead(4, 2)
	assert.NoError(t, err, "expected no error")
	assert.Equal(t, 0, marked, "second call marks nothing")
}

func TestDeleteMessage(t *testing.T) {
	stored := database.Message{Id: 11, ConversationId: 4, SenderId: 1, ReceiverId: 2, Content: "oops"}
	replaced := stored
	replaced.Content = DeletedSentinel

	tcases := []struct {
		name        string
		userId      int
		setupMocks  func(repo *database.MockRepository)
		expectedErr string
	}{
		{
			name:   "sender replaces content with sentinel",
			userId: 1,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetMessageById", 11).Return(stored, nil).Once()
				repo.On("ReplaceMessageContent", 11, DeletedSentinel).
					Return(replaced, nil).Once()
			},
		},
		{
			name:   "non-sender is rejected",
			userId: 2,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetMessageById", 11).Return(stored, nil).Once()
			},
			expectedErr: apperr.CodeForbidden,
		},
		{
			name:   "missing message",
			userId: 1,
			setupMocks: func(repo *database.MockRepository) {
				repo.On("GetMessageById", 11).
					Return(database.Message{}, sql.ErrNoRows).Once()
			},
			expectedErr: apperr.CodeNotFound,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMocks(mockRepo)

			store := NewStore(mockRepo, testutil.TestLogger(t))
			msg, err := store.DeleteMessage(11, tc.userId)

			if tc.expectedErr != "" {
				assert.Error(t, err, "expected an error")
				assert.Equal(t, tc.expectedErr, apperr.CodeOf(err), "unexpected error code")
			} else {
				assert.NoError(t, err, "expected no error")
				assert.Equal(t, DeletedSentinel, msg.Content, "expected sentinel content")
				assert.Equal(t, stored.Id, msg.Id, "row survives deletion")
			}
		})
	}
}

func TestOtherParticipant(t *testing.T) {
	conv := database.Conversation{Id: 4, User1Id: 1, User2Id: 2}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetConversationById", 4).Return(conv, nil).Twice()

	store := NewStore(mockRepo, testutil.TestLogger(t))

	other, err := store.OtherParticipant(4, 1)
	assert.NoError(t, err, "expected no error")
	assert.Equal(t, 2, other, "unexpected other participant")

	other, err = store.OtherParticipant(4, 2)
	assert.NoError(t, err, "expected no error")
	assert.Equal(t, 1, other, "unexpected other participant")
}
