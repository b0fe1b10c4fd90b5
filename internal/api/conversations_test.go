package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/messaging"
	"github.com/campusdeals/api/internal/types"
)

func authedRequest(method, target string, body *bytes.Buffer, userId int) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(WithUserId(req.Context(), userId))
}

func Test_sendMessage(t *testing.T) {
	sender := database.User{Id: 1, Name: "Sender"}
	receiver := database.User{Id: 2, Name: "Receiver"}
	conv := database.Conversation{Id: 7, User1Id: 1, User2Id: 2}

	tcases := []struct {
		name           string
		body           any
		setupMock      func(m *database.MockRepository)
		expectedStatus int
	}{
		{
			name: "stores message in existing conversation",
			body: SendMessageRequest{ReceiverId: 2, Content: "hey, still available?"},
			setupMock: func(m *database.MockRepository) {
				m.On("GetUserById", 1).Return(sender, nil).Once()
				m.On("GetUserById", 2).Return(receiver, nil).Once()
				m.On("GetConversationByParticipants", 1, 2, (*int)(nil)).Return(conv, nil).Once()
				m.On("CreateMessage", database.CreateMessageParams{
					ConversationId: 7,
					SenderId:       1,
					ReceiverId:     2,
					Content:        "hey, still available?",
				}).Return(database.Message{
					Id:             11,
					ConversationId: 7,
					SenderId:       1,
					ReceiverId:     2,
					Content:        "hey, still available?",
					CreatedAt:      time.Now().UTC(),
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "unknown receiver is not found",
			body: SendMessageRequest{ReceiverId: 2, Content: "hello"},
			setupMock: func(m *database.MockRepository) {
				m.On("GetUserById", 1).Return(sender, nil).Once()
				m.On("GetUserById", 2).Return(database.User{}, sql.ErrNoRows).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "blank content is rejected",
			body:           SendMessageRequest{ReceiverId: 2, Content: "   "},
			setupMock:      func(m *database.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "self message is rejected",
			body: SendMessageRequest{ReceiverId: 1, Content: "hello me"},
			setupMock: func(m *database.MockRepository) {
				// rejected before any lookup happens
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json body is rejected",
			body:           "not json",
			setupMock:      func(m *database.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMock(mockRepo)

			app := newTestApp(t, mockRepo)

			var buf bytes.Buffer
			assert.NoError(t, json.NewEncoder(&buf).Encode(tc.body), "failed to encode body")

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodPost, "/api/messages", &buf, 1)
			app.sendMessage(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "unexpected status code")

			if tc.expectedStatus == http.StatusCreated {
				var msg types.Message
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&msg), "failed to decode response")
				assert.Equal(t, 7, msg.ConversationId, "message must carry the conversation id")
				assert.True(t, msg.IsMine, "sender's copy must be marked as theirs")
			}
		})
	}
}

func Test_sendMessage_unauthenticated(t *testing.T) {
	app := newTestApp(t, &database.MockRepository{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString("{}"))
	app.sendMessage(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "unexpected status code")
}

func Test_getConversation(t *testing.T) {
	conv := database.Conversation{
		Id:                 7,
		User1Id:            1,
		User2Id:            2,
		LastMessageContent: sql.NullString{String: "see you there", Valid: true},
		LastMessageAt:      sql.NullTime{Time: time.Now().UTC(), Valid: true},
	}

	tcases := []struct {
		name           string
		pathValue      string
		userId         int
		setupMock      func(m *database.MockRepository)
		expectedStatus int
	}{
		{
			name:      "participant can read the conversation",
			pathValue: "7",
			userId:    1,
			setupMock: func(m *database.MockRepository) {
				m.On("GetConversationById", 7).Return(conv, nil).Once()
				m.On("GetUserById", 2).Return(database.User{Id: 2, Name: "Other"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "non participant is forbidden",
			pathValue: "7",
			userId:    9,
			setupMock: func(m *database.MockRepository) {
				m.On("GetConversationById", 7).Return(conv, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "missing conversation is not found",
			pathValue: "99",
			userId:    1,
			setupMock: func(m *database.MockRepository) {
				m.On("GetConversationById", 99).Return(database.Conversation{}, sql.ErrNoRows).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id is rejected",
			pathValue:      "abc",
			userId:         1,
			setupMock:      func(m *database.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMock(mockRepo)

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodGet, "/api/conversations/"+tc.pathValue, nil, tc.userId)
			req.SetPathValue("id", tc.pathValue)
			app.getConversation(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "unexpected status code")

			if tc.expectedStatus == http.StatusOK {
				var c types.Conversation
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&c), "failed to decode response")
				assert.Equal(t, 7, c.Id, "unexpected conversation id")
				assert.Equal(t, 2, c.OtherUser.Id, "unexpected other participant")
				assert.Equal(t, "see you there", c.LastMessage.Content, "unexpected last message snapshot")
			}
		})
	}
}

func Test_listConversations(t *testing.T) {
	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)

	mockRepo.On("ListConversationSummaries", 1).Return([]database.ConversationSummary{
		{
			Conversation:  database.Conversation{Id: 7, User1Id: 1, User2Id: 2},
			OtherUserId:   2,
			OtherUserName: "Other",
			UnreadCount:   3,
		},
	}, nil).Once()

	app := newTestApp(t, mockRepo)

	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/conversations", nil, 1)
	app.listConversations(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status code")

	var convs []types.Conversation
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&convs), "failed to decode response")
	assert.Len(t, convs, 1, "expected one conversation")
	assert.Equal(t, 3, convs[0].UnreadCount, "unexpected unread count")
	assert.Equal(t, "Other", convs[0].OtherUser.Name, "unexpected participant name")
}

func Test_listConversationMessages(t *testing.T) {
	conv := database.Conversation{Id: 7, User1Id: 1, User2Id: 2}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)

	mockRepo.On("GetConversationById", 7).Return(conv, nil).Once()
	mockRepo.On("CountMessages", 7).Return(25, nil).Once()
	mockRepo.On("ListMessages", 7, 10, 10).Return([]database.Message{
		{Id: 20, ConversationId: 7, SenderId: 2, ReceiverId: 1, Content: "sure"},
		{Id: 19, ConversationId: 7, SenderId: 1, ReceiverId: 2, Content: "tomorrow?"},
	}, nil).Once()

	app := newTestApp(t, mockRepo)

	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/conversations/7/messages?page=2&limit=10", nil, 1)
	req.SetPathValue("id", "7")
	app.listConversationMessages(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status code")

	var page struct {
		Data []types.Message `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&page), "failed to decode response")
	assert.Len(t, page.Data, 2, "unexpected number of messages")
	assert.Equal(t, 2, page.Meta.Page, "unexpected page number")
	assert.Equal(t, 25, page.Meta.Total, "unexpected total count")
	assert.Equal(t, 3, page.Meta.TotalPages, "unexpected page count")
	assert.False(t, page.Data[0].IsMine, "other participant's message must not be mine")
	assert.True(t, page.Data[1].IsMine, "requester's message must be marked as theirs")
}

func Test_markConversationRead(t *testing.T) {
	conv := database.Conversation{Id: 7, User1Id: 1, User2Id: 2}

	mockRepo := &database.MockRepository{}
	defer mockRepo.AssertExpectations(t)

	// once for the mark, once for resolving the other participant
	mockRepo.On("GetConversationById", 7).Return(conv, nil).Twice()
	mockRepo.On("MarkMessagesRead", 7, 1).Return(3, nil).Once()

	app := newTestApp(t, mockRepo)

	rr := httptest.NewRecorder()
	req := authedRequest(http.MethodPatch, "/api/conversations/7/read", nil, 1)
	req.SetPathValue("id", "7")
	app.markConversationRead(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status code")

	var resp struct {
		MarkedCount int `json:"marked_count"`
	}
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "failed to decode response")
	assert.Equal(t, 3, resp.MarkedCount, "unexpected marked count")
}

func Test_deleteMessage(t *testing.T) {
	msg := database.Message{Id: 11, ConversationId: 7, SenderId: 1, ReceiverId: 2, Content: "typo"}

	tcases := []struct {
		name           string
		userId         int
		setupMock      func(m *database.MockRepository)
		expectedStatus int
	}{
		{
			name:   "sender deletes own message",
			userId: 1,
			setupMock: func(m *database.MockRepository) {
				m.On("GetMessageById", 11).Return(msg, nil).Once()
				deleted := msg
				deleted.Content = messaging.DeletedSentinel
				m.On("ReplaceMessageContent", 11, messaging.DeletedSentinel).Return(deleted, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "non sender is forbidden",
			userId: 2,
			setupMock: func(m *database.MockRepository) {
				m.On("GetMessageById", 11).Return(msg, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "missing message is not found",
			userId: 1,
			setupMock: func(m *database.MockRepository) {
				m.On("GetMessageById", 11).Return(database.Message{}, sql.ErrNoRows).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			tc.setupMock(mockRepo)

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := authedRequest(http.MethodDelete, "/api/messages/11", nil, tc.userId)
			req.SetPathValue("id", "11")
			app.deleteMessage(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "unexpected status code")

			if tc.expectedStatus == http.StatusOK {
				var deleted types.Message
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&deleted), "failed to decode response")
				assert.Equal(t, messaging.DeletedSentinel, deleted.Content, "content must be replaced by the sentinel")
			}
		})
	}
}
