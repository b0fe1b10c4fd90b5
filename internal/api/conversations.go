package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/messaging"
	"github.com/campusdeals/api/internal/query"
	"github.com/campusdeals/api/internal/realtime"
	"github.com/campusdeals/api/internal/stats"
)

type SendMessageRequest struct {
	ReceiverId int    `json:"receiver_id"`
	Content    string `json:"content"`
	ListingId  *int   `json:"listing_id"`
}

// sendMessage stores a message over REST. If the receiver happens to
// hold a live connection, the stored message is pushed there too, the
// same as a send over the websocket channel.
func (a *App) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	msg, err := a.store.SendMessage(userId, req.ReceiverId, req.Content, req.ListingId)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	a.stats.Incr(stats.MessagesSent)

	if a.rt != nil {
		received := msg
		received.IsMine = false
		if a.rt.SendToUser(msg.ReceiverId, realtime.NewMessage(received)) {
			a.stats.Incr(stats.LiveDeliveries)
		} else {
			a.stats.Incr(stats.OfflineStores)
		}
	}

	a.writeJson(w, http.StatusCreated, msg)
}

func (a *App) deleteMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	msg, err := a.store.DeleteMessage(id, userId)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	a.writeJson(w, http.StatusOK, msg)
}

func (a *App) listConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	conversations, err := a.store.ListConversations(userId)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	a.writeJson(w, http.StatusOK, conversations)
}

func (a *App) getConversation(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	conversation, err := a.store.GetConversation(id, userId)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	a.writeJson(w, http.StatusOK, conversation)
}

func (a *App) listConversationMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	p, err := query.Parse(r.URL.Query(), messaging.MessagePolicy)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	page, err := a.store.ListMessages(id, userId, p)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	a.writeJson(w, http.StatusOK, page)
}

func (a *App) markConversationRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	id, err := pathId(r)
	if err != nil {
		a.writeError(w, NewBadRequestError())
		return
	}

	marked, err := a.store.MarkRead(id, userId)
	if err != nil {
		a.writeError(w, fromAppError(err))
		return
	}

	if marked > 0 {
		a.stats.Incr(stats.ReadReceipts)
	}

	if a.rt != nil {
		if other, err := a.store.OtherParticipant(id, userId); err == nil {
			a.rt.SendToUser(other, realtime.MessagesRead(id, userId))
		}
	}

	a.writeJson(w, http.StatusOK, struct {
		MarkedCount int `json:"marked_count"`
	}{MarkedCount: marked})
}

func (a *App) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	user, err := a.db.GetUserById(id)
	if err != nil {
		if database.IsNotFound(err) {
			a.writeError(w, NewNotFoundError())
			return
		}
		a.writeError(w, NewInternalServerError(err))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(a.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Println("error upgrading connection:", err)
		a.stats.Incr(stats.ConnectionFailures)
		return
	}

	client := realtime.NewClient(toUser(user), conn, a.rt, a.log)

	a.rt.RegisterClient(client)
	go client.Write()
	go client.Read()
}
