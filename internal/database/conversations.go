package database

import (
	"database/sql"
	"fmt"
	"time"
)

const conversationColumns = "id, user1_id, user2_id, listing_id, last_message_content, last_message_at, created_at, updated_at"

func scanConversation(row *sql.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(
		&c.Id,
		&c.User1Id,
		&c.User2Id,
		&c.ListingId,
		&c.LastMessageContent,
		&c.LastMessageAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func nullableId(id *int) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

// GetConversationByParticipants looks up the conversation for an
// unordered user pair scoped to listingId. NULL listing only matches
// NULL: a thread about a specific listing is distinct from a general
// thread between the same two users.
func (db *PgRepository) GetConversationByParticipants(userAId, userBId int, listingId *int) (Conversation, error) {
	row := db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations "+
			"WHERE ((user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)) "+
			"AND listing_id IS NOT DISTINCT FROM $3 LIMIT 1",
		userAId,
		userBId,
		nullableId(listingId),
	)

	return scanConversation(row)
}

func (db *PgRepository) CreateConversation(user1Id, user2Id int, listingId *int) (Conversation, error) {
	row := db.conn.QueryRow(
		"INSERT INTO conversations (user1_id, user2_id, listing_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING "+conversationColumns,
		user1Id,
		user2Id,
		nullableId(listingId),
		time.Now().UTC(),
	)

	return scanConversation(row)
}

func (db *PgRepository) GetConversationById(conversationId int) (Conversation, error) {
	row := db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations WHERE id = $1 LIMIT 1",
		conversationId,
	)

	return scanConversation(row)
}

// ListConversationSummaries returns every conversation userId takes
// part in, newest activity first, conversations without messages last.
// Unread counts are aggregated in the same statement rather than one
// query per conversation.
func (db *PgRepository) ListConversationSummaries(userId int) ([]ConversationSummary, error) {
	const listQuery = `
		SELECT
				c.id, c.user1_id, c.user2_id, c.listing_id,
				c.last_message_content, c.last_message_at, c.created_at, c.updated_at,
				u.id, u.name, u.email,
				l.title, l.price,
				COALESCE(un.unread, 0)
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END
		LEFT JOIN listings l ON l.id = c.listing_id
		LEFT JOIN (
				SELECT conversation_id, COUNT(*) AS unread
				FROM messages
				WHERE receiver_id = $1 AND NOT is_read
				GROUP BY conversation_id
		) un ON un.conversation_id = c.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.id ASC
`

	rows, err := db.conn.Query(listQuery, userId)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries = make([]ConversationSummary, 0)
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(
			&s.Id,
			&s.User1Id,
			&s.User2Id,
			&s.ListingId,
			&s.LastMessageContent,
			&s.LastMessageAt,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.OtherUserId,
			&s.OtherUserName,
			&s.OtherUserEmail,
			&s.ListingTitle,
			&s.ListingPrice,
			&s.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}

		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// CreateMessage inserts the message and refreshes the conversation's
// last-message snapshot in one transaction, so concurrent readers of
// the conversation list never observe one without the other.
func (db *PgRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	row := tx.QueryRow(
		"INSERT INTO messages (conversation_id, sender_id, receiver_id, content, is_read, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, FALSE, $5, $5) "+
			"RETURNING id, conversation_id, sender_id, receiver_id, content, is_read, read_at, created_at, updated_at",
		params.ConversationId,
		params.SenderId,
		params.ReceiverId,
		params.Content,
		now,
	)

	var msg Message
	err = row.Scan(
		&msg.Id,
		&msg.ConversationId,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.Content,
		&msg.IsRead,
		&msg.ReadAt,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	_, err = tx.Exec(
		"UPDATE conversations SET last_message_content = $2, last_message_at = $3, updated_at = $3 WHERE id = $1",
		params.ConversationId,
		params.Content,
		now,
	)
	if err != nil {
		return Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return Message{}, err
	}

	return msg, nil
}

func (db *PgRepository) CountMessages(conversationId int) (int, error) {
	var total int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE conversation_id = $1",
		conversationId,
	).Scan(&total)

	return total, err
}

func (db *PgRepository) ListMessages(conversationId, limit, offset int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.is_read, m.read_at, "+
			"m.created_at, m.updated_at, u.name "+
			"FROM messages m JOIN users u ON u.id = m.sender_id "+
			"WHERE m.conversation_id = $1 ORDER BY m.created_at DESC, m.id DESC LIMIT $2 OFFSET $3",
		conversationId,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Id,
			&m.ConversationId,
			&m.SenderId,
			&m.ReceiverId,
			&m.Content,
			&m.IsRead,
			&m.ReadAt,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.SenderName,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgRepository) MarkMessagesRead(conversationId, receiverId int) (int, error) {
	res, err := db.conn.Exec(
		"UPDATE messages SET is_read = TRUE, read_at = $3, updated_at = $3 "+
			"WHERE conversation_id = $1 AND receiver_id = $2 AND NOT is_read",
		conversationId,
		receiverId,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	marked, err := res.RowsAffected()
	return int(marked), err
}

func (db *PgRepository) GetMessageById(messageId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT id, conversation_id, sender_id, receiver_id, content, is_read, read_at, created_at, updated_at "+
			"FROM messages WHERE id = $1 LIMIT 1",
		messageId,
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.ConversationId,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.IsRead,
		&m.ReadAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	return m, err
}

func (db *PgRepository) ReplaceMessageContent(messageId int, content string) (Message, error) {
	row := db.conn.QueryRow(
		"UPDATE messages SET content = $2, updated_at = $3 WHERE id = $1 "+
			"RETURNING id, conversation_id, sender_id, receiver_id, content, is_read, read_at, created_at, updated_at",
		messageId,
		content,
		time.Now().UTC(),
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.ConversationId,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.IsRead,
		&m.ReadAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	return m, err
}
