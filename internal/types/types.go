package types

import (
	"time"
)

type User struct {
	Id            int       `json:"id"`
	Name          string    `json:"name"`
	EmailAddress  string    `json:"email_address,omitempty"`
	Password      string    `json:"-"`
	Role          string    `json:"role,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	IsVerified    bool      `json:"is_verified"`
	PositiveCount int       `json:"positive_count"`
	NeutralCount  int       `json:"neutral_count"`
	NegativeCount int       `json:"negative_count"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type Campus struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Category struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Listing struct {
	Id          int       `json:"id"`
	ExternalId  string    `json:"external_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Condition   string    `json:"condition"`
	Price       float64   `json:"price"`
	ImageUrl    string    `json:"image_url,omitempty"`
	UserId      int       `json:"user_id"`
	CategoryId  *int      `json:"category_id,omitempty"`
	CampusId    *int      `json:"campus_id,omitempty"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ListingRef is the reduced listing shape attached to conversations.
type ListingRef struct {
	Id    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type Favorite struct {
	Id        int       `json:"id"`
	UserId    int       `json:"user_id"`
	ListingId int       `json:"listing_id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Review struct {
	Id         int       `json:"id"`
	Review     string    `json:"review"`
	ReviewerId int       `json:"reviewer_id"`
	RevieweeId int       `json:"reviewee_id"`
	Rating     string    `json:"rating"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	Id             int        `json:"id"`
	ConversationId int        `json:"conversation_id"`
	SenderId       int        `json:"sender_id"`
	ReceiverId     int        `json:"receiver_id"`
	Content        string     `json:"content"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	IsMine         bool       `json:"is_mine,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LastMessage is the denormalized snapshot cached on a conversation.
type LastMessage struct {
	Content string     `json:"content,omitempty"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
}

type Conversation struct {
	Id          int         `json:"id"`
	OtherUser   User        `json:"other_user"`
	Listing     *ListingRef `json:"listing,omitempty"`
	LastMessage LastMessage `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}
