package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id            int
	Name          string
	EmailAddress  string
	PasswordHash  string
	Role          string
	Phone         sql.NullString
	IsVerified    bool
	PositiveCount int
	NeutralCount  int
	NegativeCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Campus struct {
	Id        int
	Name      string
	Slug      string
	Lat       sql.NullFloat64
	Lon       sql.NullFloat64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	Id        int
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Listing struct {
	Id          int
	ExternalId  string
	Title       string
	Description string
	Condition   string
	Price       float64
	ImageUrl    sql.NullString
	UserId      int
	CategoryId  sql.NullInt64
	CampusId    sql.NullInt64
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Favorite struct {
	Id        int
	UserId    int
	ListingId int
	CreatedAt time.Time
}

type Review struct {
	Id         int
	Review     string
	ReviewerId int
	RevieweeId int
	Rating     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Conversation struct {
	Id                 int
	User1Id            int
	User2Id            int
	ListingId          sql.NullInt64
	LastMessageContent sql.NullString
	LastMessageAt      sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Message struct {
	Id             int
	ConversationId int
	SenderId       int
	ReceiverId     int
	Content        string
	IsRead         bool
	ReadAt         sql.NullTime
	SenderName     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ConversationSummary is one row of a user's conversation list: the
// conversation plus the other participant, the optional listing and
// the unread message count, all resolved in a single query.
type ConversationSummary struct {
	Conversation
	OtherUserId    int
	OtherUserName  string
	OtherUserEmail string
	ListingTitle   sql.NullString
	ListingPrice   sql.NullFloat64
	UnreadCount    int
}

type CreateUserParams struct {
	Name         string
	EmailAddress string
	PasswordHash string
	Phone        string
}

type UpdateUserParams struct {
	UserId       int
	Name         string
	PasswordHash string
	Phone        string
}

type CreateCampusParams struct {
	Name string
	Slug string
	Lat  *float64
	Lon  *float64
}

type UpdateCampusParams struct {
	CampusId int
	Name     string
	Slug     string
	Lat      *float64
	Lon      *float64
}

type CreateCategoryParams struct {
	Name string
	Slug string
}

type UpdateCategoryParams struct {
	CategoryId int
	Name       string
	Slug       string
}

type CreateListingParams struct {
	ExternalId  string
	Title       string
	Description string
	Condition   string
	Price       float64
	ImageUrl    string
	UserId      int
	CategoryId  *int
	CampusId    *int
}

type UpdateListingParams struct {
	ListingId   int
	Title       string
	Description string
	Condition   string
	Price       float64
	ImageUrl    string
	CategoryId  *int
	CampusId    *int
	IsAvailable bool
}

type CreateReviewParams struct {
	Review     string
	ReviewerId int
	RevieweeId int
	Rating     string
}

type CreateMessageParams struct {
	ConversationId int
	SenderId       int
	ReceiverId     int
	Content        string
}
