package database

import (
	"github.com/campusdeals/api/internal/query"
)

type Repository interface {
	Ping() error

	CreateUser(params CreateUserParams) (User, error)
	UpdateUser(params UpdateUserParams) (User, error)
	GetUserById(userId int) (User, error)
	GetUserByEmail(email string) (User, error)
	DeleteUser(userId int) error
	ListUsers(p query.Params, f query.UserFilter) ([]User, int, error)

	CreateCampus(params CreateCampusParams) (Campus, error)
	UpdateCampus(params UpdateCampusParams) (Campus, error)
	GetCampusById(campusId int) (Campus, error)
	DeleteCampus(campusId int) error
	ListCampuses(p query.Params, f query.SlugFilter) ([]Campus, int, error)

	CreateCategory(params CreateCategoryParams) (Category, error)
	UpdateCategory(params UpdateCategoryParams) (Category, error)
	GetCategoryById(categoryId int) (Category, error)
	DeleteCategory(categoryId int) error
	ListCategories(p query.Params, f query.SlugFilter) ([]Category, int, error)

	CreateListing(params CreateListingParams) (Listing, error)
	UpdateListing(params UpdateListingParams) (Listing, error)
	GetListingById(listingId int) (Listing, error)
	GetListingByExternalId(externalId string) (Listing, error)
	DeleteListing(listingId int) error
	ListListings(p query.Params, f query.ListingFilter) ([]Listing, int, error)

	CreateFavorite(userId, listingId int) (Favorite, error)
	DeleteFavorite(userId, listingId int) error
	ListFavoriteListings(userId int) ([]Listing, error)

	CreateReview(params CreateReviewParams) (Review, error)
	ListReviewsForUser(revieweeId int) ([]Review, error)

	GetConversationByParticipants(userAId, userBId int, listingId *int) (Conversation, error)
	CreateConversation(user1Id, user2Id int, listingId *int) (Conversation, error)
	GetConversationById(conversationId int) (Conversation, error)
	ListConversationSummaries(userId int) ([]ConversationSummary, error)
	CreateMessage(params CreateMessageParams) (Message, error)
	CountMessages(conversationId int) (int, error)
	ListMessages(conversationId, limit, offset int) ([]Message, error)
	MarkMessagesRead(conversationId, receiverId int) (int, error)
	GetMessageById(messageId int) (Message, error)
	ReplaceMessageContent(messageId int, content string) (Message, error)
}
