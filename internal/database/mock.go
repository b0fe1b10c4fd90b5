package database

import (
	"github.com/stretchr/testify/mock"

	"github.com/campusdeals/api/internal/query"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) UpdateUser(params UpdateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserById(userId int) (User, error) {
	args := m.Called(userId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) DeleteUser(userId int) error {
	args := m.Called(userId)
	return args.Error(0)
}
func (m *MockRepository) ListUsers(p query.Params, f query.UserFilter) ([]User, int, error) {
	args := m.Called(p, f)
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateCampus(params CreateCampusParams) (Campus, error) {
	args := m.Called(params)
	return args.Get(0).(Campus), args.Error(1)
}
func (m *MockRepository) UpdateCampus(params UpdateCampusParams) (Campus, error) {
	args := m.Called(params)
	return args.Get(0).(Campus), args.Error(1)
}
func (m *MockRepository) GetCampusById(campusId int) (Campus, error) {
	args := m.Called(campusId)
	return args.Get(0).(Campus), args.Error(1)
}
func (m *MockRepository) DeleteCampus(campusId int) error {
	args := m.Called(campusId)
	return args.Error(0)
}
func (m *MockRepository) ListCampuses(p query.Params, f query.SlugFilter) ([]Campus, int, error) {
	args := m.Called(p, f)
	return args.Get(0).([]Campus), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateCategory(params CreateCategoryParams) (Category, error) {
	args := m.Called(params)
	return args.Get(0).(Category), args.Error(1)
}
func (m *MockRepository) UpdateCategory(params UpdateCategoryParams) (Category, error) {
	args := m.Called(params)
	return args.Get(0).(Category), args.Error(1)
}
func (m *MockRepository) GetCategoryById(categoryId int) (Category, error) {
	args := m.Called(categoryId)
	return args.Get(0).(Category), args.Error(1)
}
func (m *MockRepository) DeleteCategory(categoryId int) error {
	args := m.Called(categoryId)
	return args.Error(0)
}
func (m *MockRepository) ListCategories(p query.Params, f query.SlugFilter) ([]Category, int, error) {
	args := m.Called(p, f)
	return args.Get(0).([]Category), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateListing(params CreateListingParams) (Listing, error) {
	args := m.Called(params)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockRepository) UpdateListing(params UpdateListingParams) (Listing, error) {
	args := m.Called(params)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockRepository) GetListingById(listingId int) (Listing, error) {
	args := m.Called(listingId)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockRepository) GetListingByExternalId(externalId string) (Listing, error) {
	args := m.Called(externalId)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockRepository) DeleteListing(listingId int) error {
	args := m.Called(listingId)
	return args.Error(0)
}
func (m *MockRepository) ListListings(p query.Params, f query.ListingFilter) ([]Listing, int, error) {
	args := m.Called(p, f)
	return args.Get(0).([]Listing), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateFavorite(userId, listingId int) (Favorite, error) {
	args := m.Called(userId, listingId)
	return args.Get(0).(Favorite), args.Error(1)
}
func (m *MockRepository) DeleteFavorite(userId, listingId int) error {
	args := m.Called(userId, listingId)
	return args.Error(0)
}
func (m *MockRepository) ListFavoriteListings(userId int) ([]Listing, error) {
	args := m.Called(userId)
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) CreateReview(params CreateReviewParams) (Review, error) {
	args := m.Called(params)
	return args.Get(0).(Review), args.Error(1)
}
func (m *MockRepository) ListReviewsForUser(revieweeId int) ([]Review, error) {
	args := m.Called(revieweeId)
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockRepository) GetConversationByParticipants(userAId, userBId int, listingId *int) (Conversation, error) {
	args := m.Called(userAId, userBId, listingId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) CreateConversation(user1Id, user2Id int, listingId *int) (Conversation, error) {
	args := m.Called(user1Id, user2Id, listingId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) GetConversationById(conversationId int) (Conversation, error) {
	args := m.Called(conversationId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) ListConversationSummaries(userId int) ([]ConversationSummary, error) {
	args := m.Called(userId)
	return args.Get(0).([]ConversationSummary), args.Error(1)
}
func (m *MockRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) CountMessages(conversationId int) (int, error) {
	args := m.Called(conversationId)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) ListMessages(conversationId, limit, offset int) ([]Message, error) {
	args := m.Called(conversationId, limit, offset)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) MarkMessagesRead(conversationId, receiverId int) (int, error) {
	args := m.Called(conversationId, receiverId)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) GetMessageById(messageId int) (Message, error) {
	args := m.Called(messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) ReplaceMessageContent(messageId int, content string) (Message, error) {
	args := m.Called(messageId, content)
	return args.Get(0).(Message), args.Error(1)
}
