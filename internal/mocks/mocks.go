package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
)

type PlaceRepositoryMock struct {
	mock.Mock
}

func (m *PlaceRepositoryMock) Get(ctx context.Context, placeID string) (models.Place, error) {
	args := m.Called(ctx, placeID)
	var place models.Place
	if val := args.Get(0); val != nil {
		place = val.(models.Place)
	}
	return place, args.Error(1)
}

func (m *PlaceRepositoryMock) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *PlaceRepositoryMock) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Place, error) {
	args := m.Called(ctx, ownerID, limit)
	var places []models.Place
	if val := args.Get(0); val != nil {
		places = val.([]models.Place)
	}
	return places, args.Error(1)
}

func (m *PlaceRepositoryMock) Feed(ctx context.Context, viewerID string, filter models.PlaceFilter) ([]models.Place, error) {
	args := m.Called(ctx, viewerID, filter)
	var places []models.Place
	if val := args.Get(0); val != nil {
		places = val.([]models.Place)
	}
	return places, args.Error(1)
}

func (m *PlaceRepositoryMock) Create(ctx context.Context, ownerID string, input models.PlaceInput) (models.Place, error) {
	args := m.Called(ctx, ownerID, input)
	var place models.Place
	if val := args.Get(0); val != nil {
		place = val.(models.Place)
	}
	return place, args.Error(1)
}

func (m *PlaceRepositoryMock) Update(ctx context.Context, placeID, ownerID string, input models.PlaceInput) (models.Place, error) {
	args := m.Called(ctx, placeID, ownerID, input)
	var place models.Place
	if val := args.Get(0); val != nil {
		place = val.(models.Place)
	}
	return place, args.Error(1)
}

func (m *PlaceRepositoryMock) Delete(ctx context.Context, placeID, ownerID string) error {
	args := m.Called(ctx, placeID, ownerID)
	return args.Error(0)
}

func (m *PlaceRepositoryMock) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) Get(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) Upsert(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error) {
	args := m.Called(ctx, userID, input)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) Exists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) Upsert(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (models.Reaction, error) {
	args := m.Called(ctx, placeID, userID, reactionType)
	var reaction models.Reaction
	if val := args.Get(0); val != nil {
		reaction = val.(models.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *ReactionRepositoryMock) FindFromUserOnPlaces(ctx context.Context, fromUID string, reactionType models.ReactionType, placeIDs []string) ([]models.Reaction, error) {
	args := m.Called(ctx, fromUID, reactionType, placeIDs)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

func (m *ReactionRepositoryMock) Get(ctx context.Context, placeID, userID string) (models.Reaction, error) {
	args := m.Called(ctx, placeID, userID)
	var reaction models.Reaction
	if val := args.Get(0); val != nil {
		reaction = val.(models.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *ReactionRepositoryMock) Delete(ctx context.Context, placeID, userID string) error {
	args := m.Called(ctx, placeID, userID)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) StatsForPlace(ctx context.Context, placeID string) (models.ReactionStats, error) {
	args := m.Called(ctx, placeID)
	var stats models.ReactionStats
	if val := args.Get(0); val != nil {
		stats = val.(models.ReactionStats)
	}
	return stats, args.Error(1)
}

func (m *ReactionRepositoryMock) ListForUser(ctx context.Context, userID string, reactionType models.ReactionType, limit int) ([]models.Reaction, error) {
	args := m.Called(ctx, userID, reactionType, limit)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

func (m *ReactionRepositoryMock) CountByTypeForUser(ctx context.Context, userID string) (map[models.ReactionType]int, error) {
	args := m.Called(ctx, userID)
	var counts map[models.ReactionType]int
	if val := args.Get(0); val != nil {
		counts = val.(map[models.ReactionType]int)
	}
	return counts, args.Error(1)
}

type ChatRoomRepositoryMock struct {
	mock.Mock
}

func (m *ChatRoomRepositoryMock) Find(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error) {
	args := m.Called(ctx, placeID, userA, userB)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRoomRepositoryMock) Insert(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error) {
	args := m.Called(ctx, placeID, userA, userB)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRoomRepositoryMock) Get(ctx context.Context, roomID string) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRoomRepositoryMock) ListForUser(ctx context.Context, userID string) ([]models.ChatRoomSummary, error) {
	args := m.Called(ctx, userID)
	var rooms []models.ChatRoomSummary
	if val := args.Get(0); val != nil {
		rooms = val.([]models.ChatRoomSummary)
	}
	return rooms, args.Error(1)
}

func (m *ChatRoomRepositoryMock) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *ChatRoomRepositoryMock) Delete(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, roomID, senderID, body string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRecent(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, roomID, readerID string, messageIDs []string) ([]string, error) {
	args := m.Called(ctx, roomID, readerID, messageIDs)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRoomRead(ctx context.Context, roomID, readerID string) ([]string, error) {
	args := m.Called(ctx, roomID, readerID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

// MaterializerMock stands in for the chat room materializer.
type MaterializerMock struct {
	mock.Mock
}

func (m *MaterializerMock) Materialize(ctx context.Context, placeID, a, b string) (models.ChatRoom, error) {
	args := m.Called(ctx, placeID, a, b)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

type AnnouncerMock struct {
	mock.Mock
}

func (m *AnnouncerMock) RoomCreated(ctx context.Context, room models.ChatRoom) {
	m.Called(ctx, room)
}

type TokenVerifierMock struct {
	mock.Mock
}

func (m *TokenVerifierMock) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

var (
	_ repositories.PlaceRepository    = (*PlaceRepositoryMock)(nil)
	_ repositories.ProfileRepository  = (*ProfileRepositoryMock)(nil)
	_ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
	_ repositories.ChatRoomRepository = (*ChatRoomRepositoryMock)(nil)
	_ repositories.MessageRepository  = (*MessageRepositoryMock)(nil)
)
