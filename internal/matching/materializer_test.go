package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jurny-api/internal/mocks"
	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
)

const (
	userLow  = "11111111-1111-4111-8111-111111111111"
	userHigh = "22222222-2222-4222-8222-222222222222"
	placeX   = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	placeY   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	placeZ   = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
)

var (
	_ RoomStore        = (*mocks.ChatRoomRepositoryMock)(nil)
	_ RoomMaterializer = (*mocks.MaterializerMock)(nil)
	_ RoomAnnouncer    = (*mocks.AnnouncerMock)(nil)
	_ OwnedPlaces      = (*mocks.PlaceRepositoryMock)(nil)
	_ ReactionFinder   = (*mocks.ReactionRepositoryMock)(nil)
)

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(userHigh, userLow)
	assert.Equal(t, userLow, a)
	assert.Equal(t, userHigh, b)

	a, b = CanonicalPair(userLow, userHigh)
	assert.Equal(t, userLow, a)
	assert.Equal(t, userHigh, b)
}

func TestMaterializeRejectsSelfPair(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	m := NewMaterializer(rooms, nil, nil)

	_, err := m.Materialize(context.Background(), placeX, userLow, userLow)
	require.ErrorIs(t, err, ErrInvalidPairing)
	rooms.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	rooms.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMaterializeReturnsExistingRoom(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	m := NewMaterializer(rooms, nil, nil)
	existing := models.ChatRoom{ID: "room-1", PlaceID: placeX, UserA: userLow, UserB: userHigh}

	rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(existing, nil).Twice()

	first, err := m.Materialize(context.Background(), placeX, userHigh, userLow)
	require.NoError(t, err)
	second, err := m.Materialize(context.Background(), placeX, userLow, userHigh)
	require.NoError(t, err)

	assert.Equal(t, existing, first)
	assert.Equal(t, first, second)
	rooms.AssertExpectations(t)
	rooms.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMaterializeCreatesAndAnnounces(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	announcer := new(mocks.AnnouncerMock)
	m := NewMaterializer(rooms, announcer, nil)
	created := models.ChatRoom{ID: "room-2", PlaceID: placeX, UserA: userLow, UserB: userHigh, CreatedAt: time.Now()}

	rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomNotFound).Once()
	rooms.On("Insert", mock.Anything, placeX, userLow, userHigh).Return(created, nil).Once()
	announcer.On("RoomCreated", mock.Anything, created).Once()

	room, err := m.Materialize(context.Background(), placeX, userHigh, userLow)
	require.NoError(t, err)
	assert.Equal(t, created, room)
	rooms.AssertExpectations(t)
	announcer.AssertExpectations(t)
}

func TestMaterializeRecoversFromUniqueViolation(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	announcer := new(mocks.AnnouncerMock)
	m := NewMaterializer(rooms, announcer, nil)
	winner := models.ChatRoom{ID: "room-3", PlaceID: placeX, UserA: userLow, UserB: userHigh}

	rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomNotFound).Once()
	rooms.On("Insert", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomExists).Once()
	rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(winner, nil).Once()

	room, err := m.Materialize(context.Background(), placeX, userLow, userHigh)
	require.NoError(t, err)
	assert.Equal(t, winner, room)
	rooms.AssertExpectations(t)
	announcer.AssertNotCalled(t, "RoomCreated", mock.Anything, mock.Anything)
}

func TestMaterializePropagatesStorageErrors(t *testing.T) {
	t.Run("find", func(t *testing.T) {
		rooms := new(mocks.ChatRoomRepositoryMock)
		rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, assert.AnError).Once()

		_, err := NewMaterializer(rooms, nil, nil).Materialize(context.Background(), placeX, userLow, userHigh)
		require.ErrorIs(t, err, assert.AnError)
		rooms.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert", func(t *testing.T) {
		rooms := new(mocks.ChatRoomRepositoryMock)
		rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomNotFound).Once()
		rooms.On("Insert", mock.Anything, placeX, userLow, userHigh).Return(nil, assert.AnError).Once()

		_, err := NewMaterializer(rooms, nil, nil).Materialize(context.Background(), placeX, userLow, userHigh)
		require.ErrorIs(t, err, assert.AnError)
		rooms.AssertExpectations(t)
	})

	t.Run("re-read after conflict", func(t *testing.T) {
		rooms := new(mocks.ChatRoomRepositoryMock)
		rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomNotFound).Once()
		rooms.On("Insert", mock.Anything, placeX, userLow, userHigh).Return(nil, repositories.ErrChatRoomExists).Once()
		rooms.On("Find", mock.Anything, placeX, userLow, userHigh).Return(nil, assert.AnError).Once()

		_, err := NewMaterializer(rooms, nil, nil).Materialize(context.Background(), placeX, userLow, userHigh)
		require.ErrorIs(t, err, assert.AnError)
		rooms.AssertExpectations(t)
	})
}
