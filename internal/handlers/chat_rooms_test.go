package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jurny-api/internal/mocks"
	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
	"jurny-api/internal/ws"
)

type broadcasterMock struct {
	mock.Mock
}

func (m *broadcasterMock) BroadcastRoomMessage(roomID string, msg models.Message) {
	m.Called(roomID, msg)
}

func (m *broadcasterMock) BroadcastRoomRead(roomID, readerID string, messageIDs []string) {
	m.Called(roomID, readerID, messageIDs)
}

var (
	_ RoomBroadcaster = (*broadcasterMock)(nil)
	_ RoomBroadcaster = (*ws.Hub)(nil)
)

var memberRoom = models.ChatRoom{ID: testRoomID, PlaceID: testPlaceID, UserA: testUserID, UserB: otherUserID}

func setupChatRoomRouter(rooms *ChatRoomHandler, messages *MessageHandler) *gin.Engine {
	r := newTestRouter()
	r.GET("/chat-rooms", rooms.ListRooms)
	r.GET("/chat-rooms/unread", rooms.UnreadCount)
	r.GET("/chat-rooms/:room_id", rooms.GetRoom)
	r.DELETE("/chat-rooms/:room_id", rooms.DeleteRoom)
	r.GET("/chat-rooms/:room_id/messages", messages.ListMessages)
	r.POST("/chat-rooms/:room_id/messages", messages.PostMessage)
	r.POST("/chat-rooms/:room_id/messages/read", messages.MarkRead)
	r.POST("/chat-rooms/:room_id/read", messages.MarkRoomRead)
	return r
}

func TestListRooms(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, nil, nil))

	name := "Ren"
	title := "Hakone"
	body := "see you there"
	sentAt := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	rooms.On("ListForUser", mock.Anything, testUserID).Return([]models.ChatRoomSummary{{
		ID:            testRoomID,
		PlaceID:       testPlaceID,
		PlaceTitle:    &title,
		OtherUserID:   otherUserID,
		OtherUserName: &name,
		LatestBody:    &body,
		LatestSentAt:  &sentAt,
		UnreadCount:   2,
	}}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/chat-rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody(t, rec)["rooms"].([]any)
	require.Len(t, list, 1)
	room := list[0].(map[string]any)
	assert.Equal(t, "Hakone", room["place_title"])
	assert.Equal(t, "Ren", room["other_user"].(map[string]any)["name"])
	assert.Equal(t, otherUserID, room["other_user"].(map[string]any)["id"])
	assert.Equal(t, "see you there", room["latest_message"].(map[string]any)["body"])
	assert.EqualValues(t, 2, room["unread_count"])
}

func TestUnreadCount(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, nil, nil))

	rooms.On("UnreadCount", mock.Anything, testUserID).Return(7, nil).Once()

	rec := doRequest(router, http.MethodGet, "/chat-rooms/unread", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decodeBody(t, rec)["unread_count"])
}

func TestGetRoomAccess(t *testing.T) {
	cases := []struct {
		name string
		room models.ChatRoom
		err  error
		code int
	}{
		{"member", memberRoom, nil, http.StatusOK},
		{"stranger", models.ChatRoom{ID: testRoomID, UserA: "a", UserB: "b"}, nil, http.StatusForbidden},
		{"missing", models.ChatRoom{}, repositories.ErrChatRoomNotFound, http.StatusNotFound},
		{"storage", models.ChatRoom{}, assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rooms := new(mocks.ChatRoomRepositoryMock)
			router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, nil, nil))
			rooms.On("Get", mock.Anything, testRoomID).Return(tc.room, tc.err).Once()

			rec := doRequest(router, http.MethodGet, "/chat-rooms/"+testRoomID, "")
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestDeleteRoom(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, nil, nil))

	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()
	rooms.On("Delete", mock.Anything, testRoomID).Return(nil).Once()

	rec := doRequest(router, http.MethodDelete, "/chat-rooms/"+testRoomID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rooms.AssertExpectations(t)
}

func TestListMessages(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, nil))

	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()
	messages.On("ListRecent", mock.Anything, testRoomID, recentMessageLimit).
		Return([]models.Message{{ID: "m1", Body: "hi"}, {ID: "m2", Body: "hello"}}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/chat-rooms/"+testRoomID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["messages"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "m1", list[0].(map[string]any)["id"])
	messages.AssertExpectations(t)
}

func TestPostMessageBroadcasts(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	hub := new(broadcasterMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, hub))

	stored := models.Message{ID: "m1", RoomID: testRoomID, Sender: testUserID, Body: "hi"}
	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()
	messages.On("Create", mock.Anything, testRoomID, testUserID, "hi").Return(stored, nil).Once()
	hub.On("BroadcastRoomMessage", testRoomID, stored).Once()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages", `{"body":"  hi "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestPostMessageRejectsBlank(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, nil))

	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages", `{"body":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageNonMember(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, nil))

	rooms.On("Get", mock.Anything, testRoomID).Return(models.ChatRoom{ID: testRoomID, UserA: "x", UserB: "y"}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages", `{"body":"hi"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkRead(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	hub := new(broadcasterMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, hub))

	msgID := "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee"
	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()
	messages.On("MarkRead", mock.Anything, testRoomID, testUserID, []string{msgID}).Return([]string{msgID}, nil).Once()
	hub.On("BroadcastRoomRead", testRoomID, testUserID, []string{msgID}).Once()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages/read", `{"ids":["`+msgID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{msgID}, decodeBody(t, rec)["updated"])
	hub.AssertExpectations(t)
}

func TestMarkReadRejectsBadIDs(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, nil))

	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Twice()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages/read", `{"ids":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/messages/read", `{"ids":["7"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	messages.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkRoomRead(t *testing.T) {
	rooms := new(mocks.ChatRoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	hub := new(broadcasterMock)
	router := setupChatRoomRouter(NewChatRoomHandler(rooms, nil), NewMessageHandler(rooms, messages, hub))

	rooms.On("Get", mock.Anything, testRoomID).Return(memberRoom, nil).Once()
	messages.On("MarkRoomRead", mock.Anything, testRoomID, testUserID).Return(nil, nil).Once()
	hub.On("BroadcastRoomRead", testRoomID, testUserID, []string{}).Once()

	rec := doRequest(router, http.MethodPost, "/chat-rooms/"+testRoomID+"/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decodeBody(t, rec)["updated"])
	hub.AssertExpectations(t)
}
