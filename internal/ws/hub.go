package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
)

const (
	KindRoom = "room"
	KindUser = "user"

	writeWait = 10 * time.Second
)

// Envelope is a payload addressed to every local socket of a room or user.
type Envelope struct {
	Kind    string          `json:"kind"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// Relay fans envelopes out to every API replica, this one included.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
}

// Hub maintains active websocket rooms and per-user notification sockets.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*client
	users map[string]map[*websocket.Conn]*client
	mu    sync.RWMutex
	relay Relay
	log   *zap.Logger
}

// NewHub creates an empty hub that delivers locally.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
		users: make(map[string]map[*websocket.Conn]*client),
		log:   log,
	}
}

// UseRelay routes broadcasts through relay; the relay's subscriber must call Deliver.
func (h *Hub) UseRelay(relay Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = relay
}

// AddRoomClient registers a websocket connection to a chat room.
func (h *Hub) AddRoomClient(roomID string, conn *websocket.Conn, info ConnInfo) {
	h.add(h.rooms, roomID, conn, info)
}

// RemoveRoomClient removes a room websocket connection.
func (h *Hub) RemoveRoomClient(roomID string, conn *websocket.Conn) {
	h.remove(h.rooms, roomID, conn)
}

// AddUserClient registers a notification socket for a user.
func (h *Hub) AddUserClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.add(h.users, userID, conn, info)
}

// RemoveUserClient removes a notification socket.
func (h *Hub) RemoveUserClient(userID string, conn *websocket.Conn) {
	h.remove(h.users, userID, conn)
}

func (h *Hub) add(set map[string]map[*websocket.Conn]*client, key string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := set[key]; !ok {
		set[key] = make(map[*websocket.Conn]*client)
	}
	set[key][conn] = &client{conn: conn, info: info}
}

func (h *Hub) remove(set map[string]map[*websocket.Conn]*client, key string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := set[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(set, key)
		}
	}
}

// BroadcastRoomMessage sends a new message to all clients in a room.
func (h *Hub) BroadcastRoomMessage(roomID string, msg models.Message) {
	h.broadcast(KindRoom, roomID, models.RoomEvent{Type: "message", Message: &msg})
}

// BroadcastRoomRead tells a room which messages the reader has seen.
func (h *Hub) BroadcastRoomRead(roomID, readerID string, messageIDs []string) {
	if len(messageIDs) == 0 {
		return
	}
	h.broadcast(KindRoom, roomID, models.RoomEvent{Type: "read", MessageIDs: messageIDs, ReaderID: readerID})
}

// NotifyUser pushes an event to every notification socket of the user.
func (h *Hub) NotifyUser(userID string, event models.MatchEvent) {
	h.broadcast(KindUser, userID, event)
}

func (h *Hub) broadcast(kind, target string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("websocket marshal failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	env := Envelope{Kind: kind, Target: target, Payload: payload}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		err := relay.Publish(context.Background(), env)
		if err == nil {
			return
		}
		h.log.Warn("websocket relay publish failed, delivering locally", zap.Error(err))
	}
	h.Deliver(env)
}

// Deliver writes an envelope to the matching local sockets.
func (h *Hub) Deliver(env Envelope) {
	h.mu.RLock()
	var set map[*websocket.Conn]*client
	switch env.Kind {
	case KindRoom:
		set = h.rooms[env.Target]
	case KindUser:
		set = h.users[env.Target]
	}
	clients := make([]*client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(env.Payload); err != nil {
			h.log.Warn("websocket write error", zap.String("kind", env.Kind), zap.String("target", env.Target), zap.Error(err))
			c.conn.Close()
			if env.Kind == KindRoom {
				h.RemoveRoomClient(env.Target, c.conn)
			} else {
				h.RemoveUserClient(env.Target, c.conn)
			}
			publishWSEvent(context.Background(), env.Kind, env.Target, "ws_error", c.info, err.Error())
		}
	}
}

func (h *Hub) roomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) userSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func publishWSEvent(ctx context.Context, kind, resourceID, event string, info ConnInfo, reason string) {
	observability.IncWSEvent(kind, event)
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: observability.EventTypeWS,
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        kind,
				"resource_id": resourceID,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": durationMillis(info.ConnectedAt),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func durationMillis(since time.Time) int64 {
	if since.IsZero() {
		return 0
	}
	return time.Since(since).Milliseconds()
}

func wsRoutingKey(kind string) string {
	if kind == KindUser {
		return "ws_events.notifications"
	}
	return "ws_events.rooms"
}
