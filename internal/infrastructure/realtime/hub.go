package realtime

import (
	"sync"
)

// Hub coordinates websocket sessions, the Presence registry and logical rooms
// (one room per conversation, one implicit per-user channel via Presence).
// Broadcast fan-out is best-effort: delivery to a slow or closed connection is
// dropped, the persisted record remains the source of truth.
type Hub struct {
	presence *Presence

	mu           sync.RWMutex
	rooms        map[string]map[string]*Connection // conversationID -> connectionID -> connection
	sessionRooms map[string]map[string]struct{}    // connectionID -> set of conversationIDs
}

// NewHub constructs an initialized Hub with its own Presence registry.
func NewHub() *Hub {
	return &Hub{
		presence:     NewPresence(),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Presence exposes the registry for callers that only need online checks.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Attach registers a connection as the live handle for its user and starts its
// write loop. A previous session for the same user is closed after the swap to
// enforce one active socket per user.
func (h *Hub) Attach(conn *Connection) {
	previous := h.presence.SetOnline(conn)

	h.mu.Lock()
	h.sessionRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		h.dropFromRooms(previous)
		previous.Close(4001, "session replaced")
	}
}

// Detach clears the presence entry for conn and removes it from every room.
// In-flight events already dispatched for this connection are unaffected.
func (h *Hub) Detach(conn *Connection) {
	h.presence.Clear(conn)
	h.dropFromRooms(conn)
}

// Join subscribes the connection to the conversation's broadcast channel.
// Membership authorization happens upstream; the hub only tracks subscriptions.
func (h *Hub) Join(conversationID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[conversationID] = room
	}
	room[conn.ID] = conn

	memberships := h.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.sessionRooms[conn.ID] = memberships
	}
	memberships[conversationID] = struct{}{}
}

// Leave removes the connection from the conversation room.
func (h *Hub) Leave(conversationID string, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(conversationID, conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to all members subscribed to the conversation.
// excludeUserID, when non-empty, prevents delivering to that user. Returns the
// number of connections the payload was queued for.
func (h *Hub) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	h.mu.RLock()
	room := h.rooms[conversationID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range room {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// NotifyUser delivers payload on the per-user channel of userID. Returns false
// when the user has no live connection.
func (h *Hub) NotifyUser(userID string, payload []byte) bool {
	conn, ok := h.presence.Handle(userID)
	if !ok {
		return false
	}
	return conn.Send(payload) == nil
}

// IsOnline reports whether userID currently holds a live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

// Close terminates all tracked connections and clears hub state. Every attached
// connection is either registered in Presence or was already closed when its
// session got replaced, so draining the registry covers them all.
func (h *Hub) Close() {
	conns := h.presence.drain()

	h.mu.Lock()
	h.rooms = make(map[string]map[string]*Connection)
	h.sessionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) dropFromRooms(conn *Connection) {
	h.mu.Lock()
	for roomID := range h.sessionRooms[conn.ID] {
		h.leaveLocked(roomID, conn.ID)
	}
	delete(h.sessionRooms, conn.ID)
	h.mu.Unlock()
}

func (h *Hub) leaveLocked(conversationID string, connectionID string) {
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, connectionID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	if memberships, ok := h.sessionRooms[connectionID]; ok {
		delete(memberships, conversationID)
	}
}
