package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/thinkingstill/KegelRoulette/internal/room"
)

// Hub routes connections and messages to the coordinator owning the
// named room, creating coordinators on demand. One coordinator per
// room identity; the hub only serializes map access, never room state.
type Hub struct {
	log           *slog.Logger
	store         room.Store
	sweepInterval time.Duration

	mu     sync.Mutex
	coords map[string]*room.Coordinator
}

func NewHub(logger *slog.Logger, st room.Store, sweepInterval time.Duration) *Hub {
	return &Hub{
		log:           logger,
		store:         st,
		sweepInterval: sweepInterval,
		coords:        map[string]*room.Coordinator{},
	}
}

// Run drives the periodic inactivity sweep until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			h.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sweep prunes every live room and drops coordinators that hold
// neither a room nor a connection.
func (h *Hub) sweep(ctx context.Context) {
	h.mu.Lock()
	coords := make([]*room.Coordinator, 0, len(h.coords))
	for _, c := range h.coords {
		coords = append(coords, c)
	}
	h.mu.Unlock()

	// Prune outside the hub lock; each coordinator serializes itself.
	for _, c := range coords {
		c.Sweep(ctx)
	}

	// Evict under the hub lock, retiring each coordinator first: a
	// caller that fetched the pointer before eviction finds it refuses
	// work and re-fetches, instead of operating on an orphan while a
	// second coordinator materializes for the same room.
	h.mu.Lock()
	for id, c := range h.coords {
		if c.Retire() {
			delete(h.coords, id)
		}
	}
	h.mu.Unlock()
}

// coordinator returns the coordinator for a room identity, creating it
// if needed.
func (h *Hub) coordinator(roomID string) *room.Coordinator {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.coords[roomID]
	if c == nil {
		c = room.NewCoordinator(roomID, h.store, h.log)
		h.coords[roomID] = c
	}
	return c
}

// ServeWS handles a new /ws connection. Room and member identity come
// from query params; missing either is rejected before the upgrade.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomID := r.URL.Query().Get("roomId")
	memberID := r.URL.Query().Get("playerId")
	if roomID == "" || memberID == "" {
		http.Error(w, "roomId and playerId required", http.StatusBadRequest)
		return
	}

	conn, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(conn)
	coord := h.coordinator(roomID)
	for !coord.Attach(ctx, memberID, c.Out()) {
		// Lost a race with the sweep; the map no longer holds this
		// coordinator, so the next fetch creates a fresh one.
		coord = h.coordinator(roomID)
	}
	h.log.Debug("ws.connected", "room", roomID, "member", memberID)

	// Outbound writer
	go c.WriteLoop(ctx)

	// Inbound reader: every frame is an envelope for this room's
	// coordinator.
	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(ctx, coord, memberID, payload)
	}

	// A drop is a liveness signal, not a leave.
	coord.Detach(memberID)
	_ = c.Close()
	h.log.Debug("ws.disconnected", "room", roomID, "member", memberID)
}

// dispatch parses one inbound envelope and applies it. Malformed or
// unrecognized messages are silently discarded.
func (h *Hub) dispatch(ctx context.Context, coord *room.Coordinator, memberID string, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}
	switch env.Type {
	case msgCreateRoom:
		var p createRoomPayload
		if len(env.Payload) > 0 && json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		err := coord.Create(ctx, memberID, p.DisplayName, p.AvatarSeed, p.TaskMagnitude)
		if errors.Is(err, room.ErrExists) {
			coord.NotifyError(memberID, room.CodeRoomExists, "room already exists")
		}
	case msgJoinRoom:
		var p joinRoomPayload
		if len(env.Payload) > 0 && json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		err := coord.Join(ctx, memberID, p.DisplayName, p.AvatarSeed)
		if errors.Is(err, room.ErrNotFound) {
			coord.NotifyError(memberID, room.CodeRoomNotFound, "room does not exist or has not been created")
		}
	case msgGetRoom:
		if errors.Is(coord.RequestState(ctx, memberID), room.ErrNotFound) {
			coord.NotifyError(memberID, room.CodeRoomNotFound, "room does not exist or has not been created")
		}
	case msgSpinWheel:
		coord.Spin(ctx, memberID)
	case msgCompleted:
		var p completedPayload
		if len(env.Payload) > 0 && json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		coord.Complete(ctx, p.MemberID)
	case msgHeartbeat:
		coord.Heartbeat(ctx, memberID)
	}
}

// CreateRoom serves the REST creation path: ids are generated
// server-side and the creation runs through the same coordinator as
// websocket traffic.
func (h *Hub) CreateRoom(ctx context.Context, displayName, avatarSeed string, taskMagnitude int) (roomID, memberID string, err error) {
	roomID = newRoomID()
	memberID = uuid.NewString()
	for {
		err := h.coordinator(roomID).Create(ctx, memberID, displayName, avatarSeed, taskMagnitude)
		if errors.Is(err, room.ErrRetired) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return roomID, memberID, nil
	}
}

// JoinRoom serves the REST join path with a server-generated member id.
func (h *Hub) JoinRoom(ctx context.Context, roomID, displayName, avatarSeed string) (string, error) {
	memberID := uuid.NewString()
	for {
		err := h.coordinator(roomID).Join(ctx, memberID, displayName, avatarSeed)
		if errors.Is(err, room.ErrRetired) {
			continue
		}
		if err != nil {
			return "", err
		}
		return memberID, nil
	}
}

// RoomSnapshot returns a read-only copy of the room state.
func (h *Hub) RoomSnapshot(ctx context.Context, roomID string) (*room.Room, error) {
	for {
		snap, err := h.coordinator(roomID).Snapshot(ctx)
		if errors.Is(err, room.ErrRetired) {
			continue
		}
		return snap, err
	}
}

// newRoomID makes a short shareable room code.
func newRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
