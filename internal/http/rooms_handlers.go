package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thinkingstill/KegelRoulette/internal/room"
	"github.com/thinkingstill/KegelRoulette/internal/ws"
)

type RoomsAPI struct{ Hub *ws.Hub }

type createRoomReq struct {
	TaskMagnitude int    `json:"taskMagnitude"`
	DisplayName   string `json:"displayName"`
	AvatarSeed    string `json:"avatarSeed"`
}

type createRoomResp struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type joinRoomReq struct {
	DisplayName string `json:"displayName"`
	AvatarSeed  string `json:"avatarSeed"`
}

type joinRoomResp struct {
	PlayerID string `json:"playerId"`
}

// Create makes a room with server-generated room and member ids and
// returns both, the non-websocket creation path.
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	roomID, memberID, err := a.Hub.CreateRoom(r.Context(), req.DisplayName, req.AvatarSeed, req.TaskMagnitude)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, createRoomResp{RoomID: roomID, PlayerID: memberID})
}

// Join adds a member to an existing room.
func (a *RoomsAPI) Join(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	var req joinRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	memberID, err := a.Hub.JoinRoom(r.Context(), id, req.DisplayName, req.AvatarSeed)
	if errors.Is(err, room.ErrNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, joinRoomResp{PlayerID: memberID})
}

// Get returns the current room state as JSON.
func (a *RoomsAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	snap, err := a.Hub.RoomSnapshot(r.Context(), id)
	if errors.Is(err, room.ErrNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, snap)
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
