package ws

import "encoding/json"

// Inbound message types. Anything else is dropped on the floor.
const (
	msgCreateRoom = "create-room"
	msgJoinRoom   = "join-room"
	msgGetRoom    = "get-room"
	msgSpinWheel  = "spin-wheel"
	msgCompleted  = "completed-exercise"
	msgHeartbeat  = "heartbeat"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	TaskMagnitude int    `json:"taskMagnitude"`
	DisplayName   string `json:"displayName"`
	AvatarSeed    string `json:"avatarSeed"`
}

type joinRoomPayload struct {
	DisplayName string `json:"displayName"`
	AvatarSeed  string `json:"avatarSeed"`
}

type completedPayload struct {
	MemberID string `json:"memberId"`
}
