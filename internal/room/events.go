package room

import "encoding/json"

// Outbound event types. Everything a client ever receives is a JSON
// envelope {type, payload}.
const (
	EventRoomState = "room-state"
	EventWheelSpun = "wheel-spun"
	EventError     = "error"
)

// Error codes carried by EventError payloads.
const (
	CodeRoomNotFound = "ROOM_NOT_FOUND"
	CodeRoomExists   = "ROOM_EXISTS"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// SpinResult is the wheel-spun payload. Ephemeral: broadcast but never
// persisted.
type SpinResult struct {
	WinnerIndex int `json:"winnerIndex"`
}

// ErrorEvent is the error payload sent to a single requester.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encodeEvent(typ string, payload any) []byte {
	b, err := json.Marshal(envelope{Type: typ, Payload: payload})
	if err != nil {
		// Payloads are our own structs; this cannot fail at runtime.
		return nil
	}
	return b
}
