package protocol

import (
	"encoding/json"
	"fmt"
)

// Events sent by clients
const (
	EventJoin           = "join"
	EventCodeChange     = "codeChange"
	EventTyping         = "typing"
	EventLanguageChange = "languageChange"
	EventCompileOutput  = "compileOutput"
	EventLeaveRoom      = "leaveRoom"
)

// Events relayed to room subscribers
const (
	EventUserJoined     = "userJoined"
	EventCodeUpdate     = "codeUpdate"
	EventUserTyping     = "userTyping"
	EventLanguageUpdate = "languageUpdate"
	EventReceiveOutput  = "receiveOutput"
)

// Event is the JSON envelope exchanged over the WebSocket, in both
// directions. Only the fields relevant to a given event are populated.
type Event struct {
	Event    string   `json:"event"`
	RoomID   string   `json:"roomId,omitempty"`
	UserName string   `json:"userName,omitempty"`
	Code     string   `json:"code,omitempty"`
	Language string   `json:"language,omitempty"`
	Output   string   `json:"output,omitempty"`
	Users    []string `json:"users,omitempty"`
}

// Parse decodes a single inbound frame. Frames that are not valid JSON
// or carry no event name are rejected; the payload fields themselves are
// untrusted opaque strings and are not validated.
func Parse(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("invalid frame: %w", err)
	}
	if ev.Event == "" {
		return Event{}, fmt.Errorf("frame missing event name")
	}
	return ev, nil
}

// Encode marshals an outbound event. Marshaling an Event cannot fail, so
// errors are swallowed and an empty frame signals a programming error.
func Encode(ev Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	return data
}
