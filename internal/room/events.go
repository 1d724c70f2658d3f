package room

import "encoding/json"

// Outbound event names (server → client)
const (
	EventRoomJoined       = "room-joined"
	EventUserJoined       = "user-joined"
	EventUserLeft         = "user-left"
	EventCodeUpdate       = "code-update"
	EventLanguageChange   = "language-change"
	EventQuestionSelected = "question-selected"
	EventChatMessage      = "chat-message"
	EventExecutionStarted = "code-execution-started"
	EventExecutionResult  = "code-execution-result"
	EventError            = "error"
)

// RoomJoined confirms a create/join to the requester. Problem carries
// the currently selected problem so late joiners sync without an extra
// round trip; it is omitted when nothing is selected.
type RoomJoined struct {
	RoomID      string          `json:"roomId"`
	InitialCode string          `json:"initialCode"`
	Language    string          `json:"language"`
	Role        Role            `json:"role"`
	Problem     json.RawMessage `json:"problem,omitempty"`
}

// UserEvent announces a participant arriving or leaving
type UserEvent struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
}

type CodeUpdate struct {
	Code string `json:"code"`
}

type LanguageChange struct {
	Language string `json:"language"`
}

// QuestionSelected relays the interviewer's pick. Problem is null when
// the selection was cleared (client shows the chooser again).
type QuestionSelected struct {
	Problem json.RawMessage `json:"problem"`
}

type ChatMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ExecutionStarted and ExecutionResult share a requestId so overlapping
// runs in one room can be matched to the right outcome.
type ExecutionStarted struct {
	RequestID string `json:"requestId"`
}

// ExecutionResult carries exactly one of Result or Error
type ExecutionResult struct {
	RequestID string  `json:"requestId"`
	Result    *string `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
