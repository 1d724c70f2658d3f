package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DiAndyW/TrueTalent/internal/room"
)

// Inbound event names (client → server)
const (
	evCreateRoom       = "create-room"
	evJoinRoom         = "join-room"
	evCodeUpdate       = "code-update"
	evLanguageChange   = "language-change"
	evQuestionSelected = "question-selected"
	evChatMessage      = "chat-message"
	evExecuteCode      = "execute-code"
)

var errEmptyPayload = errors.New("missing payload")

// One struct per inbound event. Payloads are validated here, at the
// boundary, so the manager only ever sees well-formed requests.

type CreateRoomPayload struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (p CreateRoomPayload) Validate() error {
	if p.Username == "" {
		return errors.New("username required")
	}
	if !room.ValidRole(p.Role) {
		return fmt.Errorf("unknown role %q", p.Role)
	}
	return nil
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (p JoinRoomPayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	if p.Username == "" {
		return errors.New("username required")
	}
	if !room.ValidRole(p.Role) {
		return fmt.Errorf("unknown role %q", p.Role)
	}
	return nil
}

type CodeUpdatePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

func (p CodeUpdatePayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	return nil
}

type LanguageChangePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

func (p LanguageChangePayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	if p.Language == "" {
		return errors.New("language required")
	}
	return nil
}

type QuestionSelectedPayload struct {
	RoomID  string          `json:"roomId"`
	Problem json.RawMessage `json:"problem"`
}

func (p QuestionSelectedPayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	return nil
}

type ChatMessagePayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"` // informational; the registered name wins
	Message  string `json:"message"`
}

func (p ChatMessagePayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	return nil
}

type ExecuteCodePayload struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (p ExecuteCodePayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId required")
	}
	if p.Language == "" {
		return errors.New("language required")
	}
	return nil
}

type payload interface {
	Validate() error
}

// decode unmarshals and validates one inbound payload
func decode[T payload](raw json.RawMessage) (T, error) {
	var p T
	if len(raw) == 0 {
		return p, errEmptyPayload
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("malformed payload: %w", err)
	}
	return p, p.Validate()
}
