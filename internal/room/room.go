package room

import (
	"encoding/json"
	"sync"
)

// Role of a participant inside a room. Closed two-valued enum.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleInterviewee Role = "interviewee"
)

// ValidRole reports whether s is one of the two known roles
func ValidRole(s string) bool {
	return s == string(RoleInterviewer) || s == string(RoleInterviewee)
}

const (
	DefaultCode     = "// Start coding here..."
	DefaultLanguage = "javascript"
)

// languages the editor supports; anything else is rejected at the boundary
var languages = map[string]struct{}{
	"javascript": {},
	"python":     {},
	"java":       {},
	"html":       {},
	"css":        {},
}

// ValidLanguage reports whether lang is in the fixed language set
func ValidLanguage(lang string) bool {
	_, ok := languages[lang]
	return ok
}

// Participant is a connection's identity inside one room
type Participant struct {
	ConnID   string
	Username string
	Role     Role
}

// Room is one live interview session: a shared code buffer, a language,
// an optionally selected problem, and the participants editing it.
//
// All fields are guarded by the embedded mutex. The manager holds the
// lock for the full duration of any operation on the room, so mutations
// to the same room never interleave.
type Room struct {
	sync.Mutex

	ID       string
	Code     string
	Language string
	Problem  json.RawMessage // selected problem as sent by the interviewer, nil when none
	Members  map[string]Participant // keyed by connection id
}

func newRoom(id string) *Room {
	return &Room{
		ID:       id,
		Code:     DefaultCode,
		Language: DefaultLanguage,
		Members:  map[string]Participant{},
	}
}

// Others returns every participant except the given connection.
// Caller must hold the room lock.
func (r *Room) Others(connID string) []Participant {
	out := make([]Participant, 0, len(r.Members))
	for id, p := range r.Members {
		if id != connID {
			out = append(out, p)
		}
	}
	return out
}

// All returns every participant. Caller must hold the room lock.
func (r *Room) All() []Participant {
	out := make([]Participant, 0, len(r.Members))
	for _, p := range r.Members {
		out = append(out, p)
	}
	return out
}
