package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DiAndyW/TrueTalent/pkg/metrics"
)

// Sender delivers one event to one connection. The transport guarantees
// FIFO delivery per connection; delivery itself is best-effort.
type Sender interface {
	Send(connID, event string, data any)
}

// Runner executes code out of process and returns its output
type Runner interface {
	Run(ctx context.Context, language, code string) (string, error)
}

const execTimeout = 60 * time.Second

// Manager owns room lifecycle and every state mutation on a room:
// create/join, code edits, language changes, problem selection, chat
// relay, code execution fan-out, and disconnect cleanup.
//
// Operations on one room are serialized by that room's lock; operations
// on different rooms run in parallel.
type Manager struct {
	log    *slog.Logger
	rooms  *Store
	send   Sender
	runner Runner
}

func NewManager(log *slog.Logger, rooms *Store, send Sender, runner Runner) *Manager {
	return &Manager{log: log, rooms: rooms, send: send, runner: runner}
}

// CreateRoom opens a fresh room with the requester as sole participant
// and replies with the initial session state. Nobody else to notify.
func (m *Manager) CreateRoom(connID, username string, role Role) {
	r := m.rooms.Create()

	r.Lock()
	r.Members[connID] = Participant{ConnID: connID, Username: username, Role: role}
	m.send.Send(connID, EventRoomJoined, RoomJoined{
		RoomID:      r.ID,
		InitialCode: r.Code,
		Language:    r.Language,
		Role:        role,
	})
	r.Unlock()

	metrics.RoomsActive.Inc()
	metrics.ParticipantsActive.Inc()
	m.log.Info("room.created", "roomId", r.ID, "username", username, "role", role)
}

// JoinRoom adds the requester to an existing room. The requester gets
// its confirmation and a full membership snapshot before anyone else
// hears about the newcomer, so its view is self-consistent.
func (m *Manager) JoinRoom(connID, roomID, username string, role Role) {
	r, ok := m.rooms.Get(roomID)
	if !ok {
		m.send.Send(connID, EventError, ErrorPayload{Message: "Room not found"})
		m.log.Debug("room.join.miss", "roomId", roomID, "username", username)
		return
	}

	r.Lock()
	m.send.Send(connID, EventRoomJoined, RoomJoined{
		RoomID:      r.ID,
		InitialCode: r.Code,
		Language:    r.Language,
		Role:        role,
		Problem:     r.Problem,
	})
	for _, p := range r.Others(connID) {
		m.send.Send(connID, EventUserJoined, UserEvent{Username: p.Username, UserID: p.ConnID, Role: p.Role})
	}
	r.Members[connID] = Participant{ConnID: connID, Username: username, Role: role}
	m.broadcastLocked(r, connID, EventUserJoined, UserEvent{Username: username, UserID: connID, Role: role})
	r.Unlock()

	metrics.ParticipantsActive.Inc()
	m.log.Info("room.joined", "roomId", roomID, "username", username, "role", role)
}

// UpdateCode overwrites the shared buffer, last writer wins, and echoes
// the new code to everyone but the author. Stale clients pointing at a
// reaped room are silently ignored.
func (m *Manager) UpdateCode(connID, roomID, code string) {
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}

	r.Lock()
	defer r.Unlock()
	if _, member := r.Members[connID]; !member {
		return
	}
	r.Code = code
	m.broadcastLocked(r, connID, EventCodeUpdate, CodeUpdate{Code: code})
}

// ChangeLanguage switches the room's language tag. Values outside the
// fixed set are dropped rather than stored or broadcast.
func (m *Manager) ChangeLanguage(connID, roomID, language string) {
	if !ValidLanguage(language) {
		m.log.Debug("room.language.invalid", "roomId", roomID, "language", language)
		return
	}
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}

	r.Lock()
	defer r.Unlock()
	if _, member := r.Members[connID]; !member {
		return
	}
	r.Language = language
	m.broadcastLocked(r, connID, EventLanguageChange, LanguageChange{Language: language})
}

// SelectProblem stores the interviewer's pick and relays it. A null
// problem clears the selection. Non-interviewers are ignored.
func (m *Manager) SelectProblem(connID, roomID string, problem json.RawMessage) {
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}
	if string(problem) == "null" {
		problem = nil
	}

	r.Lock()
	defer r.Unlock()
	p, member := r.Members[connID]
	if !member {
		return
	}
	if p.Role != RoleInterviewer {
		m.log.Debug("room.problem.denied", "roomId", roomID, "role", p.Role)
		return
	}
	r.Problem = problem
	m.broadcastLocked(r, connID, EventQuestionSelected, QuestionSelected{Problem: problem})
}

// Chat relays a message to everyone else in the room. Nothing is stored;
// blank messages are dropped. The sender's registered name is used, not
// whatever the payload claims.
func (m *Manager) Chat(connID, roomID, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}

	r.Lock()
	defer r.Unlock()
	p, member := r.Members[connID]
	if !member {
		return
	}
	m.broadcastLocked(r, connID, EventChatMessage, ChatMessage{Username: p.Username, Message: message})
}

// ExecuteCode announces the run to the whole room, then hands the code
// to the runner in the background. The result goes to every member,
// requester included, tagged with the request id from the announcement.
func (m *Manager) ExecuteCode(connID, roomID, code, language string) {
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}

	requestID := uuid.NewString()

	r.Lock()
	if _, member := r.Members[connID]; !member {
		r.Unlock()
		return
	}
	m.broadcastLocked(r, "", EventExecutionStarted, ExecutionStarted{RequestID: requestID})
	r.Unlock()

	m.log.Info("exec.started", "roomId", roomID, "requestId", requestID, "language", language)
	go m.runExecution(roomID, requestID, language, code)
}

func (m *Manager) runExecution(roomID, requestID, language, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, language, code)

	res := ExecutionResult{RequestID: requestID}
	if err != nil {
		res.Error = err.Error()
		metrics.Executions.WithLabelValues("error").Inc()
		m.log.Warn("exec.failed", "roomId", roomID, "requestId", requestID, "err", err)
	} else {
		res.Result = &out
		metrics.Executions.WithLabelValues("success").Inc()
		m.log.Info("exec.result", "roomId", roomID, "requestId", requestID, "bytes", len(out))
	}

	// The room may have been reaped while the code ran
	r, ok := m.rooms.Get(roomID)
	if !ok {
		return
	}
	r.Lock()
	m.broadcastLocked(r, "", EventExecutionResult, res)
	r.Unlock()
}

// Disconnect is the reaper hook the transport calls on connection loss.
// It removes the participant from its room, tells the survivors, and
// deletes the room once empty. Safe to call twice for the same id.
func (m *Manager) Disconnect(connID string) {
	r, ok := m.rooms.FindByConn(connID)
	if !ok {
		return
	}

	r.Lock()
	p, member := r.Members[connID]
	if !member {
		r.Unlock()
		return
	}
	delete(r.Members, connID)
	m.broadcastLocked(r, "", EventUserLeft, UserEvent{Username: p.Username, UserID: connID, Role: p.Role})
	empty := len(r.Members) == 0
	r.Unlock()

	metrics.ParticipantsActive.Dec()
	m.log.Info("room.left", "roomId", r.ID, "username", p.Username)

	if empty && m.rooms.DeleteIfEmpty(r.ID) {
		metrics.RoomsActive.Dec()
		m.log.Info("room.deleted", "roomId", r.ID)
	}
}

// broadcastLocked fans data out to every member except exclude ("" for
// nobody). Caller must hold the room lock so member changes and sends
// cannot interleave.
func (m *Manager) broadcastLocked(r *Room, exclude, event string, data any) {
	for id := range r.Members {
		if id == exclude {
			continue
		}
		m.send.Send(id, event, data)
	}
}
