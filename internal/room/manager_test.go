package room

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	ConnID string
	Event  string
	Data   any
}

type fakeSender struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeSender) Send(connID, event string, data any) {
	f.mu.Lock()
	f.events = append(f.events, sentEvent{ConnID: connID, Event: event, Data: data})
	f.mu.Unlock()
}

// forConn returns, in send order, every event addressed to connID
func (f *fakeSender) forConn(connID string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.ConnID == connID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSender) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

type fakeRunner struct {
	out string
	err error
}

func (f *fakeRunner) Run(context.Context, string, string) (string, error) {
	return f.out, f.err
}

func newTestManager(r Runner) (*Manager, *Store, *fakeSender) {
	if r == nil {
		r = &fakeRunner{out: "ok"}
	}
	sender := &fakeSender{}
	store := NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(log, store, sender, r), store, sender
}

// createRoom drives CreateRoom and returns the assigned room id
func createRoom(t *testing.T, m *Manager, sender *fakeSender, connID, username string, role Role) string {
	t.Helper()
	m.CreateRoom(connID, username, role)
	evs := sender.forConn(connID)
	require.NotEmpty(t, evs, "no reply to create-room")
	last := evs[len(evs)-1]
	require.Equal(t, EventRoomJoined, last.Event)
	joined, ok := last.Data.(RoomJoined)
	require.True(t, ok, "room-joined payload has wrong type %T", last.Data)
	return joined.RoomID
}

func TestCreateRoom(t *testing.T) {
	m, store, sender := newTestManager(nil)

	m.CreateRoom("conn-a", "Alice", RoleInterviewer)

	evs := sender.forConn("conn-a")
	require.Len(t, evs, 1)
	require.Equal(t, EventRoomJoined, evs[0].Event)

	joined := evs[0].Data.(RoomJoined)
	assert.NotEmpty(t, joined.RoomID)
	assert.Equal(t, DefaultCode, joined.InitialCode)
	assert.Equal(t, DefaultLanguage, joined.Language)
	assert.Equal(t, RoleInterviewer, joined.Role)
	assert.Nil(t, joined.Problem)

	r, ok := store.Get(joined.RoomID)
	require.True(t, ok)
	assert.Len(t, r.Members, 1)
}

func TestJoinRoomNotFound(t *testing.T) {
	m, store, sender := newTestManager(nil)

	m.JoinRoom("conn-b", "nope", "Bob", RoleInterviewee)

	evs := sender.forConn("conn-b")
	require.Len(t, evs, 1)
	require.Equal(t, EventError, evs[0].Event)
	assert.Equal(t, "Room not found", evs[0].Data.(ErrorPayload).Message)
	assert.Zero(t, store.Len(), "failed join must not mutate the store")
}

func TestJoinRoomOrderingAndNotifications(t *testing.T) {
	m, _, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)

	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	// Bob: own confirmation first, then the membership snapshot
	bob := sender.forConn("conn-b")
	require.Len(t, bob, 2)
	require.Equal(t, EventRoomJoined, bob[0].Event)
	joined := bob[0].Data.(RoomJoined)
	assert.Equal(t, RoleInterviewee, joined.Role)
	assert.Equal(t, DefaultCode, joined.InitialCode)
	require.Equal(t, EventUserJoined, bob[1].Event)
	assert.Equal(t, "Alice", bob[1].Data.(UserEvent).Username)

	// Alice hears about Bob, and never about herself
	alice := sender.forConn("conn-a")
	require.Len(t, alice, 2) // room-joined + Bob's arrival
	require.Equal(t, EventUserJoined, alice[1].Event)
	ev := alice[1].Data.(UserEvent)
	assert.Equal(t, "Bob", ev.Username)
	assert.Equal(t, "conn-b", ev.UserID)
	assert.Equal(t, RoleInterviewee, ev.Role)
}

func TestUpdateCodeFanout(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)
	m.JoinRoom("conn-c", roomID, "Carol", RoleInterviewee)

	before := len(sender.forConn("conn-a"))
	m.UpdateCode("conn-a", roomID, "print('x')")

	// B and C each get exactly one code-update, A gets none
	for _, conn := range []string{"conn-b", "conn-c"} {
		var updates []sentEvent
		for _, e := range sender.forConn(conn) {
			if e.Event == EventCodeUpdate {
				updates = append(updates, e)
			}
		}
		require.Len(t, updates, 1, "conn %s", conn)
		assert.Equal(t, "print('x')", updates[0].Data.(CodeUpdate).Code)
	}
	assert.Len(t, sender.forConn("conn-a"), before, "sender must not be echoed its own edit")

	r, _ := store.Get(roomID)
	assert.Equal(t, "print('x')", r.Code)
}

func TestUpdateCodeIgnoresStaleClients(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)

	// Not a member of the room
	m.UpdateCode("conn-z", roomID, "evil")
	// Room that never existed
	m.UpdateCode("conn-a", "gone", "evil")

	r, _ := store.Get(roomID)
	assert.Equal(t, DefaultCode, r.Code)
	assert.Zero(t, sender.count(EventCodeUpdate))
}

func TestChangeLanguage(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.ChangeLanguage("conn-a", roomID, "python")
	m.ChangeLanguage("conn-a", roomID, "html")

	var seen []string
	for _, e := range sender.forConn("conn-b") {
		if e.Event == EventLanguageChange {
			seen = append(seen, e.Data.(LanguageChange).Language)
		}
	}
	require.Equal(t, []string{"python", "html"}, seen)

	r, _ := store.Get(roomID)
	assert.Equal(t, "html", r.Language)
}

func TestChangeLanguageRejectsUnknown(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.ChangeLanguage("conn-a", roomID, "brainfuck")

	r, _ := store.Get(roomID)
	assert.Equal(t, DefaultLanguage, r.Language, "invalid language must not be stored")
	assert.Zero(t, sender.count(EventLanguageChange), "invalid language must not be broadcast")
}

func TestSelectProblem(t *testing.T) {
	m, _, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	problem := json.RawMessage(`{"title":"Two Sum"}`)
	m.SelectProblem("conn-a", roomID, problem)

	var got []sentEvent
	for _, e := range sender.forConn("conn-b") {
		if e.Event == EventQuestionSelected {
			got = append(got, e)
		}
	}
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"title":"Two Sum"}`, string(got[0].Data.(QuestionSelected).Problem))

	// A late joiner receives the current selection with the room state
	m.JoinRoom("conn-c", roomID, "Carol", RoleInterviewee)
	carol := sender.forConn("conn-c")
	require.Equal(t, EventRoomJoined, carol[0].Event)
	assert.JSONEq(t, `{"title":"Two Sum"}`, string(carol[0].Data.(RoomJoined).Problem))
}

func TestSelectProblemIntervieweeDenied(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.SelectProblem("conn-b", roomID, json.RawMessage(`{"title":"Sneaky"}`))

	r, _ := store.Get(roomID)
	assert.Nil(t, r.Problem)
	assert.Zero(t, sender.count(EventQuestionSelected))
}

func TestSelectProblemClear(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.SelectProblem("conn-a", roomID, json.RawMessage(`{"title":"Two Sum"}`))
	m.SelectProblem("conn-a", roomID, json.RawMessage(`null`))

	r, _ := store.Get(roomID)
	assert.Nil(t, r.Problem)
	assert.Equal(t, 2, sender.count(EventQuestionSelected), "clearing must be broadcast too")
}

func TestChat(t *testing.T) {
	m, _, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.Chat("conn-a", roomID, "   ")
	assert.Zero(t, sender.count(EventChatMessage), "blank message must be dropped")

	m.Chat("conn-a", roomID, "hello Bob")
	bob := sender.forConn("conn-b")
	last := bob[len(bob)-1]
	require.Equal(t, EventChatMessage, last.Event)
	msg := last.Data.(ChatMessage)
	assert.Equal(t, "Alice", msg.Username)
	assert.Equal(t, "hello Bob", msg.Message)

	// No echo back to the sender
	for _, e := range sender.forConn("conn-a") {
		assert.NotEqual(t, EventChatMessage, e.Event)
	}
}

func TestExecuteCode(t *testing.T) {
	m, _, sender := newTestManager(&fakeRunner{out: "42\n"})
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.ExecuteCode("conn-a", roomID, "print(42)", "python")

	// Started goes to everyone, sender included, before any result
	assert.Equal(t, 2, sender.count(EventExecutionStarted))

	require.Eventually(t, func() bool {
		return sender.count(EventExecutionResult) == 2
	}, 2*time.Second, 10*time.Millisecond, "result never reached the room")

	for _, conn := range []string{"conn-a", "conn-b"} {
		evs := sender.forConn(conn)
		var started *ExecutionStarted
		for _, e := range evs {
			switch e.Event {
			case EventExecutionStarted:
				s := e.Data.(ExecutionStarted)
				started = &s
			case EventExecutionResult:
				res := e.Data.(ExecutionResult)
				require.NotNil(t, started, "result before started on %s", conn)
				assert.Equal(t, started.RequestID, res.RequestID)
				require.NotNil(t, res.Result)
				assert.Equal(t, "42\n", *res.Result)
				assert.Empty(t, res.Error, "result carries result or error, never both")
			}
		}
	}
}

func TestExecuteCodeFailure(t *testing.T) {
	m, _, sender := newTestManager(&fakeRunner{err: errors.New("runner exploded")})
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)

	m.ExecuteCode("conn-a", roomID, "while true: pass", "python")

	require.Eventually(t, func() bool {
		return sender.count(EventExecutionResult) == 1
	}, 2*time.Second, 10*time.Millisecond)

	evs := sender.forConn("conn-a")
	res := evs[len(evs)-1].Data.(ExecutionResult)
	assert.Nil(t, res.Result)
	assert.Equal(t, "runner exploded", res.Error)
}

func TestDisconnectReapsRoom(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.Disconnect("conn-b")

	alice := sender.forConn("conn-a")
	last := alice[len(alice)-1]
	require.Equal(t, EventUserLeft, last.Event)
	left := last.Data.(UserEvent)
	assert.Equal(t, "Bob", left.Username)
	assert.Equal(t, "conn-b", left.UserID)
	assert.Equal(t, RoleInterviewee, left.Role)

	_, ok := store.Get(roomID)
	assert.True(t, ok, "room with a remaining member must survive")

	m.Disconnect("conn-a")
	_, ok = store.Get(roomID)
	assert.False(t, ok, "empty room must be deleted")
}

func TestDisconnectIdempotent(t *testing.T) {
	m, store, sender := newTestManager(nil)
	roomID := createRoom(t, m, sender, "conn-a", "Alice", RoleInterviewer)
	m.JoinRoom("conn-b", roomID, "Bob", RoleInterviewee)

	m.Disconnect("conn-b")
	before := sender.count(EventUserLeft)
	m.Disconnect("conn-b") // second loss notification for the same conn
	assert.Equal(t, before, sender.count(EventUserLeft), "double disconnect must not double-broadcast")

	// Disconnecting a connection that never joined is a no-op
	m.Disconnect("conn-never")
	assert.Equal(t, 1, store.Len())
}
