package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DiAndyW/TrueTalent/internal/room"
	"github.com/DiAndyW/TrueTalent/pkg/metrics"
)

// Hub accepts websocket connections, registers them, and pumps their
// inbound events into the room manager. One goroutine per connection
// reads; a second one writes. Losing the socket triggers the manager's
// disconnect hook exactly once.
type Hub struct {
	log     *slog.Logger
	reg     *Registry
	mgr     *room.Manager
	origins []string
}

func NewHub(log *slog.Logger, reg *Registry, mgr *room.Manager, origins []string) *Hub {
	return &Hub{log: log, reg: reg, mgr: mgr, origins: origins}
}

// ServeWS handles one client session on /ws
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := Accept(w, r, h.origins)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(sock)
	h.reg.Add(c)
	h.log.Info("ws.connect", "connId", c.ID)

	ctx := r.Context()
	go c.WriteLoop(ctx)

	for {
		raw, ok := c.Read(ctx)
		if !ok {
			break
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.Send(room.EventError, room.ErrorPayload{Message: "malformed event envelope"})
			continue
		}
		h.dispatch(c, env)
	}

	h.reg.Remove(c.ID)
	h.mgr.Disconnect(c.ID)
	_ = c.Close()
	h.log.Info("ws.disconnect", "connId", c.ID)
}

// dispatch routes one validated inbound event to the manager. Bad
// payloads are answered with an error event and otherwise ignored.
func (h *Hub) dispatch(c *Conn, env Envelope) {
	metrics.WSEvents.WithLabelValues(env.Event).Inc()

	switch env.Event {
	case evCreateRoom:
		p, err := decode[CreateRoomPayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.CreateRoom(c.ID, p.Username, room.Role(p.Role))

	case evJoinRoom:
		p, err := decode[JoinRoomPayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.JoinRoom(c.ID, p.RoomID, p.Username, room.Role(p.Role))

	case evCodeUpdate:
		p, err := decode[CodeUpdatePayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.UpdateCode(c.ID, p.RoomID, p.Code)

	case evLanguageChange:
		p, err := decode[LanguageChangePayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.ChangeLanguage(c.ID, p.RoomID, p.Language)

	case evQuestionSelected:
		p, err := decode[QuestionSelectedPayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.SelectProblem(c.ID, p.RoomID, p.Problem)

	case evChatMessage:
		p, err := decode[ChatMessagePayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.Chat(c.ID, p.RoomID, p.Message)

	case evExecuteCode:
		p, err := decode[ExecuteCodePayload](env.Data)
		if err != nil {
			h.reject(c, env.Event, err)
			return
		}
		h.mgr.ExecuteCode(c.ID, p.RoomID, p.Code, p.Language)

	default:
		c.Send(room.EventError, room.ErrorPayload{Message: "unknown event: " + env.Event})
	}
}

func (h *Hub) reject(c *Conn, event string, err error) {
	h.log.Debug("ws.reject", "connId", c.ID, "event", event, "err", err)
	c.Send(room.EventError, room.ErrorPayload{Message: err.Error()})
}
