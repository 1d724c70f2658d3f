package ws

import "sync"

// Registry maps connection ids to live connections. The room manager
// addresses broadcasts through it without ever owning a connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: map[string]*Conn{}}
}

func (g *Registry) Add(c *Conn) {
	g.mu.Lock()
	g.conns[c.ID] = c
	g.mu.Unlock()
}

func (g *Registry) Remove(id string) {
	g.mu.Lock()
	delete(g.conns, id)
	g.mu.Unlock()
}

func (g *Registry) Get(id string) (*Conn, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[id]
	return c, ok
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// Send satisfies the manager's Sender: events for connections that
// already went away are dropped silently.
func (g *Registry) Send(connID, event string, data any) {
	if c, ok := g.Get(connID); ok {
		c.Send(event, data)
	}
}
