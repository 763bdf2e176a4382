package app

import (
	"context"
	"sync"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn    core.SignalConnection
	Cancel  context.CancelFunc
	Binding domain.Binding
}

// Registry tracks live connections and the session/role annotated onto each.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) Register(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{
		Conn:    conn,
		Cancel:  cancel,
		Binding: domain.Binding{Role: domain.RoleUnassigned},
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("registered connection")
}

func (r *Registry) Deregister(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("deregistered connection")
}

// Bind annotates a registered connection with its session and role.
func (r *Registry) Bind(id domain.ConnID, sid domain.SessionID, role domain.Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Binding = domain.Binding{Session: sid, Role: role}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("session", string(sid)).Str("role", string(role)).Msg("bound connection")
	return true
}

// Unbind clears the binding only while it still points at sid, so a stale
// cleanup never wipes a newer membership.
func (r *Registry) Unbind(id domain.ConnID, sid domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.Binding.Session != sid {
		return false
	}
	e.Binding = domain.Binding{Role: domain.RoleUnassigned}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("session", string(sid)).Msg("unbound connection")
	return true
}

// Lookup returns the binding of a connection that currently belongs to a session.
func (r *Registry) Lookup(id domain.ConnID) (domain.Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || !e.Binding.Bound() {
		return domain.Binding{Role: domain.RoleUnassigned}, false
	}
	return e.Binding, true
}

func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Cancel stops a connection's pumps; its read loop then runs disconnect semantics.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
