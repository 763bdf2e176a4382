package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/WatchTogether/internal/app"
	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/dkeye/WatchTogether/internal/metrics"
	"github.com/rs/zerolog/log"
)

const DefaultMaxGuests = 99

// Orchestrator glues the connection registry and the session store together.
// Every mutation of a session, and every notification it causes, happens under
// that session's lock.
type Orchestrator struct {
	Registry *app.Registry
	Sessions core.SessionStore
	Policy   app.Policy

	MaxGuests    int
	IDLength     int
	NotifyOnReap bool
	Now          func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) maxGuests() int {
	if o.MaxGuests > 0 {
		return o.MaxGuests
	}
	return DefaultMaxGuests
}

// MaxParticipants is the per-session ceiling including the host.
func (o *Orchestrator) MaxParticipants() int { return o.maxGuests() + 1 }

// Connect registers a freshly accepted connection. It is unassigned until it creates or joins.
func (o *Orchestrator) Connect(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Register(id, conn, cancel)
	metrics.ConnectedClients.Inc()
}

// OnDisconnect runs leave semantics and forgets the connection.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	o.Leave(id)
	o.Registry.Deregister(id)
	metrics.ConnectedClients.Dec()
}

// send delivers one frame. Unknown recipients are dropped, full buffers go through the policy.
func (o *Orchestrator) send(sid domain.SessionID, to domain.ConnID, f core.Frame) bool {
	conn, ok := o.Registry.Conn(to)
	if !ok {
		log.Debug().Str("module", "orch").Str("session", string(sid)).Str("to", string(to)).Msg("recipient not connected, dropping")
		return false
	}
	if err := conn.TrySend(f); err != nil {
		o.onSendFailed(sid, to, err)
		return false
	}
	return true
}

// publish fans one event out to recipients.
func (o *Orchestrator) publish(sid domain.SessionID, recipients []domain.ConnID, eventType string, payload any) core.PublishResult {
	res := core.PublishResult{}
	if len(recipients) == 0 {
		return res
	}
	f, err := core.Encode(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("session", string(sid)).Msg("publish encode")
		return res
	}
	for _, to := range recipients {
		if o.send(sid, to, f) {
			res.SendTo++
			continue
		}
		res.Dropped = append(res.Dropped, to)
	}
	log.Debug().Str("module", "orch").Str("session", string(sid)).Str("event", eventType).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("publish result")
	return res
}

func (o *Orchestrator) onSendFailed(sid domain.SessionID, member domain.ConnID, err error) {
	logger := log.Warn().Err(err).Str("module", "orch").Str("session", string(sid)).Str("member", string(member))
	if !errors.Is(err, core.ErrBackpressure) || o.Policy == nil {
		logger.Msg("send failed")
		return
	}
	switch o.Policy.OnBackPressure(sid, member) {
	case app.KickMember:
		logger.Msg("send buffer full, kicking member")
		// Cancel only stops the pumps; disconnect semantics run later on the member's own read loop.
		o.Registry.Cancel(member)
	case app.DropFrame, app.NoAction:
		logger.Msg("send buffer full, frame dropped")
	}
}

// Stats is the aggregate liveness view.
type Stats struct {
	Sessions          int `json:"sessions"`
	TotalParticipants int `json:"totalParticipants"`
	Connections       int `json:"connections"`
	MaxParticipants   int `json:"maxParticipantsPerSession"`
}

func (o *Orchestrator) Stats() Stats {
	st := Stats{Connections: o.Registry.Count(), MaxParticipants: o.MaxParticipants()}
	for _, s := range o.Sessions.List() {
		st.Sessions++
		st.TotalParticipants += s.ParticipantCount()
	}
	return st
}

// ListSessions is the diagnostic view of the store.
func (o *Orchestrator) ListSessions() []core.SessionInfo {
	list := o.Sessions.List()
	out := make([]core.SessionInfo, 0, len(list))
	for _, s := range list {
		out = append(out, core.NewSessionInfo(s, o.MaxParticipants()))
	}
	return out
}
