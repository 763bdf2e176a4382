package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/dkeye/WatchTogether/internal/metrics"
	"github.com/rs/zerolog/log"
)

const maxIDAttempts = 8

// CreateSession always makes a new session hosted by conn. A connection that is
// already in a session leaves it first.
func (o *Orchestrator) CreateSession(conn domain.ConnID) (domain.Session, error) {
	if b, ok := o.Registry.Lookup(conn); ok {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("from_session", string(b.Session)).Msg("leaving previous session before create")
		o.Leave(conn)
	}
	snap, err := o.insertSession(conn)
	if err != nil {
		return domain.Session{}, err
	}
	o.Registry.Bind(conn, snap.ID, domain.RoleHost)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("session", string(snap.ID)).Msg("session created")
	return snap, nil
}

// CreateDetachedSession stores a session whose host is not a live connection.
// Diagnostics only.
func (o *Orchestrator) CreateDetachedSession(host domain.ConnID) (domain.Session, error) {
	return o.insertSession(host)
}

func (o *Orchestrator) insertSession(host domain.ConnID) (domain.Session, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := domain.NewSessionID(o.IDLength)
		if err != nil {
			return domain.Session{}, fmt.Errorf("create session: %w", err)
		}
		sess := domain.NewSession(id, host, o.now())
		snap := sess.Snapshot()
		err = o.Sessions.Create(sess)
		if errors.Is(err, domain.ErrSessionExists) {
			log.Warn().Str("module", "orch").Str("session", string(id)).Msg("session id collision, retrying")
			continue
		}
		if err != nil {
			return domain.Session{}, fmt.Errorf("create session: %w", err)
		}
		metrics.RecordSessionCreated()
		return snap, nil
	}
	return domain.Session{}, fmt.Errorf("create session: no free id after %d attempts", maxIDAttempts)
}

// JoinSession admits conn as a guest and tells the members already present.
// A connection switching sessions leaves its previous one only once admitted,
// so a refused join changes nothing.
func (o *Orchestrator) JoinSession(conn domain.ConnID, sid domain.SessionID) (JoinResult, error) {
	prev, bound := o.Registry.Lookup(conn)
	if bound && prev.Session == sid {
		res, err := o.currentState(sid)
		if errors.Is(err, domain.ErrSessionNotFound) {
			o.Registry.Unbind(conn, sid)
		}
		return res, err
	}

	var res JoinResult
	err := o.Sessions.Update(sid, func(s *domain.Session) (bool, error) {
		if len(s.Guests) >= o.maxGuests() {
			return false, domain.ErrSessionFull
		}
		s.AddGuest(conn)
		o.Registry.Bind(conn, sid, domain.RoleGuest)
		res = joinResult(s)
		o.publish(sid, s.Others(conn), core.EventGuestJoined, ParticipantPayload{
			ParticipantID:    conn,
			ParticipantCount: s.ParticipantCount(),
		})
		return false, nil
	})
	if err != nil {
		metrics.JoinRejections.WithLabelValues(domain.CodeOf(err)).Inc()
		log.Info().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("session", string(sid)).Msg("join rejected")
		return JoinResult{}, fmt.Errorf("join %s: %w", sid, err)
	}
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("session", string(sid)).
		Int("participants", res.ParticipantCount).Int("max", o.MaxParticipants()).Msg("guest joined")
	if bound {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("from_session", string(prev.Session)).Msg("leaving previous session after join")
		o.leaveSession(conn, prev.Session)
	}
	return res, nil
}

func (o *Orchestrator) currentState(sid domain.SessionID) (JoinResult, error) {
	s, err := o.Sessions.Get(sid)
	if err != nil {
		return JoinResult{}, fmt.Errorf("join %s: %w", sid, err)
	}
	return joinResult(&s), nil
}

func joinResult(s *domain.Session) JoinResult {
	return JoinResult{
		SessionID:        s.ID,
		VideoReference:   s.VideoReference,
		Playback:         s.Playback,
		ParticipantCount: s.ParticipantCount(),
	}
}

// Leave removes conn from its session. A departing host deletes the session and
// every guest receives host-left. A no-op for connections outside any session.
func (o *Orchestrator) Leave(conn domain.ConnID) {
	b, ok := o.Registry.Lookup(conn)
	if !ok {
		return
	}
	o.leaveSession(conn, b.Session)
}

// leaveSession drops conn from sid. Bindings are cleared only while they still
// point at sid, so a connection that already moved on keeps its new membership.
func (o *Orchestrator) leaveSession(conn domain.ConnID, sid domain.SessionID) {
	err := o.Sessions.Update(sid, func(s *domain.Session) (bool, error) {
		if s.IsHost(conn) {
			guests := s.Guests
			res := o.publish(sid, guests, core.EventHostLeft, SessionPayload{SessionID: sid})
			for _, g := range guests {
				o.Registry.Unbind(g, sid)
			}
			o.Registry.Unbind(conn, sid)
			metrics.RecordSessionDeleted(metrics.ReasonHostLeft)
			log.Info().Str("module", "orch").Str("conn", string(conn)).Str("session", string(sid)).Int("notified", res.SendTo).Msg("host left, session deleted")
			return true, nil
		}
		removed := s.RemoveGuest(conn)
		o.Registry.Unbind(conn, sid)
		if removed {
			o.publish(sid, s.Others(conn), core.EventGuestLeft, ParticipantPayload{
				ParticipantID:    conn,
				ParticipantCount: s.ParticipantCount(),
			})
			log.Info().Str("module", "orch").Str("conn", string(conn)).Str("session", string(sid)).
				Int("participants", s.ParticipantCount()).Int("max", o.MaxParticipants()).Msg("guest left")
		}
		return false, nil
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Reaped underneath us; only the stale binding is left to clear.
		o.Registry.Unbind(conn, sid)
	}
}

// Expire is the reaper hook. It runs under the expired session's lock.
func (o *Orchestrator) Expire(s *domain.Session) {
	if !o.NotifyOnReap {
		return
	}
	members := s.Others("")
	o.publish(s.ID, members, core.EventSessionExpired, SessionPayload{SessionID: s.ID})
	for _, m := range members {
		o.Registry.Unbind(m, s.ID)
	}
}
