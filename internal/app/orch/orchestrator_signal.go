package orch

import (
	"encoding/json"

	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/dkeye/WatchTogether/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Relay forwards one opaque handshake message to the sender's counterpart.
// Best effort: with no counterpart bound the message is dropped, never queued.
func (o *Orchestrator) Relay(from domain.ConnID, kind string, to domain.ConnID, data json.RawMessage) bool {
	b, ok := o.Registry.Lookup(from)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(from)).Str("kind", kind).Msg("relay: sender not in a session, dropping")
		metrics.RecordSignal(kind, false)
		return false
	}

	delivered := false
	err := o.Sessions.View(b.Session, func(s *domain.Session) {
		target, ok := relayTarget(s, from, to)
		if !ok {
			log.Debug().Str("module", "orch").Str("conn", string(from)).Str("session", string(s.ID)).Str("kind", kind).Msg("relay: no counterpart, dropping")
			return
		}
		res := o.publish(s.ID, []domain.ConnID{target}, kind, SignalPayload{From: from, Data: data})
		delivered = res.SendTo == 1
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(from)).Str("kind", kind).Msg("relay: session gone, dropping")
	}
	metrics.RecordSignal(kind, delivered)
	return delivered
}

// relayTarget picks the recipient by the sender's role. The host addresses a
// guest explicitly or falls back to the most recently joined one; guests always
// reach the host.
func relayTarget(s *domain.Session, from, to domain.ConnID) (domain.ConnID, bool) {
	switch {
	case s.IsHost(from):
		if to != "" {
			return to, s.HasGuest(to)
		}
		return s.LastGuest()
	case s.HasGuest(from):
		return s.Host, s.Host != ""
	default:
		return "", false
	}
}
