package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/dkeye/WatchTogether/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ReportState overwrites the session's playback state (last write wins) and
// rebroadcasts it. Reports from connections outside a live session are discarded.
func (o *Orchestrator) ReportState(from domain.ConnID, state domain.PlaybackState) bool {
	b, ok := o.Registry.Lookup(from)
	if !ok {
		log.Warn().Str("module", "orch").Str("conn", string(from)).Msg("state report from connection without session, discarding")
		return false
	}
	err := o.Sessions.Update(b.Session, func(s *domain.Session) (bool, error) {
		if !s.IsHost(from) && !s.HasGuest(from) {
			return false, domain.ErrSessionNotFound
		}
		s.Playback = state
		o.publish(s.ID, s.Others(from), core.EventVideoState, s.Playback)
		return false, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(from)).Str("session", string(b.Session)).Msg("state report for missing session, discarding")
		return false
	}
	metrics.StateUpdates.Inc()
	log.Debug().Str("module", "orch").Str("conn", string(from)).Str("session", string(b.Session)).
		Float64("position", state.PositionSeconds).Bool("playing", state.IsPlaying).Msg("video state updated")
	return true
}

// SelectVideo lets the host switch the shared video. Playback restarts from zero, paused.
func (o *Orchestrator) SelectVideo(from domain.ConnID, ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: empty video reference", domain.ErrMalformedRequest)
	}
	b, ok := o.Registry.Lookup(from)
	if !ok {
		log.Warn().Str("module", "orch").Str("conn", string(from)).Msg("video selection from connection without session, discarding")
		return nil
	}
	err := o.Sessions.Update(b.Session, func(s *domain.Session) (bool, error) {
		if !s.IsHost(from) {
			return false, domain.ErrUnauthorized
		}
		s.VideoReference = ref
		s.Playback = domain.PlaybackState{VideoReference: ref}
		others := s.Others(from)
		o.publish(s.ID, others, core.EventVideoURL, VideoPayload{VideoReference: ref})
		o.publish(s.ID, others, core.EventVideoState, s.Playback)
		return false, nil
	})
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		log.Warn().Str("module", "orch").Str("conn", string(from)).Str("session", string(b.Session)).Msg("video selection for missing session, discarding")
		return nil
	case err != nil:
		log.Info().Err(err).Str("module", "orch").Str("conn", string(from)).Msg("video selection rejected")
		return err
	}
	log.Info().Str("module", "orch").Str("session", string(b.Session)).Str("video", ref).Msg("video shared")
	return nil
}

// Chat fans text out to every other member. Nothing is stored.
func (o *Orchestrator) Chat(from domain.ConnID, text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty message", domain.ErrMalformedRequest)
	}
	b, ok := o.Registry.Lookup(from)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(from)).Msg("chat from connection without session, dropping")
		return nil
	}
	err := o.Sessions.View(b.Session, func(s *domain.Session) {
		o.publish(s.ID, s.Others(from), core.EventChat, ChatPayload{Text: text, Sender: "peer", From: from})
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(from)).Msg("chat for missing session, dropping")
		return nil
	}
	metrics.ChatMessages.Inc()
	return nil
}
