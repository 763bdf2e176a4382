package signal

import (
	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type sessionCreatedPayload struct {
	SessionID        domain.SessionID   `json:"sessionId"`
	IsHost           bool               `json:"isHost"`
	ParticipantCount int                `json:"participantCount"`
	ICEServers       []webrtc.ICEServer `json:"iceServers"`
}

type sessionJoinedPayload struct {
	SessionID        domain.SessionID     `json:"sessionId"`
	IsHost           bool                 `json:"isHost"`
	VideoReference   *string              `json:"videoReference"`
	PlaybackState    domain.PlaybackState `json:"playbackState"`
	ParticipantCount int                  `json:"participantCount"`
	ICEServers       []webrtc.ICEServer   `json:"iceServers"`
}

func (ctl *SignalWSController) handleCreate(id domain.ConnID, conn *WsSignalConn, in inbound) {
	s, err := ctl.Orch.CreateSession(id)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("create session")
		ctl.sendError(conn, core.EventSessionError, in.Ack, err)
		return
	}
	ctl.reply(conn, core.EventSessionCreated, sessionCreatedPayload{
		SessionID:        s.ID,
		IsHost:           true,
		ParticipantCount: s.ParticipantCount(),
		ICEServers:       ctl.ice.ICEServers,
	}, in.Ack)
}

func (ctl *SignalWSController) handleJoin(id domain.ConnID, conn *WsSignalConn, in inbound) {
	if !ctl.joinLimiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join rate limited")
		ctl.sendError(conn, core.EventError, in.Ack, domain.ErrRateLimited)
		return
	}
	sid, err := parseSessionID(in.Payload)
	if err != nil {
		ctl.sendError(conn, core.EventSessionError, in.Ack, err)
		return
	}

	res, err := ctl.Orch.JoinSession(id, sid)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("join refused")
		ctl.sendError(conn, core.EventSessionError, in.Ack, err)
		return
	}

	p := sessionJoinedPayload{
		SessionID:        res.SessionID,
		PlaybackState:    res.Playback,
		ParticipantCount: res.ParticipantCount,
		ICEServers:       ctl.ice.ICEServers,
	}
	if res.VideoReference != "" {
		ref := res.VideoReference
		p.VideoReference = &ref
	}
	ctl.reply(conn, core.EventSessionJoined, p, in.Ack)
}

func (ctl *SignalWSController) handleLeave(id domain.ConnID, in inbound) {
	ctl.Orch.Leave(id)
}
