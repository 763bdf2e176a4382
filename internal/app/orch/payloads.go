package orch

import (
	"encoding/json"

	"github.com/dkeye/WatchTogether/internal/domain"
)

// JoinResult is what a joining client needs to render the existing state.
type JoinResult struct {
	SessionID        domain.SessionID
	VideoReference   string
	Playback         domain.PlaybackState
	ParticipantCount int
}

type ParticipantPayload struct {
	ParticipantID    domain.ConnID `json:"participantId"`
	ParticipantCount int           `json:"participantCount"`
}

type SessionPayload struct {
	SessionID domain.SessionID `json:"sessionId"`
}

// SignalPayload carries an opaque handshake blob and its origin.
type SignalPayload struct {
	From domain.ConnID   `json:"from"`
	Data json.RawMessage `json:"data"`
}

type VideoPayload struct {
	VideoReference string `json:"videoReference"`
}

type ChatPayload struct {
	Text   string        `json:"text"`
	Sender string        `json:"sender"`
	From   domain.ConnID `json:"from"`
}
