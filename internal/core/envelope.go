package core

import (
	"encoding/json"
	"fmt"
)

// Outbound event names.
const (
	EventAck            = "ack"
	EventSessionCreated = "session-created"
	EventSessionJoined  = "session-joined"
	EventSessionError   = "session-error"
	EventError          = "error"
	EventGuestJoined    = "guest-joined"
	EventGuestLeft      = "guest-left"
	EventHostLeft       = "host-left"
	EventSessionExpired = "session-expired"
	EventOffer          = "webrtc-offer"
	EventAnswer         = "webrtc-answer"
	EventCandidate      = "ice-candidate"
	EventVideoURL       = "video-url-update"
	EventVideoState     = "video-state-update"
	EventChat           = "chat-message"
	EventPong           = "pong"
)

// Envelope is the JSON shape of every frame on the wire.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Ack     *int64 `json:"ack,omitempty"`
}

// Encode renders one event into a frame.
func Encode(eventType string, payload any) (Frame, error) {
	return EncodeAck(eventType, payload, nil)
}

func EncodeAck(eventType string, payload any, ack *int64) (Frame, error) {
	b, err := json.Marshal(Envelope{Type: eventType, Payload: payload, Ack: ack})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", eventType, err)
	}
	return b, nil
}
