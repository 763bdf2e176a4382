package signal

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/tidwall/gjson"
)

// Inbound-only event names.
const (
	EventCreateSession = "create-session"
	EventJoinSession   = "join-session"
	EventLeaveSession  = "leave-session"
	EventShareVideo    = "share-video"
	EventSyncVideo     = "sync-video"
	EventSendMessage   = "send-message"
	EventPing          = "ping"
)

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ack     *int64          `json:"ack,omitempty"`
	To      domain.ConnID   `json:"to,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func parsePayload(raw json.RawMessage) (gjson.Result, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	r := gjson.ParseBytes(raw)
	return r, r.Exists() && r.Type != gjson.Null
}

// firstOf returns the first present key of an object.
func firstOf(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// stringOrField accepts either a bare JSON string or an object holding one of keys.
func stringOrField(raw json.RawMessage, keys ...string) (string, error) {
	r, ok := parsePayload(raw)
	if !ok {
		return "", domain.ErrMalformedRequest
	}
	if r.Type != gjson.String {
		if !r.IsObject() {
			return "", domain.ErrMalformedRequest
		}
		r = firstOf(r, keys...)
		if r.Type != gjson.String {
			return "", domain.ErrMalformedRequest
		}
	}
	s := strings.TrimSpace(r.Str)
	if s == "" {
		return "", domain.ErrMalformedRequest
	}
	return s, nil
}

func parseSessionID(raw json.RawMessage) (domain.SessionID, error) {
	s, err := stringOrField(raw, "sessionId", "id")
	return domain.SessionID(s), err
}

func parseVideoReference(raw json.RawMessage) (string, error) {
	return stringOrField(raw, "videoReference", "videoId", "videoUrl")
}

func parseChatText(raw json.RawMessage) (string, error) {
	return stringOrField(raw, "text", "message")
}

// parseState reads a playback state, optionally wrapped as {state: ...}.
func parseState(raw json.RawMessage) (domain.PlaybackState, error) {
	r, ok := parsePayload(raw)
	if !ok || !r.IsObject() {
		return domain.PlaybackState{}, domain.ErrMalformedRequest
	}
	if inner := r.Get("state"); inner.IsObject() {
		r = inner
	}
	pos := firstOf(r, "positionSeconds", "currentTime")
	playing := r.Get("isPlaying")
	if pos.Type != gjson.Number || (playing.Type != gjson.True && playing.Type != gjson.False) {
		return domain.PlaybackState{}, domain.ErrMalformedRequest
	}
	// gjson yields ±Inf for out-of-range literals; encoding/json cannot write them back.
	if pos.Num < 0 || math.IsInf(pos.Num, 0) || math.IsNaN(pos.Num) {
		return domain.PlaybackState{}, domain.ErrMalformedRequest
	}
	st := domain.PlaybackState{PositionSeconds: pos.Num, IsPlaying: playing.Bool()}
	if ref := firstOf(r, "videoReference", "videoId", "videoUrl"); ref.Type == gjson.String {
		st.VideoReference = ref.Str
	}
	return st, nil
}
