// Package domain contains entities without transport, just meta-data and invariants.
package domain

import (
	"slices"
	"time"
)

type SessionID string

// PlaybackState is the synchronized view of what is playing and where.
type PlaybackState struct {
	PositionSeconds float64 `json:"positionSeconds"`
	IsPlaying       bool    `json:"isPlaying"`
	VideoReference  string  `json:"videoReference,omitempty"`
}

// Session binds one host and a bounded list of guests around a shared video.
type Session struct {
	ID             SessionID     `json:"id"`
	Host           ConnID        `json:"host"`
	Guests         []ConnID      `json:"participants"`
	VideoReference string        `json:"videoReference,omitempty"`
	Playback       PlaybackState `json:"playbackState"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func NewSession(id SessionID, host ConnID, now time.Time) *Session {
	return &Session{
		ID:        id,
		Host:      host,
		Guests:    []ConnID{},
		CreatedAt: now,
	}
}

// ParticipantCount counts the host and every guest.
func (s *Session) ParticipantCount() int { return 1 + len(s.Guests) }

func (s *Session) IsHost(c ConnID) bool { return s.Host == c }

func (s *Session) HasGuest(c ConnID) bool { return slices.Contains(s.Guests, c) }

// AddGuest appends a guest. The host is never listed as a guest.
func (s *Session) AddGuest(c ConnID) bool {
	if c == s.Host || s.HasGuest(c) {
		return false
	}
	s.Guests = append(s.Guests, c)
	return true
}

func (s *Session) RemoveGuest(c ConnID) bool {
	i := slices.Index(s.Guests, c)
	if i < 0 {
		return false
	}
	s.Guests = slices.Delete(s.Guests, i, i+1)
	return true
}

// LastGuest returns the most recently joined guest.
func (s *Session) LastGuest() (ConnID, bool) {
	if len(s.Guests) == 0 {
		return "", false
	}
	return s.Guests[len(s.Guests)-1], true
}

// Others lists every member except c, host first.
func (s *Session) Others(c ConnID) []ConnID {
	out := make([]ConnID, 0, len(s.Guests)+1)
	if s.Host != "" && s.Host != c {
		out = append(out, s.Host)
	}
	for _, g := range s.Guests {
		if g != c {
			out = append(out, g)
		}
	}
	return out
}

// Expired reports whether the session outlived ttl at now. Activity does not extend it.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// Snapshot returns a copy safe to hand out of the store's lock.
func (s *Session) Snapshot() Session {
	cp := *s
	cp.Guests = slices.Clone(s.Guests)
	return cp
}
