package core

import (
	"time"

	"github.com/dkeye/WatchTogether/internal/domain"
)

// UpdateFunc mutates a session under its lock. Returning remove=true deletes the
// session from the store before the lock is released.
type UpdateFunc func(s *domain.Session) (remove bool, err error)

// SessionStore is the only shared mutable resource of the server.
// Every mutation of one session is serialized; different sessions proceed in parallel.
type SessionStore interface {
	Create(s *domain.Session) error
	Get(id domain.SessionID) (domain.Session, error)
	Update(id domain.SessionID, fn UpdateFunc) error
	// View runs fn under the session's lock without mutating it.
	View(id domain.SessionID, fn func(s *domain.Session)) error
	// RemoveExpired deletes every session older than ttl. onRemove runs under the
	// session's lock, after the session is unreachable for new operations.
	RemoveExpired(now time.Time, ttl time.Duration, onRemove func(s *domain.Session)) []domain.Session
	List() []domain.Session
	Count() int
}

// SessionInfo is a read-only view for APIs (no transport fields).
type SessionInfo struct {
	ID               domain.SessionID     `json:"id"`
	Host             domain.ConnID        `json:"host"`
	Participants     []domain.ConnID      `json:"participants"`
	ParticipantCount int                  `json:"participantCount"`
	MaxParticipants  int                  `json:"maxParticipants"`
	VideoReference   string               `json:"videoReference,omitempty"`
	Playback         domain.PlaybackState `json:"videoState"`
	CreatedAt        int64                `json:"createdAt"`
}

func NewSessionInfo(s domain.Session, maxParticipants int) SessionInfo {
	return SessionInfo{
		ID:               s.ID,
		Host:             s.Host,
		Participants:     s.Guests,
		ParticipantCount: s.ParticipantCount(),
		MaxParticipants:  maxParticipants,
		VideoReference:   s.VideoReference,
		Playback:         s.Playback,
		CreatedAt:        s.CreatedAt.UnixMilli(),
	}
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}
