package domain

import (
	"crypto/rand"
	"fmt"
)

const (
	DefaultSessionIDLength = 26
	sessionIDCharset       = "0123456789abcdefghijklmnopqrstuvwxyz"
	// Random bytes at or above this bound are discarded so every character is equally likely.
	sessionIDByteLimit = 256 - 256%len(sessionIDCharset)
)

// NewSessionID returns a random lowercase alphanumeric id of the given length.
// It is unguessable enough to avoid casual collisions, it is not a credential.
func NewSessionID(length int) (SessionID, error) {
	if length <= 0 {
		length = DefaultSessionIDLength
	}
	id := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(id) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		id = appendSessionIDChars(id, buf, length)
	}
	return SessionID(id), nil
}

func appendSessionIDChars(id, random []byte, length int) []byte {
	for _, b := range random {
		if len(id) == length {
			break
		}
		if int(b) >= sessionIDByteLimit {
			continue
		}
		id = append(id, sessionIDCharset[int(b)%len(sessionIDCharset)])
	}
	return id
}
