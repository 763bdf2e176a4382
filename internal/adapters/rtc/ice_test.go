package rtc

import (
	"testing"

	"github.com/dkeye/WatchTogether/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromICE(t *testing.T) {
	t.Run("empty falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultWebRTCConfig(), ConfigFromICE(config.ICEConfig{}))
	})

	t.Run("turn gets credentials", func(t *testing.T) {
		got := ConfigFromICE(config.ICEConfig{
			URLs:       []string{"stun:stun.example.org:3478", "turn:turn.example.org:3478", "turns:turn.example.org:5349"},
			Username:   "u",
			Credential: "p",
		})
		require.Len(t, got.ICEServers, 2)
		assert.Equal(t, webrtc.ICEServer{URLs: []string{"stun:stun.example.org:3478"}}, got.ICEServers[0])
		assert.Equal(t, []string{"turn:turn.example.org:3478", "turns:turn.example.org:5349"}, got.ICEServers[1].URLs)
		assert.Equal(t, "u", got.ICEServers[1].Username)
		assert.Equal(t, "p", got.ICEServers[1].Credential)
	})
}
