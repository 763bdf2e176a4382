// Package rtc describes how clients should reach each other for their direct
// peer channel. The server never terminates WebRTC itself.
package rtc

import (
	"strings"

	"github.com/dkeye/WatchTogether/internal/config"
	"github.com/pion/webrtc/v4"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// ConfigFromICE builds the configuration handed to browsers. TURN urls get the
// configured credentials, STUN urls never do.
func ConfigFromICE(cfg config.ICEConfig) webrtc.Configuration {
	if len(cfg.URLs) == 0 {
		return DefaultWebRTCConfig()
	}
	var stun, turn []string
	for _, u := range cfg.URLs {
		if strings.HasPrefix(u, "turn:") || strings.HasPrefix(u, "turns:") {
			turn = append(turn, u)
			continue
		}
		stun = append(stun, u)
	}
	out := webrtc.Configuration{}
	if len(stun) > 0 {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{URLs: stun})
	}
	if len(turn) > 0 {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{
			URLs:       turn,
			Username:   cfg.Username,
			Credential: cfg.Credential,
		})
	}
	return out
}
