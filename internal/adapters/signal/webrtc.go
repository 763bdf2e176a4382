package signal

import (
	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards an offer, answer or candidate to the peer. The blob is
// not inspected beyond being present.
func (ctl *SignalWSController) handleRelay(id domain.ConnID, conn *WsSignalConn, in inbound) {
	if _, ok := parsePayload(in.Payload); !ok {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("type", in.Type).Msg("empty signal payload")
		ctl.sendError(conn, core.EventError, in.Ack, domain.ErrMalformedRequest)
		return
	}
	delivered := ctl.Orch.Relay(id, in.Type, in.To, in.Payload)
	if in.Ack != nil {
		ctl.send(conn, core.EventAck, map[string]bool{"delivered": delivered}, in.Ack)
	}
}
