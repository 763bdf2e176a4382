package signal

import (
	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleState(id domain.ConnID, conn *WsSignalConn, in inbound) {
	st, err := parseState(in.Payload)
	if err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("bad playback state")
		ctl.sendError(conn, core.EventError, in.Ack, err)
		return
	}
	ok := ctl.Orch.ReportState(id, st)
	if in.Ack != nil {
		ctl.send(conn, core.EventAck, map[string]bool{"applied": ok}, in.Ack)
	}
}

func (ctl *SignalWSController) handleVideo(id domain.ConnID, conn *WsSignalConn, in inbound) {
	ref, err := parseVideoReference(in.Payload)
	if err == nil {
		err = ctl.Orch.SelectVideo(id, ref)
	}
	if err != nil {
		ctl.sendError(conn, core.EventError, in.Ack, err)
		return
	}
	if in.Ack != nil {
		ctl.send(conn, core.EventAck, struct {
			VideoReference string `json:"videoReference"`
		}{ref}, in.Ack)
	}
}

func (ctl *SignalWSController) handleChat(id domain.ConnID, conn *WsSignalConn, in inbound) {
	if !ctl.chatLimiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("chat rate limited")
		ctl.sendError(conn, core.EventError, in.Ack, domain.ErrRateLimited)
		return
	}
	text, err := parseChatText(in.Payload)
	if err == nil {
		err = ctl.Orch.Chat(id, text)
	}
	if err != nil {
		ctl.sendError(conn, core.EventError, in.Ack, err)
		return
	}
	if in.Ack != nil {
		ctl.send(conn, core.EventAck, nil, in.Ack)
	}
}
