package signal

import "github.com/dkeye/WatchTogether/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn, in inbound) {
	ctl.reply(conn, core.EventPong, nil, in.Ack)
}
