package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

func (ctl *SignalWSController) writePump(ctx context.Context, id domain.ConnID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump owns every read on the connection, so all events of one connection
// are handled one at a time and in order.
func (ctl *SignalWSController) readPump(cancel context.CancelFunc, id domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(id)
		ctl.chatLimiter.Forget(id)
		ctl.joinLimiter.Forget(id)
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(id, c, data)
	}
}

// handleSignal isolates a faulty handler to the frame that triggered it.
func (ctl *SignalWSController) handleSignal(id domain.ConnID, c *WsSignalConn, data []byte) {
	var pc panics.Catcher
	pc.Try(func() { ctl.dispatch(id, c, data) })
	if r := pc.Recovered(); r != nil {
		log.Error().Err(r.AsError()).Str("module", "signal").Str("conn", string(id)).Msg("handler panic")
		ctl.sendError(c, core.EventError, nil, domain.ErrInternal)
	}
}

func (ctl *SignalWSController) dispatch(id domain.ConnID, c *WsSignalConn, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad json")
		ctl.sendError(c, core.EventError, nil, domain.ErrMalformedRequest)
		return
	}

	switch in.Type {
	case EventCreateSession:
		ctl.handleCreate(id, c, in)
	case EventJoinSession:
		ctl.handleJoin(id, c, in)
	case EventLeaveSession:
		ctl.handleLeave(id, in)
	case core.EventOffer, core.EventAnswer, core.EventCandidate:
		ctl.handleRelay(id, c, in)
	case core.EventVideoURL, EventShareVideo:
		ctl.handleVideo(id, c, in)
	case core.EventVideoState, EventSyncVideo:
		ctl.handleState(id, c, in)
	case EventSendMessage:
		ctl.handleChat(id, c, in)
	case EventPing:
		ctl.handlePing(c, in)
	default:
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("type", in.Type).Msg("unknown signal")
		ctl.sendError(c, core.EventError, in.Ack, domain.ErrMalformedRequest)
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, eventType string, v any) {
	ctl.send(c, eventType, v, nil)
}

func (ctl *SignalWSController) send(c *WsSignalConn, eventType string, v any, ack *int64) {
	f, err := core.EncodeAck(eventType, v, ack)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("event", eventType).Msg("reply dropped")
	}
}

// reply sends the named event and, when the client asked for one, the matching ack.
func (ctl *SignalWSController) reply(c *WsSignalConn, eventType string, v any, ack *int64) {
	ctl.sendJSON(c, eventType, v)
	if ack != nil {
		ctl.send(c, core.EventAck, v, ack)
	}
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, eventType string, ack *int64, err error) {
	ctl.reply(c, eventType, errorPayload{Error: domain.MessageOf(err), Code: domain.CodeOf(err)}, ack)
}
