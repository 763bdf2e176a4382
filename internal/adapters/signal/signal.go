package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/dkeye/WatchTogether/internal/adapters/rtc"
	"github.com/dkeye/WatchTogether/internal/app/orch"
	"github.com/dkeye/WatchTogether/internal/config"
	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch *orch.Orchestrator

	cfg         *config.Config
	ice         webrtc.Configuration
	chatLimiter *RateLimiter
	joinLimiter *RateLimiter
	upgrader    websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:        o,
		cfg:         cfg,
		ice:         rtc.ConfigFromICE(cfg.ICE),
		chatLimiter: NewRateLimiter(cfg.Limits.ChatPerInterval, cfg.Limits.ChatInterval),
		joinLimiter: NewRateLimiter(cfg.Limits.JoinPerInterval, cfg.Limits.JoinInterval),
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin allows everything when no origins are configured.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(ctl.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

// ICE is the configuration handed to clients for their peer channel.
func (ctl *SignalWSController) ICE() webrtc.Configuration { return ctl.ice }

// WsSignalConn implements core.SignalConnection over one websocket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	if buffer <= 0 {
		buffer = 64
	}
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts the connection's pumps.
// ctx is the server lifetime, the request context dies with the handler.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())
	logger := log.With().Str("module", "signal").Str("conn", string(id)).Str("client", c.GetString("client_token")).Logger()

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	logger.Info().Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(id, conn, cancel)

	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(cancel, id, conn)
}
