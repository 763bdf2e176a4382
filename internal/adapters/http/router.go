package http

import (
	"context"
	stdhttp "net/http"

	"github.com/dkeye/WatchTogether/internal/adapters/signal"
	"github.com/dkeye/WatchTogether/internal/app/orch"
	"github.com/dkeye/WatchTogether/internal/config"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	clientTokenKey = "client_token"
	debugHost      = domain.ConnID("test-host")
)

// ClientTokenMiddleware gives every browser a stable token kept in the cookie session.
// It only labels log lines; session membership is per connection.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			s.Set(clientTokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("WatchTogether", store))
	r.Use(ClientTokenMiddleware())

	ctl := signal.NewSignalWSController(o, cfg)

	r.GET("/health", func(c *gin.Context) {
		st := o.Stats()
		c.JSON(stdhttp.StatusOK, gin.H{
			"status":                    "OK",
			"sessions":                  st.Sessions,
			"totalParticipants":         st.TotalParticipants,
			"connections":               st.Connections,
			"maxParticipantsPerSession": st.MaxParticipants,
		})
	})

	r.GET("/debug/sessions", func(c *gin.Context) {
		list := o.ListSessions()
		ids := make([]domain.SessionID, 0, len(list))
		for _, s := range list {
			ids = append(ids, s.ID)
		}
		c.JSON(stdhttp.StatusOK, gin.H{
			"sessionCount":              len(list),
			"maxParticipantsPerSession": o.MaxParticipants(),
			"sessions":                  list,
			"sessionIds":                ids,
		})
	})

	if cfg.Mode == "debug" {
		r.POST("/debug/create-session", func(c *gin.Context) {
			s, err := o.CreateDetachedSession(debugHost)
			if err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("debug create session")
				c.JSON(stdhttp.StatusInternalServerError, gin.H{"error": domain.MessageOf(err), "code": domain.CodeOf(err)})
				return
			}
			log.Info().Str("module", "adapters.http").Str("session", string(s.ID)).Msg("debug session created")
			c.JSON(stdhttp.StatusCreated, gin.H{"sessionId": s.ID, "session": s})
		})
	}

	api := r.Group("/api")
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"iceServers": ctl.ICE().ICEServers})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
