package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/adapters/signal"
	"github.com/dmarkov/jamsync/internal/app"
	"github.com/dmarkov/jamsync/internal/config"
	"github.com/dmarkov/jamsync/internal/core"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware tags every visitor with a stable token; the token is
// the member id on the signal channel.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.SignalWSController, reg *app.Registry, catalog core.Catalog) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("JamSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/search", func(c *gin.Context) {
		handleSearch(c, catalog)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.List())
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}

func handleSearch(c *gin.Context, catalog core.Catalog) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusOK, []any{})
		return
	}
	songs, err := catalog.Search(c.Request.Context(), q)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("q", q).Msg("catalog search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "search unavailable"})
		return
	}
	c.JSON(http.StatusOK, songs)
}
