package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/adapters/ws"
	"github.com/sorsu/tiktalk/internal/config"
)

// ClientTokenMiddleware pins a uuid cookie to every browser. The
// websocket controller prefixes its per-connection session ids with it;
// the token itself is browser-scoped and never a session identity.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, wsCtl *ws.Controller, admin *AdminAPI) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("TikTalkSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "httpapi").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now(),
			"onlineUsers": admin.Orch.Registry.Size(),
		})
	})

	api.GET("/ws", wsCtl.Handle)

	loginLimiter := ws.NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", RateLimit(loginLimiter, "Too many login attempts, please try again later."), admin.Login)

	authed := adminGroup.Group("")
	authed.Use(requireAuth)
	authed.GET("/reports", admin.ListReports)
	authed.PATCH("/reports/:reportId", admin.UpdateReport)
	authed.POST("/bans", admin.IssueBan)
	authed.GET("/bans", admin.ListBans)
	authed.DELETE("/bans/:ipHash", admin.RemoveBan)
	authed.GET("/stats", admin.GetStats)
	authed.GET("/actions", admin.ListActions)

	return r
}
