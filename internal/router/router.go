package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stkrelay/config"
	"stkrelay/internal/handler"
	"stkrelay/internal/middleware"
	"stkrelay/internal/ws"
)

func Setup(cfg *config.Config, initiator handler.PaymentInitiator, hub *ws.Hub) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.AccessLog())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	mpesaHandler := handler.NewMpesaHandler(initiator)
	callbackHandler := handler.NewCallbackHandler(hub)

	r.POST("/stkpush", middleware.RateLimit(cfg.RateLimit.RequestsPerSecond), mpesaHandler.STKPush)
	r.POST("/callback", callbackHandler.Receive)
	r.GET("/ws/callbacks", ws.UpgradeCallbackFeed(hub))

	// Everything else is a static asset. Registered as NoRoute so it cannot
	// conflict with the API paths above.
	static := http.FileServer(gin.Dir(cfg.Server.StaticDir, false))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		static.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
