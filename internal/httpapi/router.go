package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suPer8Hu/luna-backend/internal/common"
	"github.com/suPer8Hu/luna-backend/internal/httpapi/handlers"
	"github.com/suPer8Hu/luna-backend/internal/httpapi/middleware"
)

// NewRouter wires every route onto h. gatherer backs /metrics and may be nil
// to leave the endpoint out.
func NewRouter(h *handlers.Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(h.Log))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowOrigins:     h.Cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// accounts
	r.POST("/users", h.CreateUser)
	r.POST("/signin", h.SignIn)
	r.POST("/change-password", h.ChangePassword)
	r.POST("/update-profile", h.UpdateProfile)
	r.POST("/update-username", h.UpdateUsername)

	// password reset
	r.POST("/password-reset-request", h.RequestPasswordReset)
	r.POST("/password-reset", h.ResetPassword)

	// chat
	r.POST("/chat", h.SendChatMessage)
	r.GET("/chat/messages", h.ListChatMessages)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	return r
}
