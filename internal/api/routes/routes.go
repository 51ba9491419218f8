package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/api/handlers"
	"github.com/devfikr/subpolish/internal/api/middleware"
	"github.com/devfikr/subpolish/internal/ratelimit"
)

type Deps struct {
	Subtitle *handlers.SubtitleHandler
	Optimize *handlers.OptimizeHandler
	Limiter  *ratelimit.Limiter
	Log      *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.Use(middleware.ClientIdentity())

	api.GET("/formats", d.Subtitle.Formats)

	// the expensive paths share one admission budget per caller
	limited := api.Group("/")
	limited.Use(middleware.RateLimit(d.Limiter, d.Log))

	limited.POST("/parse", d.Subtitle.Parse)
	limited.POST("/convert", d.Subtitle.Convert)
	limited.POST("/optimize", d.Optimize.Optimize)
}
