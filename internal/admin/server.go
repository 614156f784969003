package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/andy6609/roomchat-server/internal/chat"
)

// StatsSource reports the live chat state.
type StatsSource interface {
	Stats(ctx context.Context) (chat.Stats, error)
}

// NewRouter exposes health, room stats and Prometheus metrics.
func NewRouter(src StatsSource, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/rooms", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		st, err := src.Stats(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// NewServer builds the admin HTTP server listening on addr.
func NewServer(addr string, src StatsSource, logger *zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(src, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("admin request")
	}
}
