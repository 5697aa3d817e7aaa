package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/config"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

// HealthCheck reports liveness plus the state of the optional Redis link.
// An unreachable Redis is reported but does not fail the check.
// GET /api/v1/health
func HealthCheck(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		redisState := "disabled"
		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			redisState = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisState = "unreachable"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"version":       version,
			"profile_store": cfg.ProfileStore,
			"redis":         redisState,
			"uptime":        time.Since(started).Round(time.Second).String(),
		})
	}
}
