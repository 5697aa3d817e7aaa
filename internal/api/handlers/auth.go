package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/admin"
	"github.com/playmatatu/aimguide/internal/config"
	appredis "github.com/playmatatu/aimguide/internal/redis"
	"github.com/redis/go-redis/v9"
)

// AdminLogin exchanges a username and admin token for a session JWT.
// POST /api/v1/admin/login
func AdminLogin(lookup admin.AccountLookup, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Token    string `json:"token"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and token required"})
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and token required"})
			return
		}

		ctx := c.Request.Context()

		// Rate limit per username
		if rdb != nil && cfg.LoginRateLimitSeconds > 0 {
			window := time.Duration(cfg.LoginRateLimitSeconds) * time.Second
			ok, err := rdb.SetNX(ctx, appredis.LoginRateKey(username), "1", window).Result()
			if err == nil && !ok {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
				return
			}
		}

		account, err := lookup(ctx, username)
		if err != nil || !admin.VerifyAdminToken(account.TokenHash, req.Token) {
			log.Printf("[ADMIN] failed login for %s", username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
		token, exp, err := admin.IssueToken(cfg.JWTSecret, account, ttl)
		if err != nil {
			log.Printf("[ADMIN] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
			"admin":      gin.H{"username": account.Username, "display_name": account.DisplayName, "roles": account.Roles},
		})
	}
}

// AuthMiddleware validates the bearer JWT and sets admin_username in context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := admin.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_username", claims.Username)
		c.Next()
	}
}

// requestContext bounds storage calls made on behalf of a request.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}

func adminName(c *gin.Context) string {
	if v, ok := c.Get("admin_username"); ok {
		return fmt.Sprint(v)
	}
	return "unknown"
}
