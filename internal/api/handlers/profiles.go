package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/config"
	"github.com/playmatatu/aimguide/internal/overlay"
	"github.com/playmatatu/aimguide/internal/profiles"
	appredis "github.com/playmatatu/aimguide/internal/redis"
	"github.com/playmatatu/aimguide/internal/render"
	"github.com/playmatatu/aimguide/internal/ws"
	"github.com/redis/go-redis/v9"
)

const maxSettingsBody = 64 * 1024

// profileName reads and validates the :name path parameter.
func profileName(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if !profiles.ValidName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile name"})
		return "", false
	}
	return name, true
}

func writeStoreError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, profiles.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile name"})
	default:
		log.Printf("[PROFILES] %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ListProfiles returns the stored profile names.
// GET /api/v1/profiles
func ListProfiles(repo profiles.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := repo.List(ctx)
		if err != nil {
			writeStoreError(c, "list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": list})
	}
}

// GetProfile returns a profile's settings together with its current prediction.
// GET /api/v1/profiles/:name
func GetProfile(repo profiles.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := profileName(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		s, err := repo.Get(ctx, name)
		if err != nil {
			writeStoreError(c, name, err)
			return
		}
		c.JSON(http.StatusOK, ws.NewPredictionData(name, s))
	}
}

// PutProfile replaces a profile's settings. Keys missing from the body keep
// their default values.
// PUT /api/v1/profiles/:name
func PutProfile(repo profiles.Repository, hub *ws.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := profileName(c)
		if !ok {
			return
		}

		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBody))
		if err != nil || len(raw) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "settings body required"})
			return
		}
		s, err := overlay.Merge(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := repo.Save(ctx, name, s); err != nil {
			writeStoreError(c, name, err)
			return
		}
		log.Printf("[PROFILES] %s updated by %s", name, adminName(c))

		invalidatePreviews(ctx, rdb, name)
		if hub != nil {
			hub.NotifyUpdated(ctx, name, s, nil)
		}
		c.JSON(http.StatusOK, ws.NewPredictionData(name, s))
	}
}

// ResetProfile restores a profile to the default settings.
// POST /api/v1/profiles/:name/reset
func ResetProfile(repo profiles.Repository, hub *ws.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := profileName(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		s, err := profiles.Reset(ctx, repo, name)
		if err != nil {
			writeStoreError(c, name, err)
			return
		}
		log.Printf("[PROFILES] %s reset to defaults by %s", name, adminName(c))

		invalidatePreviews(ctx, rdb, name)
		if hub != nil {
			hub.NotifyUpdated(ctx, name, s, nil)
		}
		c.JSON(http.StatusOK, ws.NewPredictionData(name, s))
	}
}

// DeleteProfile removes a profile.
// DELETE /api/v1/profiles/:name
func DeleteProfile(repo profiles.Repository, hub *ws.Hub, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := profileName(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := repo.Delete(ctx, name); err != nil {
			writeStoreError(c, name, err)
			return
		}
		log.Printf("[PROFILES] %s deleted by %s", name, adminName(c))

		invalidatePreviews(ctx, rdb, name)
		if hub != nil {
			hub.NotifyDeleted(ctx, name)
		}
		c.Status(http.StatusNoContent)
	}
}

// GetPreview renders a profile to PNG. Renders are cached in Redis for a few
// seconds since a connected overlay may poll while dragging.
// GET /api/v1/profiles/:name/preview.png?w=&h=
func GetPreview(repo profiles.Repository, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := profileName(c)
		if !ok {
			return
		}
		w, _ := strconv.Atoi(c.Query("w"))
		h, _ := strconv.Atoi(c.Query("h"))
		w, h = render.ClampSize(w, h)

		ctx, cancel := requestContext(c)
		defer cancel()

		key := appredis.PreviewKey(name, w, h)
		if rdb != nil {
			if cached, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Header("X-Preview-Cache", "hit")
				c.Data(http.StatusOK, "image/png", cached)
				return
			} else if err != redis.Nil {
				log.Printf("[PROFILES] preview cache read failed for %s: %v", key, err)
			}
		}

		s, err := repo.Get(ctx, name)
		if err != nil {
			writeStoreError(c, name, err)
			return
		}

		var buf bytes.Buffer
		if err := render.EncodePNG(&buf, s, w, h); err != nil {
			log.Printf("[PROFILES] preview render failed for %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
			return
		}

		if rdb != nil && cfg.PreviewCacheSeconds > 0 {
			ttl := time.Duration(cfg.PreviewCacheSeconds) * time.Second
			if err := rdb.Set(ctx, key, buf.Bytes(), ttl).Err(); err != nil {
				log.Printf("[PROFILES] preview cache write failed for %s: %v", key, err)
			}
		}

		c.Header("X-Preview-Cache", "miss")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

// invalidatePreviews drops every cached render of a profile.
func invalidatePreviews(ctx context.Context, rdb *redis.Client, name string) {
	if rdb == nil {
		return
	}
	iter := rdb.Scan(ctx, 0, appredis.PreviewPattern(name), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[PROFILES] preview cache scan failed for %s: %v", name, err)
		return
	}
	if len(keys) > 0 {
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			log.Printf("[PROFILES] preview cache purge failed for %s: %v", name, err)
		}
	}
}
