package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel carrying profile change notifications between server instances.
const OverlayEventsChannel = "overlay_events"

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// PreviewKey is the cache key for a rendered profile preview.
func PreviewKey(profile string, width, height int) string {
	return fmt.Sprintf("preview:%s:%dx%d", profile, width, height)
}

// PreviewPattern matches every cached preview of a profile.
func PreviewPattern(profile string) string {
	return fmt.Sprintf("preview:%s:*", profile)
}

// LoginRateKey is the per-user login throttle key.
func LoginRateKey(username string) string {
	return "login_rate:" + username
}
