package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/aimguide/internal/models"
	"github.com/playmatatu/aimguide/internal/overlay"
	appredis "github.com/playmatatu/aimguide/internal/redis"
)

// NotifyUpdated pushes new settings to local sessions (except skip) and tells
// the other instances through Redis.
func (h *Hub) NotifyUpdated(ctx context.Context, profile string, s overlay.Settings, skip *Client) {
	h.ApplyProfile(profile, s, skip)
	h.publish(ctx, models.ProfileEvent{Type: models.ProfileEventUpdated, Profile: profile})
}

// NotifyDeleted tells local sessions and other instances that profile is gone.
func (h *Hub) NotifyDeleted(ctx context.Context, profile string) {
	h.DropProfile(profile)
	h.publish(ctx, models.ProfileEvent{Type: models.ProfileEventDeleted, Profile: profile})
}

func (h *Hub) publish(ctx context.Context, evt models.ProfileEvent) {
	if h.rdb == nil {
		return
	}
	evt.Origin = h.instanceID
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[WS] failed to encode profile event: %v", err)
		return
	}
	if err := h.rdb.Publish(ctx, appredis.OverlayEventsChannel, payload).Err(); err != nil {
		log.Printf("[WS] failed to publish profile event for %s: %v", evt.Profile, err)
	}
}

// StartEventSubscriber relays profile events published by other instances to
// the sessions connected here.
func (h *Hub) StartEventSubscriber(ctx context.Context) {
	if h.rdb == nil {
		log.Println("[WS] Redis client not set; overlay event subscriber not started")
		return
	}

	pubsub := h.rdb.Subscribe(ctx, appredis.OverlayEventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		log.Printf("[WS] %s subscriber started (instance=%s)", appredis.OverlayEventsChannel, h.instanceID)
		for msg := range ch {
			var evt models.ProfileEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			h.handleEvent(ctx, evt)
		}
	}()
}

func (h *Hub) handleEvent(ctx context.Context, evt models.ProfileEvent) {
	if evt.Origin == h.instanceID {
		return
	}
	if h.RoomSize(evt.Profile) == 0 {
		return
	}

	log.Printf("[WS] event received: type=%s profile=%s origin=%s", evt.Type, evt.Profile, evt.Origin)

	switch evt.Type {
	case models.ProfileEventUpdated:
		s, err := h.repo.Get(ctx, evt.Profile)
		if err != nil {
			log.Printf("[WS] failed to reload profile %s: %v", evt.Profile, err)
			return
		}
		h.ApplyProfile(evt.Profile, s, nil)

	case models.ProfileEventDeleted:
		h.DropProfile(evt.Profile)

	default:
		log.Printf("[WS] unhandled event type %s", evt.Type)
	}
}
