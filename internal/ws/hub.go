package ws

import (
	"context"
	"log"
	"sync"

	"github.com/playmatatu/aimguide/internal/config"
	"github.com/playmatatu/aimguide/internal/overlay"
	"github.com/playmatatu/aimguide/internal/profiles"
	"github.com/redis/go-redis/v9"
)

// Hub maintains the set of live editing sessions, grouped by profile.
type Hub struct {
	repo       profiles.Repository
	rdb        *redis.Client
	cfg        *config.Config
	instanceID string

	rooms      map[string]map[*Client]bool // profile -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a hub. rdb may be nil, in which case changes are only
// broadcast to sessions on this instance.
func NewHub(repo profiles.Repository, rdb *redis.Client, cfg *config.Config) *Hub {
	return &Hub{
		repo:       repo,
		rdb:        rdb,
		cfg:        cfg,
		instanceID: generateInstanceID(),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.profile]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.profile] = room
			}
			room[client] = true
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] session %s joined profile %s (room_size=%d)", client.id, client.profile, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.profile]; ok {
				if _, exists := room[client]; exists {
					delete(room, client)
					client.close()
					if len(room) == 0 {
						delete(h.rooms, client.profile)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] session %s left profile %s", client.id, client.profile)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for profile, room := range h.rooms {
		for client := range room {
			client.close()
		}
		delete(h.rooms, profile)
	}
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// RoomSize returns the number of sessions editing profile on this instance.
func (h *Hub) RoomSize(profile string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[profile])
}

// ApplyProfile pushes new settings to every session on profile except skip,
// replacing their working copy.
func (h *Hub) ApplyProfile(profile string, s overlay.Settings, skip *Client) {
	payload := encode(MsgPrediction, NewPredictionData(profile, s))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[profile] {
		if client == skip {
			continue
		}
		client.replaceSettings(s)
		client.trySend(payload)
	}
}

// DropProfile tells every session on profile that it was deleted. The
// sessions stay open but refuse to save until the profile is recreated.
func (h *Hub) DropProfile(profile string) {
	payload := encode(MsgDeleted, map[string]string{"profile": profile})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[profile] {
		client.markDeleted()
		client.trySend(payload)
	}
}
