package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Feed serves the websocket endpoint and relays events from Redis into the hub.
type Feed struct {
	hub      *Hub
	log      *log.Logger
	upgrader websocket.Upgrader
}

func NewFeed(hub *Hub, logger *log.Logger, allowedOrigin string) *Feed {
	return &Feed{
		hub: hub,
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("ws upgrade", "err", err)
		return
	}

	client := &Client{
		hub:  f.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	welcome := map[string]any{
		"type": "welcome",
		"now":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	select {
	case f.hub.register <- client:
	case <-f.hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// RunSubscriber forwards every message on channel to the hub until ctx is cancelled.
func (f *Feed) RunSubscriber(ctx context.Context, rdb *redis.Client, channel string) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.hub.Broadcast(ctx, []byte(msg.Payload))
		}
	}
}
