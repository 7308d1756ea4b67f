package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	EventAlbumCreated  = "album.created"
	EventAlbumUpdated  = "album.updated"
	EventAlbumDeleted  = "album.deleted"
	EventTrackCreated  = "track.created"
	EventTrackUpdated  = "track.updated"
	EventTrackMoved    = "track.moved"
	EventTrackDeleted  = "track.deleted"
	EventUserCreated   = "user.created"
	EventUserApproved  = "user.approved"
	EventUserDeleted   = "user.deleted"
	EventArtistDeleted = "artist.deleted"
	EventArtistsImport = "artist.imported"
)

type Event struct {
	Type     string    `json:"type"`
	ArtistID string    `json:"artist_id,omitempty"`
	AlbumID  string    `json:"album_id,omitempty"`
	TrackID  string    `json:"track_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	Count    int       `json:"count,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers events to the feed. Implementations must not fail the caller's request;
// delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *log.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, logger *log.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel, log: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("marshal event", "type", ev.Type, "err", err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn("publish event", "type", ev.Type, "channel", p.channel, "err", err)
	}
}
