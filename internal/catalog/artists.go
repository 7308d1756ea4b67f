package catalog

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/realtime"
)

// Artists manages artist profiles on behalf of administrators and the artists themselves.
type Artists struct {
	store  ArtistStore
	events realtime.Publisher
	log    *log.Logger
}

func NewArtists(store ArtistStore, events realtime.Publisher, logger *log.Logger) *Artists {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return &Artists{store: store, events: events, log: logger}
}

func artistNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("artist not found")
	}
	return err
}

func (a *Artists) List(ctx context.Context, limit, offset int) ([]Artist, int, error) {
	return a.store.ListArtists(ctx, limit, offset)
}

func (a *Artists) Get(ctx context.Context, id string) (Artist, error) {
	artist, err := a.store.GetArtist(ctx, id)
	return artist, artistNotFound(err)
}

func (a *Artists) Update(ctx context.Context, id string, in ArtistInput) (Artist, error) {
	if err := in.Validate(false); err != nil {
		return Artist{}, err
	}
	artist, err := a.store.UpdateArtist(ctx, id, in)
	return artist, artistNotFound(err)
}

func (a *Artists) Delete(ctx context.Context, id string) error {
	if err := a.store.DeleteArtist(ctx, id); err != nil {
		return artistNotFound(err)
	}
	a.log.Info("artist deleted", "artist_id", id)
	a.events.Publish(ctx, realtime.Event{Type: realtime.EventArtistDeleted, ArtistID: id})
	return nil
}

func (a *Artists) Tracks(ctx context.Context, id string) ([]Track, error) {
	if _, err := a.store.GetArtist(ctx, id); err != nil {
		return nil, artistNotFound(err)
	}
	return a.store.ListArtistTracks(ctx, id)
}

// Profile returns the artist profile linked to userID.
func (a *Artists) Profile(ctx context.Context, userID string) (Artist, error) {
	artist, err := a.store.ArtistByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Artist{}, apperr.NotFound("artist profile not found")
	}
	return artist, err
}

func (a *Artists) UpdateProfile(ctx context.Context, userID string, in ArtistInput) (Artist, error) {
	artist, err := a.Profile(ctx, userID)
	if err != nil {
		return Artist{}, err
	}
	return a.Update(ctx, artist.ID, in)
}

// All returns every artist ordered for export.
func (a *Artists) All(ctx context.Context) ([]Artist, error) {
	return a.store.AllArtists(ctx)
}

func (a *Artists) Export(ctx context.Context, w io.Writer) error {
	artists, err := a.All(ctx)
	if err != nil {
		return err
	}
	return WriteArtistsCSV(w, artists)
}

// Import parses r and inserts every row atomically.
func (a *Artists) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ReadArtistsCSV(r)
	if err != nil {
		return 0, err
	}
	n, err := a.store.ImportArtists(ctx, rows)
	if err != nil {
		return 0, err
	}
	a.log.Info("artists imported", "count", n)
	a.events.Publish(ctx, realtime.Event{Type: realtime.EventArtistsImport, Count: n})
	return n, nil
}
