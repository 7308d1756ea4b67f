package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/realtime"
)

// Service implements the album and track operations of an artist on their own catalog.
type Service struct {
	store  AlbumStore
	events realtime.Publisher
	log    *log.Logger
}

func NewService(store AlbumStore, events realtime.Publisher, logger *log.Logger) *Service {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return &Service{store: store, events: events, log: logger}
}

func scoped(err error, kind ResourceKind) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(kind)
	}
	return err
}

// ArtistForUser resolves the artist profile behind a user account.
func (s *Service) ArtistForUser(ctx context.Context, userID string) (Artist, error) {
	a, err := s.store.ArtistByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Artist{}, apperr.NotFound("artist profile not found")
	}
	return a, err
}

func (s *Service) ListAlbums(ctx context.Context, artist Artist) ([]Album, error) {
	return s.store.ListAlbums(ctx, artist.ID)
}

func (s *Service) GetAlbum(ctx context.Context, artist Artist, albumID string) (Album, error) {
	if err := s.requireOwnership(ctx, artist, Resource{Kind: ResourceAlbum, AlbumID: albumID}); err != nil {
		return Album{}, err
	}
	a, err := s.store.GetAlbum(ctx, artist.ID, albumID)
	return a, scoped(err, ResourceAlbum)
}

func (s *Service) CreateAlbum(ctx context.Context, artist Artist, in AlbumInput) (Album, error) {
	if err := in.Validate(true); err != nil {
		return Album{}, err
	}
	a, err := s.store.InsertAlbum(ctx, artist.ID, in)
	if err != nil {
		return Album{}, err
	}
	s.log.Info("album created", "album_id", a.ID, "artist_id", artist.ID)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventAlbumCreated, ArtistID: artist.ID, AlbumID: a.ID})
	return a, nil
}

// UpdateAlbum applies the supplied fields only; everything omitted keeps its stored value.
func (s *Service) UpdateAlbum(ctx context.Context, artist Artist, albumID string, in AlbumInput) (Album, error) {
	if err := in.Validate(false); err != nil {
		return Album{}, err
	}
	a, err := s.store.UpdateAlbum(ctx, artist.ID, albumID, in)
	if err != nil {
		return Album{}, scoped(err, ResourceAlbum)
	}
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventAlbumUpdated, ArtistID: artist.ID, AlbumID: a.ID})
	return a, nil
}

func (s *Service) DeleteAlbum(ctx context.Context, artist Artist, albumID string) error {
	if err := s.store.DeleteAlbum(ctx, artist.ID, albumID); err != nil {
		return scoped(err, ResourceAlbum)
	}
	s.log.Info("album deleted", "album_id", albumID, "artist_id", artist.ID)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventAlbumDeleted, ArtistID: artist.ID, AlbumID: albumID})
	return nil
}

func (s *Service) ListTracks(ctx context.Context, artist Artist, albumID string) ([]Track, error) {
	if err := s.requireOwnership(ctx, artist, Resource{Kind: ResourceAlbum, AlbumID: albumID}); err != nil {
		return nil, err
	}
	return s.store.ListTracks(ctx, albumID)
}

func (s *Service) GetTrack(ctx context.Context, artist Artist, albumID, trackID string) (Track, error) {
	res := Resource{Kind: ResourceTrack, AlbumID: albumID, TrackID: trackID}
	if err := s.requireOwnership(ctx, artist, res); err != nil {
		return Track{}, err
	}
	t, err := s.store.GetTrack(ctx, albumID, trackID)
	return t, scoped(err, ResourceTrack)
}

// CreateTrack appends a track after the current highest number of the album, 1 for an empty album.
// Reading the maximum and inserting happen under the album lock.
func (s *Service) CreateTrack(ctx context.Context, artist Artist, albumID string, in TrackInput) (Track, error) {
	if err := in.Validate(true); err != nil {
		return Track{}, err
	}
	var created Track
	err := s.store.WithAlbumLock(ctx, artist.ID, albumID, func(tx AlbumTx) error {
		last, err := tx.MaxTrackNumber(ctx)
		if err != nil {
			return err
		}
		created, err = tx.InsertTrack(ctx, in, last+1)
		return err
	})
	if err != nil {
		return Track{}, scoped(err, ResourceAlbum)
	}
	s.log.Info("track created", "track_id", created.ID, "album_id", albumID, "track_number", created.TrackNumber)
	s.events.Publish(ctx, realtime.Event{
		Type: realtime.EventTrackCreated, ArtistID: artist.ID, AlbumID: albumID, TrackID: created.ID,
	})
	return created, nil
}

func (s *Service) UpdateTrack(ctx context.Context, artist Artist, albumID, trackID string, in TrackInput) (Track, error) {
	if err := in.Validate(false); err != nil {
		return Track{}, err
	}
	if err := s.requireOwnership(ctx, artist, Resource{Kind: ResourceTrack, AlbumID: albumID, TrackID: trackID}); err != nil {
		return Track{}, err
	}
	var updated Track
	err := s.store.WithAlbumLock(ctx, artist.ID, albumID, func(tx AlbumTx) error {
		var err error
		updated, err = tx.UpdateTrack(ctx, trackID, in)
		return err
	})
	if err != nil {
		return Track{}, scoped(err, ResourceTrack)
	}
	s.events.Publish(ctx, realtime.Event{
		Type: realtime.EventTrackUpdated, ArtistID: artist.ID, AlbumID: albumID, TrackID: trackID,
	})
	return updated, nil
}

// MoveTrack gives a track a new position in 1..N and shifts the tracks between the old and the
// new position by one, keeping the numbering contiguous.
func (s *Service) MoveTrack(ctx context.Context, artist Artist, albumID, trackID string, to int) (Track, error) {
	if err := s.requireOwnership(ctx, artist, Resource{Kind: ResourceTrack, AlbumID: albumID, TrackID: trackID}); err != nil {
		return Track{}, err
	}
	var moved Track
	err := s.store.WithAlbumLock(ctx, artist.ID, albumID, func(tx AlbumTx) error {
		count, err := tx.CountTracks(ctx)
		if err != nil {
			return err
		}
		if to < 1 || to > count {
			return apperr.Validation("invalid track_number", map[string]string{
				"track_number": fmt.Sprintf("must be between 1 and %d", count),
			})
		}
		from, err := tx.TrackNumber(ctx, trackID)
		if err != nil {
			return err
		}
		switch {
		case to < from:
			err = tx.ShiftTracks(ctx, to, from-1, 1)
		case to > from:
			err = tx.ShiftTracks(ctx, from+1, to, -1)
		}
		if err != nil {
			return err
		}
		moved, err = tx.SetTrackNumber(ctx, trackID, to)
		return err
	})
	if err != nil {
		return Track{}, scoped(err, ResourceTrack)
	}
	s.events.Publish(ctx, realtime.Event{
		Type: realtime.EventTrackMoved, ArtistID: artist.ID, AlbumID: albumID, TrackID: trackID,
	})
	return moved, nil
}

// DeleteTrack removes a track and closes the gap: every later track moves up by one, in the same
// transaction as the delete.
func (s *Service) DeleteTrack(ctx context.Context, artist Artist, albumID, trackID string) error {
	if err := s.requireOwnership(ctx, artist, Resource{Kind: ResourceTrack, AlbumID: albumID, TrackID: trackID}); err != nil {
		return err
	}
	err := s.store.WithAlbumLock(ctx, artist.ID, albumID, func(tx AlbumTx) error {
		n, err := tx.DeleteTrack(ctx, trackID)
		if err != nil {
			return err
		}
		return tx.ShiftTracks(ctx, n+1, -1, -1)
	})
	if err != nil {
		return scoped(err, ResourceTrack)
	}
	s.log.Info("track deleted", "track_id", trackID, "album_id", albumID)
	s.events.Publish(ctx, realtime.Event{
		Type: realtime.EventTrackDeleted, ArtistID: artist.ID, AlbumID: albumID, TrackID: trackID,
	})
	return nil
}
