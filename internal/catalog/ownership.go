package catalog

import (
	"context"
	"errors"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

type ResourceKind int

const (
	ResourceAlbum ResourceKind = iota
	ResourceTrack
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceAlbum:
		return "album"
	case ResourceTrack:
		return "track"
	}
	return "resource"
}

// Resource names an artist-scoped row. Tracks are addressed through their album.
type Resource struct {
	Kind    ResourceKind
	AlbumID string
	TrackID string
}

func notFound(kind ResourceKind) error {
	return apperr.NotFound(kind.String() + " not found")
}

// requireOwnership succeeds only when res exists and belongs to artist, following tracks to their
// album's artist. A foreign resource is indistinguishable from a missing one.
func (s *Service) requireOwnership(ctx context.Context, artist Artist, res Resource) error {
	var (
		owner string
		err   error
	)
	switch res.Kind {
	case ResourceAlbum:
		owner, err = s.store.AlbumOwner(ctx, res.AlbumID)
	case ResourceTrack:
		owner, err = s.store.TrackOwner(ctx, res.AlbumID, res.TrackID)
	default:
		return notFound(res.Kind)
	}
	if errors.Is(err, ErrNotFound) {
		return notFound(res.Kind)
	}
	if err != nil {
		return err
	}
	if owner != artist.ID {
		return notFound(res.Kind)
	}
	return nil
}
