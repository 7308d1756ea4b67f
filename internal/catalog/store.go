package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores for rows that are absent or outside the caller's scope.
var ErrNotFound = errors.New("catalog: not found")

// AlbumStore is what the album and track operations need from storage. Every mutating method is
// scoped by its owner so a foreign id behaves exactly like a missing one.
type AlbumStore interface {
	ArtistByUserID(ctx context.Context, userID string) (Artist, error)

	ListAlbums(ctx context.Context, artistID string) ([]Album, error)
	GetAlbum(ctx context.Context, artistID, albumID string) (Album, error)
	InsertAlbum(ctx context.Context, artistID string, in AlbumInput) (Album, error)
	UpdateAlbum(ctx context.Context, artistID, albumID string, in AlbumInput) (Album, error)
	DeleteAlbum(ctx context.Context, artistID, albumID string) error

	AlbumOwner(ctx context.Context, albumID string) (string, error)
	TrackOwner(ctx context.Context, albumID, trackID string) (string, error)
	ListTracks(ctx context.Context, albumID string) ([]Track, error)
	GetTrack(ctx context.Context, albumID, trackID string) (Track, error)

	// WithAlbumLock runs fn in one transaction holding the row lock of the album, which must belong
	// to artistID. All track numbering changes go through it.
	WithAlbumLock(ctx context.Context, artistID, albumID string, fn func(AlbumTx) error) error
}

// AlbumTx operates on the tracks of the single album locked by WithAlbumLock.
type AlbumTx interface {
	MaxTrackNumber(ctx context.Context) (int, error)
	CountTracks(ctx context.Context) (int, error)
	TrackNumber(ctx context.Context, trackID string) (int, error)
	InsertTrack(ctx context.Context, in TrackInput, number int) (Track, error)
	UpdateTrack(ctx context.Context, trackID string, in TrackInput) (Track, error)
	DeleteTrack(ctx context.Context, trackID string) (int, error)
	// ShiftTracks adds delta to every track number in [from, to]; to < 0 means no upper bound.
	ShiftTracks(ctx context.Context, from, to, delta int) error
	SetTrackNumber(ctx context.Context, trackID string, number int) (Track, error)
}

// ArtistStore backs artist management and the CSV import/export.
type ArtistStore interface {
	ArtistByUserID(ctx context.Context, userID string) (Artist, error)
	GetArtist(ctx context.Context, id string) (Artist, error)
	ListArtists(ctx context.Context, limit, offset int) ([]Artist, int, error)
	AllArtists(ctx context.Context) ([]Artist, error)
	UpdateArtist(ctx context.Context, id string, in ArtistInput) (Artist, error)
	DeleteArtist(ctx context.Context, id string) error
	ImportArtists(ctx context.Context, rows []ArtistInput) (int, error)
	ListArtistTracks(ctx context.Context, artistID string) ([]Track, error)
}
