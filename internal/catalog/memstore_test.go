package catalog

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory AlbumStore. WithAlbumLock holds the store mutex for the whole callback
// and restores the track table when the callback fails, which is enough to stand in for a
// transaction in tests.
type memStore struct {
	mu      sync.Mutex
	artists map[string]Artist
	albums  map[string]Album
	tracks  map[string]Track
}

func newMemStore() *memStore {
	return &memStore{
		artists: map[string]Artist{},
		albums:  map[string]Album{},
		tracks:  map[string]Track{},
	}
}

func (m *memStore) addArtist(userID, name string) Artist {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := Artist{ID: uuid.NewString(), UserID: userID, Name: name, CreatedAt: time.Now()}
	m.artists[a.ID] = a
	return a
}

func (m *memStore) trackNumbers(albumID string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, t := range m.tracks {
		if t.AlbumID == albumID {
			out = append(out, t.TrackNumber)
		}
	}
	sort.Ints(out)
	return out
}

func (m *memStore) ArtistByUserID(_ context.Context, userID string) (Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.artists {
		if a.UserID == userID {
			return a, nil
		}
	}
	return Artist{}, ErrNotFound
}

func (m *memStore) ListAlbums(_ context.Context, artistID string) ([]Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Album{}
	for _, a := range m.albums {
		if a.ArtistID == artistID {
			out = append(out, m.withCount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) withCount(a Album) Album {
	a.TrackCount = 0
	for _, t := range m.tracks {
		if t.AlbumID == a.ID {
			a.TrackCount++
		}
	}
	return a
}

func (m *memStore) GetAlbum(_ context.Context, artistID, albumID string) (Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[albumID]
	if !ok || a.ArtistID != artistID {
		return Album{}, ErrNotFound
	}
	return m.withCount(a), nil
}

func applyAlbum(a *Album, in AlbumInput) {
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.ReleaseYear != nil {
		a.ReleaseYear = *in.ReleaseYear
	}
	if in.Genre != nil {
		a.Genre = *in.Genre
	}
	if in.PhotoURL != nil {
		a.PhotoURL = *in.PhotoURL
	}
	if in.Tracklist != nil {
		a.Tracklist = append([]string{}, *in.Tracklist...)
	}
	if in.TotalTracks != nil {
		a.TotalTracks = *in.TotalTracks
	}
	if in.TotalDuration != nil {
		a.TotalDuration = *in.TotalDuration
	}
}

func (m *memStore) InsertAlbum(_ context.Context, artistID string, in AlbumInput) (Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	a := Album{ID: uuid.NewString(), ArtistID: artistID, Tracklist: []string{}, CreatedAt: now, UpdatedAt: now}
	applyAlbum(&a, in)
	m.albums[a.ID] = a
	return a, nil
}

func (m *memStore) UpdateAlbum(_ context.Context, artistID, albumID string, in AlbumInput) (Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[albumID]
	if !ok || a.ArtistID != artistID {
		return Album{}, ErrNotFound
	}
	applyAlbum(&a, in)
	a.UpdatedAt = time.Now()
	m.albums[albumID] = a
	return m.withCount(a), nil
}

func (m *memStore) DeleteAlbum(_ context.Context, artistID, albumID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[albumID]
	if !ok || a.ArtistID != artistID {
		return ErrNotFound
	}
	delete(m.albums, albumID)
	for id, t := range m.tracks {
		if t.AlbumID == albumID {
			delete(m.tracks, id)
		}
	}
	return nil
}

func (m *memStore) AlbumOwner(_ context.Context, albumID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[albumID]
	if !ok {
		return "", ErrNotFound
	}
	return a.ArtistID, nil
}

func (m *memStore) TrackOwner(_ context.Context, albumID, trackID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[trackID]
	if !ok || t.AlbumID != albumID {
		return "", ErrNotFound
	}
	return m.albums[albumID].ArtistID, nil
}

func (m *memStore) ListTracks(_ context.Context, albumID string) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Track{}
	for _, t := range m.tracks {
		if t.AlbumID == albumID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackNumber < out[j].TrackNumber })
	return out, nil
}

func (m *memStore) GetTrack(_ context.Context, albumID, trackID string) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[trackID]
	if !ok || t.AlbumID != albumID {
		return Track{}, ErrNotFound
	}
	return t, nil
}

func (m *memStore) WithAlbumLock(ctx context.Context, artistID, albumID string, fn func(AlbumTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[albumID]
	if !ok || a.ArtistID != artistID {
		return ErrNotFound
	}
	snapshot := maps.Clone(m.tracks)
	if err := fn(&memAlbumTx{m: m, albumID: albumID}); err != nil {
		m.tracks = snapshot
		return err
	}
	return nil
}

type memAlbumTx struct {
	m       *memStore
	albumID string
}

func (t *memAlbumTx) MaxTrackNumber(context.Context) (int, error) {
	last := 0
	for _, tr := range t.m.tracks {
		if tr.AlbumID == t.albumID && tr.TrackNumber > last {
			last = tr.TrackNumber
		}
	}
	return last, nil
}

func (t *memAlbumTx) CountTracks(context.Context) (int, error) {
	n := 0
	for _, tr := range t.m.tracks {
		if tr.AlbumID == t.albumID {
			n++
		}
	}
	return n, nil
}

func (t *memAlbumTx) TrackNumber(_ context.Context, trackID string) (int, error) {
	tr, ok := t.m.tracks[trackID]
	if !ok || tr.AlbumID != t.albumID {
		return 0, ErrNotFound
	}
	return tr.TrackNumber, nil
}

func applyTrack(tr *Track, in TrackInput) {
	if in.Title != nil {
		tr.Title = *in.Title
	}
	if in.Genre != nil {
		tr.Genre = *in.Genre
	}
	if in.Duration != nil {
		tr.Duration = *in.Duration
	}
	if in.ReleaseDate != nil {
		tr.ReleaseDate = *in.ReleaseDate
	}
	if in.CoverPage != nil {
		tr.CoverPage = *in.CoverPage
	}
}

func (t *memAlbumTx) InsertTrack(_ context.Context, in TrackInput, number int) (Track, error) {
	now := time.Now()
	tr := Track{ID: uuid.NewString(), AlbumID: t.albumID, TrackNumber: number, CreatedAt: now, UpdatedAt: now}
	applyTrack(&tr, in)
	t.m.tracks[tr.ID] = tr
	return tr, nil
}

func (t *memAlbumTx) UpdateTrack(_ context.Context, trackID string, in TrackInput) (Track, error) {
	tr, ok := t.m.tracks[trackID]
	if !ok || tr.AlbumID != t.albumID {
		return Track{}, ErrNotFound
	}
	applyTrack(&tr, in)
	t.m.tracks[trackID] = tr
	return tr, nil
}

func (t *memAlbumTx) DeleteTrack(_ context.Context, trackID string) (int, error) {
	tr, ok := t.m.tracks[trackID]
	if !ok || tr.AlbumID != t.albumID {
		return 0, ErrNotFound
	}
	delete(t.m.tracks, trackID)
	return tr.TrackNumber, nil
}

func (t *memAlbumTx) ShiftTracks(_ context.Context, from, to, delta int) error {
	for id, tr := range t.m.tracks {
		if tr.AlbumID != t.albumID || tr.TrackNumber < from || (to >= 0 && tr.TrackNumber > to) {
			continue
		}
		tr.TrackNumber += delta
		t.m.tracks[id] = tr
	}
	return nil
}

func (t *memAlbumTx) SetTrackNumber(_ context.Context, trackID string, number int) (Track, error) {
	tr, ok := t.m.tracks[trackID]
	if !ok || tr.AlbumID != t.albumID {
		return Track{}, ErrNotFound
	}
	tr.TrackNumber = number
	t.m.tracks[trackID] = tr
	return tr, nil
}
