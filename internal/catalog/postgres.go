package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/luzza07/artist-management-backend/internal/database"
)

const albumCols = `a.id, a.artist_id, a.name, a.release_year, a.genre, a.photo_url, a.tracklist,
       a.total_tracks, a.total_duration_s,
       (SELECT COUNT(*) FROM tracks t WHERE t.album_id = a.id)::int,
       a.created_at, a.updated_at`

const trackCols = `t.id, t.album_id, t.title, t.genre, t.duration_s,
       COALESCE(to_char(t.release_date, 'YYYY-MM-DD'), ''), t.cover_page, t.track_number,
       t.created_at, t.updated_at`

const artistCols = `ar.id, COALESCE(ar.user_id::text, ''), ar.name, ar.bio, ar.nationality,
       ar.first_release_year, ar.photo_url,
       (SELECT COUNT(*) FROM albums al WHERE al.artist_id = ar.id)::int,
       (SELECT COUNT(*) FROM tracks t JOIN albums al ON al.id = t.album_id WHERE al.artist_id = ar.id)::int,
       ar.created_at, ar.updated_at`

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanAlbum(row pgx.Row) (Album, error) {
	var a Album
	var duration int
	err := row.Scan(&a.ID, &a.ArtistID, &a.Name, &a.ReleaseYear, &a.Genre, &a.PhotoURL, &a.Tracklist,
		&a.TotalTracks, &duration, &a.TrackCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Album{}, ErrNotFound
	}
	if err != nil {
		return Album{}, err
	}
	a.TotalDuration = Duration(duration)
	if a.Tracklist == nil {
		a.Tracklist = []string{}
	}
	return a, nil
}

func scanTrack(row pgx.Row) (Track, error) {
	var t Track
	var genre string
	var duration int
	err := row.Scan(&t.ID, &t.AlbumID, &t.Title, &genre, &duration, &t.ReleaseDate, &t.CoverPage,
		&t.TrackNumber, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Track{}, ErrNotFound
	}
	if err != nil {
		return Track{}, err
	}
	t.Genre = Genre(genre)
	t.Duration = Duration(duration)
	return t, nil
}

func scanArtist(row pgx.Row) (Artist, error) {
	var a Artist
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Bio, &a.Nationality, &a.FirstReleaseYear, &a.PhotoURL,
		&a.AlbumCount, &a.TrackCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Artist{}, ErrNotFound
	}
	return a, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func seconds(d *Duration) *int {
	if d == nil {
		return nil
	}
	n := int(*d)
	return &n
}

func genreText(g *Genre) *string {
	if g == nil {
		return nil
	}
	s := string(*g)
	return &s
}

// --- artists ---

func (s *PostgresStore) ArtistByUserID(ctx context.Context, userID string) (Artist, error) {
	a, err := scanArtist(s.db.QueryRow(ctx, `SELECT `+artistCols+` FROM artist ar WHERE ar.user_id = $1`, userID))
	if err != nil {
		return Artist{}, fmt.Errorf("artist by user: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) GetArtist(ctx context.Context, id string) (Artist, error) {
	a, err := scanArtist(s.db.QueryRow(ctx, `SELECT `+artistCols+` FROM artist ar WHERE ar.id = $1`, id))
	if err != nil {
		return Artist{}, fmt.Errorf("get artist: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListArtists(ctx context.Context, limit, offset int) ([]Artist, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM artist`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count artists: %w", err)
	}
	rows, err := s.db.Query(ctx, `
        SELECT `+artistCols+`
        FROM artist ar
        ORDER BY ar.created_at DESC, ar.id
        LIMIT $1 OFFSET $2
    `, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list artists: %w", err)
	}
	artists, err := collect(rows, scanArtist)
	if err != nil {
		return nil, 0, fmt.Errorf("list artists: %w", err)
	}
	return artists, total, nil
}

func (s *PostgresStore) AllArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.Query(ctx, `SELECT `+artistCols+` FROM artist ar ORDER BY ar.name, ar.id`)
	if err != nil {
		return nil, fmt.Errorf("all artists: %w", err)
	}
	return collect(rows, scanArtist)
}

func (s *PostgresStore) UpdateArtist(ctx context.Context, id string, in ArtistInput) (Artist, error) {
	a, err := scanArtist(s.db.QueryRow(ctx, `
        WITH ar AS (
            UPDATE artist SET
                name               = COALESCE($2::text, name),
                bio                = COALESCE($3::text, bio),
                nationality        = COALESCE($4::text, nationality),
                first_release_year = COALESCE($5::int, first_release_year),
                photo_url          = COALESCE($6::text, photo_url),
                updated_at         = now()
            WHERE id = $1
            RETURNING *
        )
        SELECT `+artistCols+` FROM ar
    `, id, in.Name, in.Bio, in.Nationality, in.FirstReleaseYear, in.PhotoURL))
	if err != nil {
		return Artist{}, fmt.Errorf("update artist: %w", err)
	}
	return a, nil
}

// DeleteArtist removes the artist and, when it has one, the login account behind it.
func (s *PostgresStore) DeleteArtist(ctx context.Context, id string) error {
	return database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		var userID string
		err := tx.QueryRow(ctx, `DELETE FROM artist WHERE id = $1 RETURNING COALESCE(user_id::text, '')`, id).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete artist: %w", err)
		}
		if userID == "" {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("delete artist user: %w", err)
		}
		return nil
	})
}

// ImportArtists inserts all rows in one transaction; any failure leaves the table untouched.
func (s *PostgresStore) ImportArtists(ctx context.Context, rows []ArtistInput) (int, error) {
	err := database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		for i, in := range rows {
			_, err := tx.Exec(ctx, `
                INSERT INTO artist (name, bio, nationality)
                VALUES ($1, COALESCE($2::text, ''), COALESCE($3::text, ''))
            `, in.Name, in.Bio, in.Nationality)
			if err != nil {
				return fmt.Errorf("import artist row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *PostgresStore) ListArtistTracks(ctx context.Context, artistID string) ([]Track, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+trackCols+`
        FROM tracks t
        JOIN albums al ON al.id = t.album_id
        WHERE al.artist_id = $1
        ORDER BY al.created_at, al.id, t.track_number
    `, artistID)
	if err != nil {
		return nil, fmt.Errorf("list artist tracks: %w", err)
	}
	return collect(rows, scanTrack)
}

// --- albums ---

func (s *PostgresStore) ListAlbums(ctx context.Context, artistID string) ([]Album, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+albumCols+`
        FROM albums a
        WHERE a.artist_id = $1
        ORDER BY a.created_at DESC, a.id
    `, artistID)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return collect(rows, scanAlbum)
}

func (s *PostgresStore) GetAlbum(ctx context.Context, artistID, albumID string) (Album, error) {
	a, err := scanAlbum(s.db.QueryRow(ctx, `
        SELECT `+albumCols+`
        FROM albums a
        WHERE a.id = $1 AND a.artist_id = $2
    `, albumID, artistID))
	if err != nil {
		return Album{}, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) InsertAlbum(ctx context.Context, artistID string, in AlbumInput) (Album, error) {
	a, err := scanAlbum(s.db.QueryRow(ctx, `
        WITH a AS (
            INSERT INTO albums (artist_id, name, release_year, genre, photo_url, tracklist, total_tracks, total_duration_s)
            VALUES ($1, $2, COALESCE($3::int, 0), COALESCE($4::text, ''), COALESCE($5::text, ''),
                    COALESCE($6::text[], '{}'), COALESCE($7::int, 0), COALESCE($8::int, 0))
            RETURNING *
        )
        SELECT `+albumCols+` FROM a
    `, artistID, in.Name, in.ReleaseYear, in.Genre, in.PhotoURL, in.Tracklist, in.TotalTracks, seconds(in.TotalDuration)))
	if err != nil {
		return Album{}, fmt.Errorf("insert album: %w", err)
	}
	return a, nil
}

// UpdateAlbum changes only the supplied fields of an album owned by artistID.
func (s *PostgresStore) UpdateAlbum(ctx context.Context, artistID, albumID string, in AlbumInput) (Album, error) {
	a, err := scanAlbum(s.db.QueryRow(ctx, `
        WITH a AS (
            UPDATE albums SET
                name             = COALESCE($3::text, name),
                release_year     = COALESCE($4::int, release_year),
                genre            = COALESCE($5::text, genre),
                photo_url        = COALESCE($6::text, photo_url),
                tracklist        = COALESCE($7::text[], tracklist),
                total_tracks     = COALESCE($8::int, total_tracks),
                total_duration_s = COALESCE($9::int, total_duration_s),
                updated_at       = now()
            WHERE id = $1 AND artist_id = $2
            RETURNING *
        )
        SELECT `+albumCols+` FROM a
    `, albumID, artistID, in.Name, in.ReleaseYear, in.Genre, in.PhotoURL, in.Tracklist, in.TotalTracks,
		seconds(in.TotalDuration)))
	if err != nil {
		return Album{}, fmt.Errorf("update album: %w", err)
	}
	return a, nil
}

// DeleteAlbum removes an album owned by artistID; its tracks go with it through the foreign key.
func (s *PostgresStore) DeleteAlbum(ctx context.Context, artistID, albumID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM albums WHERE id = $1 AND artist_id = $2`, albumID, artistID)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AlbumOwner(ctx context.Context, albumID string) (string, error) {
	var artistID string
	err := s.db.QueryRow(ctx, `SELECT artist_id FROM albums WHERE id = $1`, albumID).Scan(&artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("album owner: %w", err)
	}
	return artistID, nil
}

func (s *PostgresStore) TrackOwner(ctx context.Context, albumID, trackID string) (string, error) {
	var artistID string
	err := s.db.QueryRow(ctx, `
        SELECT al.artist_id
        FROM tracks t
        JOIN albums al ON al.id = t.album_id
        WHERE t.id = $1 AND t.album_id = $2
    `, trackID, albumID).Scan(&artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("track owner: %w", err)
	}
	return artistID, nil
}

// --- tracks ---

func (s *PostgresStore) ListTracks(ctx context.Context, albumID string) ([]Track, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+trackCols+`
        FROM tracks t
        WHERE t.album_id = $1
        ORDER BY t.track_number
    `, albumID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return collect(rows, scanTrack)
}

func (s *PostgresStore) GetTrack(ctx context.Context, albumID, trackID string) (Track, error) {
	t, err := scanTrack(s.db.QueryRow(ctx, `
        SELECT `+trackCols+`
        FROM tracks t
        WHERE t.id = $1 AND t.album_id = $2
    `, trackID, albumID))
	if err != nil {
		return Track{}, fmt.Errorf("get track: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) WithAlbumLock(ctx context.Context, artistID, albumID string, fn func(AlbumTx) error) error {
	return database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `
            SELECT id FROM albums
            WHERE id = $1 AND artist_id = $2
            FOR UPDATE
        `, albumID, artistID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock album: %w", err)
		}
		return fn(&pgAlbumTx{tx: tx, albumID: albumID})
	})
}

type pgAlbumTx struct {
	tx      pgx.Tx
	albumID string
}

func (t *pgAlbumTx) MaxTrackNumber(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(MAX(track_number), 0)::int FROM tracks WHERE album_id = $1`, t.albumID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("max track number: %w", err)
	}
	return n, nil
}

func (t *pgAlbumTx) CountTracks(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*)::int FROM tracks WHERE album_id = $1`, t.albumID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return n, nil
}

func (t *pgAlbumTx) TrackNumber(ctx context.Context, trackID string) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT track_number FROM tracks WHERE id = $1 AND album_id = $2`, trackID, t.albumID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("track number: %w", err)
	}
	return n, nil
}

func (t *pgAlbumTx) InsertTrack(ctx context.Context, in TrackInput, number int) (Track, error) {
	tr, err := scanTrack(t.tx.QueryRow(ctx, `
        WITH t AS (
            INSERT INTO tracks (album_id, title, genre, duration_s, release_date, cover_page, track_number)
            VALUES ($1, $2, $3, COALESCE($4::int, 0), NULLIF($5::text, '')::date, COALESCE($6::text, ''), $7)
            RETURNING *
        )
        SELECT `+trackCols+` FROM t
    `, t.albumID, in.Title, genreText(in.Genre), seconds(in.Duration), in.ReleaseDate, in.CoverPage, number))
	if err != nil {
		return Track{}, fmt.Errorf("insert track: %w", err)
	}
	return tr, nil
}

func (t *pgAlbumTx) UpdateTrack(ctx context.Context, trackID string, in TrackInput) (Track, error) {
	tr, err := scanTrack(t.tx.QueryRow(ctx, `
        WITH t AS (
            UPDATE tracks SET
                title        = COALESCE($3::text, title),
                genre        = COALESCE($4::text, genre),
                duration_s   = COALESCE($5::int, duration_s),
                release_date = CASE WHEN $6::text IS NULL THEN release_date ELSE NULLIF($6::text, '')::date END,
                cover_page   = COALESCE($7::text, cover_page),
                updated_at   = now()
            WHERE id = $1 AND album_id = $2
            RETURNING *
        )
        SELECT `+trackCols+` FROM t
    `, trackID, t.albumID, in.Title, genreText(in.Genre), seconds(in.Duration), in.ReleaseDate, in.CoverPage))
	if err != nil {
		return Track{}, fmt.Errorf("update track: %w", err)
	}
	return tr, nil
}

func (t *pgAlbumTx) DeleteTrack(ctx context.Context, trackID string) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `
        DELETE FROM tracks
        WHERE id = $1 AND album_id = $2
        RETURNING track_number
    `, trackID, t.albumID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("delete track: %w", err)
	}
	return n, nil
}

func (t *pgAlbumTx) ShiftTracks(ctx context.Context, from, to, delta int) error {
	_, err := t.tx.Exec(ctx, `
        UPDATE tracks
        SET track_number = track_number + $2, updated_at = now()
        WHERE album_id = $1 AND track_number >= $3 AND ($4::int < 0 OR track_number <= $4::int)
    `, t.albumID, delta, from, to)
	if err != nil {
		return fmt.Errorf("shift tracks: %w", err)
	}
	return nil
}

func (t *pgAlbumTx) SetTrackNumber(ctx context.Context, trackID string, number int) (Track, error) {
	tr, err := scanTrack(t.tx.QueryRow(ctx, `
        WITH t AS (
            UPDATE tracks SET track_number = $3, updated_at = now()
            WHERE id = $1 AND album_id = $2
            RETURNING *
        )
        SELECT `+trackCols+` FROM t
    `, trackID, t.albumID, number))
	if err != nil {
		return Track{}, fmt.Errorf("set track number: %w", err)
	}
	return tr, nil
}
