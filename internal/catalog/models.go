package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Genre string

const (
	GenreRnB     Genre = "rnb"
	GenreCountry Genre = "country"
	GenreClassic Genre = "classic"
	GenreRock    Genre = "rock"
	GenreJazz    Genre = "jazz"
	GenreMix     Genre = "mix"
)

var trackGenres = []any{GenreRnB, GenreCountry, GenreClassic, GenreRock, GenreJazz, GenreMix}

// Duration is a whole number of seconds, written as "HH:MM:SS" on the wire.
type Duration int

// MaxDuration is the largest duration the INT columns can hold.
const MaxDuration = Duration(math.MaxInt32)

func (d Duration) String() string {
	s := int(d)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "HH:MM:SS", "MM:SS" or a plain number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("duration must not be negative")
		}
		if n > int(MaxDuration) {
			return fmt.Errorf("duration must not exceed %d seconds", MaxDuration)
		}
		*d = Duration(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"HH:MM:SS\"")
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func ParseDuration(s string) (Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q, want HH:MM:SS", s)
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q, want HH:MM:SS", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q, minutes and seconds must be below 60", s)
		}
		total = total*60 + n
		if total > int(MaxDuration) {
			return 0, fmt.Errorf("invalid duration %q, must not exceed %s", s, MaxDuration)
		}
	}
	return Duration(total), nil
}

type Artist struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id,omitempty"`
	Name             string    `json:"name"`
	Bio              string    `json:"bio"`
	Nationality      string    `json:"nationality"`
	FirstReleaseYear int       `json:"first_release_year"`
	PhotoURL         string    `json:"photo_url"`
	AlbumCount       int       `json:"album_count"`
	TrackCount       int       `json:"track_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Album struct {
	ID            string    `json:"id"`
	ArtistID      string    `json:"artist_id"`
	Name          string    `json:"name"`
	ReleaseYear   int       `json:"release_year"`
	Genre         string    `json:"genre"`
	PhotoURL      string    `json:"photo_url"`
	Tracklist     []string  `json:"tracklist"`
	TotalTracks   int       `json:"total_tracks"`
	TotalDuration Duration  `json:"total_duration"`
	TrackCount    int       `json:"track_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Track struct {
	ID          string    `json:"id"`
	AlbumID     string    `json:"album_id"`
	Title       string    `json:"title"`
	Genre       Genre     `json:"genre"`
	Duration    Duration  `json:"duration"`
	ReleaseDate string    `json:"release_date,omitempty"`
	CoverPage   string    `json:"cover_page"`
	TrackNumber int       `json:"track_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AlbumInput is used for both create and update; nil fields were not supplied.
type AlbumInput struct {
	Name          *string   `json:"name"`
	ReleaseYear   *int      `json:"release_year"`
	Genre         *string   `json:"genre"`
	PhotoURL      *string   `json:"photo_url"`
	Tracklist     *[]string `json:"tracklist"`
	TotalTracks   *int      `json:"total_tracks"`
	TotalDuration *Duration `json:"total_duration"`
}

// TrackInput is used for both create and update; nil fields were not supplied.
// The track number is never taken from the client.
type TrackInput struct {
	Title       *string   `json:"title"`
	Genre       *Genre    `json:"genre"`
	Duration    *Duration `json:"duration"`
	ReleaseDate *string   `json:"release_date"`
	CoverPage   *string   `json:"cover_page"`
}

type ArtistInput struct {
	Name             *string `json:"name"`
	Bio              *string `json:"bio"`
	Nationality      *string `json:"nationality"`
	FirstReleaseYear *int    `json:"first_release_year"`
	PhotoURL         *string `json:"photo_url"`
}

type MoveInput struct {
	TrackNumber *int `json:"track_number"`
}
