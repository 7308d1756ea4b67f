package catalog

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

var errTracklistMismatch = errors.New("must equal the number of entries in tracklist")

// Validate checks an album payload. On create the name is mandatory; on update every field is optional
// but must be well formed when present. Whenever tracklist and total_tracks arrive together their
// lengths must agree.
func (in AlbumInput) Validate(create bool) error {
	nameRules := []validation.Rule{validation.NilOrNotEmpty, validation.Length(1, 255)}
	if create {
		nameRules = append([]validation.Rule{validation.Required}, nameRules...)
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules...),
		validation.Field(&in.ReleaseYear, validation.Min(1900), validation.Max(9999)),
		validation.Field(&in.Genre, validation.Length(0, 100)),
		validation.Field(&in.PhotoURL, is.URL),
		validation.Field(&in.TotalTracks, validation.Min(0), validation.Max(math.MaxInt32)),
	)
	if err != nil {
		return apperr.FromValidation(err)
	}
	if in.Tracklist != nil && in.TotalTracks != nil && len(*in.Tracklist) != *in.TotalTracks {
		return apperr.FromValidation(validation.Errors{"total_tracks": errTracklistMismatch})
	}
	return nil
}

func (in TrackInput) Validate(create bool) error {
	titleRules := []validation.Rule{validation.NilOrNotEmpty, validation.Length(1, 255)}
	genreRules := []validation.Rule{validation.In(trackGenres...)}
	if create {
		titleRules = append([]validation.Rule{validation.Required}, titleRules...)
		genreRules = append([]validation.Rule{validation.Required}, genreRules...)
	}
	return apperr.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Title, titleRules...),
		validation.Field(&in.Genre, genreRules...),
		validation.Field(&in.ReleaseDate, validation.Date("2006-01-02")),
		validation.Field(&in.CoverPage, is.URL),
	))
}

func (in ArtistInput) Validate(create bool) error {
	nameRules := []validation.Rule{validation.NilOrNotEmpty, validation.Length(1, 255)}
	if create {
		nameRules = append([]validation.Rule{validation.Required}, nameRules...)
	}
	return apperr.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, nameRules...),
		validation.Field(&in.Nationality, validation.Length(0, 100)),
		validation.Field(&in.FirstReleaseYear, validation.Min(0), validation.Max(9999)),
		validation.Field(&in.PhotoURL, is.URL),
	))
}

// Validate only checks presence; the upper bound depends on the album and is enforced under its lock.
func (in MoveInput) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.TrackNumber, validation.NotNil),
	))
}
