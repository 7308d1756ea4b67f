package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

var csvHeader = []string{"name", "bio", "nationality"}

// WriteArtistsCSV writes one row per artist under a name,bio,nationality header.
func WriteArtistsCSV(w io.Writer, artists []Artist) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range artists {
		if err := writer.Write([]string{a.Name, a.Bio, a.Nationality}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadArtistsCSV parses an import file. The header must name the three columns in any order;
// every data row needs a name. Errors carry the offending line number.
func ReadArtistsCSV(r io.Reader) ([]ArtistInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Validation("empty CSV file", nil)
	}
	if err != nil {
		return nil, csvError(err)
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, col := range csvHeader {
		if _, ok := idx[col]; !ok {
			return nil, apperr.Validation("invalid CSV header", map[string]string{
				"header": fmt.Sprintf("missing column %q, want %s", col, strings.Join(csvHeader, ",")),
			})
		}
	}

	var rows []ArtistInput
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := reader.FieldPos(0)
		name := strings.TrimSpace(record[idx["name"]])
		bio := strings.TrimSpace(record[idx["bio"]])
		nationality := strings.TrimSpace(record[idx["nationality"]])

		in := ArtistInput{Name: &name, Bio: &bio, Nationality: &nationality}
		if err := in.Validate(true); err != nil {
			var e *apperr.Error
			if errors.As(err, &e) {
				e.Message = fmt.Sprintf("invalid row on line %d", line)
			}
			return nil, err
		}
		rows = append(rows, in)
	}
	if len(rows) == 0 {
		return nil, apperr.Validation("CSV file has no artist rows", nil)
	}
	return rows, nil
}

func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return apperr.Validation(fmt.Sprintf("malformed CSV on line %d", perr.Line), map[string]string{"csv": perr.Err.Error()})
	}
	return apperr.Validation("malformed CSV", map[string]string{"csv": err.Error()})
}
