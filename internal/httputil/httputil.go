package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteErr renders err according to its apperr kind. Anything unclassified is logged and
// answered with a generic 500 so storage details never reach the client.
func WriteErr(w http.ResponseWriter, logger *log.Logger, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindInternal {
		if logger != nil {
			logger.Error("request failed", "err", err)
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	body := map[string]any{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	WriteJSON(w, e.Kind.Status(), body)
}

// DecodeJSON reads a single JSON document into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body", map[string]string{"body": err.Error()})
	}
	return nil
}

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// ParsePage reads page and page_size from the query string, clamping page_size to MaxPageSize.
func ParsePage(r *http.Request) (Page, error) {
	p := Page{Number: 1, Size: DefaultPageSize}
	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperr.Validation("invalid page", map[string]string{"page": "must be a positive integer"})
		}
		p.Number = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperr.Validation("invalid page_size", map[string]string{"page_size": "must be a positive integer"})
		}
		p.Size = min(n, MaxPageSize)
	}
	return p, nil
}

type PageResponse[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

func NewPageResponse[T any](p Page, total int, items []T) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Count: total, Page: p.Number, PageSize: p.Size, Results: items}
}
