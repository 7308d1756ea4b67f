package catalog

import (
	"io"
	"mime"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/httputil"
)

const MaxImportBytes = 5 << 20

type Handler struct {
	svc     *Service
	artists *Artists
	log     *log.Logger
}

func NewHandler(svc *Service, artists *Artists, logger *log.Logger) *Handler {
	return &Handler{svc: svc, artists: artists, log: logger}
}

// RegisterAlbumRoutes serves an artist's own albums and tracks. The caller must already be
// authenticated as an artist.
func (h *Handler) RegisterAlbumRoutes(r chi.Router) {
	r.Get("/", h.handleListAlbums)
	r.Post("/", h.handleCreateAlbum)
	r.Route("/{albumID}", func(r chi.Router) {
		r.Get("/", h.handleGetAlbum)
		r.Put("/", h.handleUpdateAlbum)
		r.Patch("/", h.handleUpdateAlbum)
		r.Delete("/", h.handleDeleteAlbum)

		r.Get("/tracks", h.handleListTracks)
		r.Post("/tracks", h.handleCreateTrack)
		r.Get("/tracks/{trackID}", h.handleGetTrack)
		r.Put("/tracks/{trackID}", h.handleUpdateTrack)
		r.Patch("/tracks/{trackID}", h.handleUpdateTrack)
		r.Delete("/tracks/{trackID}", h.handleDeleteTrack)
		r.Put("/tracks/{trackID}/position", h.handleMoveTrack)
	})
}

// RegisterProfileRoutes serves the calling artist's own profile.
func (h *Handler) RegisterProfileRoutes(r chi.Router) {
	r.Get("/", h.handleGetProfile)
	r.Put("/", h.handleUpdateProfile)
	r.Patch("/", h.handleUpdateProfile)
}

// RegisterArtistAdminRoutes serves artist management for administrators.
func (h *Handler) RegisterArtistAdminRoutes(r chi.Router) {
	r.Get("/", h.handleListArtists)
	r.Get("/export", h.handleExportArtists)
	r.Post("/import", h.handleImportArtists)
	r.Get("/{artistID}", h.handleGetArtist)
	r.Put("/{artistID}", h.handleUpdateArtist)
	r.Patch("/{artistID}", h.handleUpdateArtist)
	r.Delete("/{artistID}", h.handleDeleteArtist)
	r.Get("/{artistID}/tracks", h.handleArtistTracks)
}

// pathID reads a UUID path parameter. Anything that is not a UUID cannot name a row, so it is
// reported the same way as a missing one.
func pathID(r *http.Request, name string, kind string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", apperr.NotFound(kind + " not found")
	}
	return id.String(), nil
}

func (h *Handler) currentArtist(r *http.Request) (Artist, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return Artist{}, apperr.Authentication("authentication required")
	}
	return h.svc.ArtistForUser(r.Context(), id.UserID)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	httputil.WriteErr(w, h.log, err)
}

// --- albums ---

func (h *Handler) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albums, err := h.svc.ListAlbums(r.Context(), artist)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"albums": albums})
}

func (h *Handler) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var in AlbumInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	album, err := h.svc.CreateAlbum(r.Context(), artist, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, album)
}

func (h *Handler) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		h.fail(w, err)
		return
	}
	album, err := h.svc.GetAlbum(r.Context(), artist, albumID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, album)
}

func (h *Handler) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		h.fail(w, err)
		return
	}
	var in AlbumInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	album, err := h.svc.UpdateAlbum(r.Context(), artist, albumID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, album)
}

func (h *Handler) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.svc.DeleteAlbum(r.Context(), artist, albumID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- tracks ---

func (h *Handler) handleListTracks(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		h.fail(w, err)
		return
	}
	tracks, err := h.svc.ListTracks(r.Context(), artist, albumID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (h *Handler) handleCreateTrack(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		h.fail(w, err)
		return
	}
	var in TrackInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	track, err := h.svc.CreateTrack(r.Context(), artist, albumID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, track)
}

func (h *Handler) trackIDs(r *http.Request) (string, string, error) {
	albumID, err := pathID(r, "albumID", "album")
	if err != nil {
		return "", "", err
	}
	trackID, err := pathID(r, "trackID", "track")
	if err != nil {
		return "", "", err
	}
	return albumID, trackID, nil
}

func (h *Handler) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, trackID, err := h.trackIDs(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	track, err := h.svc.GetTrack(r.Context(), artist, albumID, trackID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, track)
}

func (h *Handler) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, trackID, err := h.trackIDs(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var in TrackInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	track, err := h.svc.UpdateTrack(r.Context(), artist, albumID, trackID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, track)
}

func (h *Handler) handleMoveTrack(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, trackID, err := h.trackIDs(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var in MoveInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		h.fail(w, err)
		return
	}
	track, err := h.svc.MoveTrack(r.Context(), artist, albumID, trackID, *in.TrackNumber)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, track)
}

func (h *Handler) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	artist, err := h.currentArtist(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	albumID, trackID, err := h.trackIDs(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.svc.DeleteTrack(r.Context(), artist, albumID, trackID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- profile ---

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	artist, err := h.artists.Profile(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, artist)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var in ArtistInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	artist, err := h.artists.UpdateProfile(r.Context(), id.UserID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, artist)
}

// --- artist administration ---

func (h *Handler) handleListArtists(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParsePage(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	artists, total, err := h.artists.List(r.Context(), page.Size, page.Offset())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPageResponse(page, total, artists))
}

func (h *Handler) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "artistID", "artist")
	if err != nil {
		h.fail(w, err)
		return
	}
	artist, err := h.artists.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, artist)
}

func (h *Handler) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "artistID", "artist")
	if err != nil {
		h.fail(w, err)
		return
	}
	var in ArtistInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	artist, err := h.artists.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, artist)
}

func (h *Handler) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "artistID", "artist")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.artists.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleArtistTracks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "artistID", "artist")
	if err != nil {
		h.fail(w, err)
		return
	}
	tracks, err := h.artists.Tracks(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"artist_id": id, "tracks": tracks})
}

func (h *Handler) handleExportArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.All(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="artists.csv"`)
	if err := WriteArtistsCSV(w, artists); err != nil {
		// status is already out
		h.log.Error("export artists", "err", err)
	}
}

// handleImportArtists accepts either a multipart upload in the "file" field or a raw CSV body.
func (h *Handler) handleImportArtists(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = http.MaxBytesReader(w, r.Body, MaxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(MaxImportBytes); err != nil {
			h.fail(w, apperr.Validation("invalid upload", map[string]string{"file": err.Error()}))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			h.fail(w, apperr.Validation("missing file", map[string]string{"file": "a CSV file is required"}))
			return
		}
		defer file.Close()
		src = file
	}

	n, err := h.artists.Import(r.Context(), src)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "artists imported successfully",
		"imported": n,
	})
}
