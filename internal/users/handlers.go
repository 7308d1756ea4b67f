package users

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/httputil"
)

type Handler struct {
	svc *Service
	log *log.Logger
}

func NewHandler(svc *Service, logger *log.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

// RegisterApprovalRoutes serves the approval workflow. Callers must be super admins.
func (h *Handler) RegisterApprovalRoutes(r chi.Router) {
	r.Post("/approve-user", h.handleApproveUser)
	r.Get("/pending-users", h.handlePendingUsers)
	r.Get("/approval-requests", h.handlePendingRequests)
	r.Post("/approval-requests/{requestID}/approve", h.handleApproveRequest)
}

// RegisterUserRoutes serves account management. Callers must be super admins.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Get("/", h.handleListUsers)
	r.Post("/", h.handleCreateUser)
	r.Get("/{userID}", h.handleGetUser)
	r.Put("/{userID}", h.handleUpdateUser)
	r.Patch("/{userID}", h.handleUpdateUser)
	r.Delete("/{userID}", h.handleDeleteUser)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	httputil.WriteErr(w, h.log, err)
}

func userID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperr.NotFound("not found")
	}
	return raw, nil
}

func caller(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperr.Authentication("authentication required")
	}
	return id, nil
}

// --- authentication ---

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	var requester *auth.Identity
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		requester = &id
	}
	res, err := h.svc.Signup(r.Context(), req, requester)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.fail(w, err)
		return
	}
	tokens, err := h.svc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tokens)
}

// --- approval ---

func (h *Handler) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.fail(w, err)
		return
	}
	if _, err := uuid.Parse(body.UserID); err != nil {
		h.fail(w, apperr.Validation("invalid user_id", map[string]string{"user_id": "must be a valid id"}))
		return
	}
	if err := h.svc.ApproveUser(r.Context(), body.UserID); err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "User approved successfully."})
}

func (h *Handler) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.PendingUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"pending_users": users})
}

func (h *Handler) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.PendingRequests(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"approval_requests": reqs})
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := userID(r, "requestID")
	if err != nil {
		h.fail(w, err)
		return
	}
	uid, err := h.svc.ApproveRequest(r.Context(), requestID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Request approved.", "user_id": uid})
}

// --- dashboards ---

func (h *Handler) HandleSuperAdminDashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.SuperAdminDashboard(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) HandleManagerDashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ManagerDashboard(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) HandleArtistDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	st, err := h.svc.ArtistDashboard(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

// --- management ---

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.ParsePage(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	users, total, err := h.svc.ListUsers(r.Context(), page.Size, page.Offset())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPageResponse(page, total, users))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	res, err := h.svc.Signup(r.Context(), req, &id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleCreateArtist registers an artist account on behalf of an administrator.
func (h *Handler) HandleCreateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	res, err := h.svc.CreateArtistAccount(r.Context(), req, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r, "userID")
	if err != nil {
		h.fail(w, err)
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r, "userID")
	if err != nil {
		h.fail(w, err)
		return
	}
	var upd UserUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		h.fail(w, err)
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), id, upd)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	id, err := userID(r, "userID")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), who, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
