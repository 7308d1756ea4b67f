// Package server assembles the HTTP surface: middleware, route table and role gates.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/catalog"
	"github.com/luzza07/artist-management-backend/internal/config"
	"github.com/luzza07/artist-management-backend/internal/httputil"
	"github.com/luzza07/artist-management-backend/internal/realtime"
	"github.com/luzza07/artist-management-backend/internal/users"
)

type Deps struct {
	Config     config.Config
	Logger     *log.Logger
	Tokens     *auth.TokenService
	Identities auth.IdentityLoader
	Users      *users.Service
	Albums     *catalog.Service
	Artists    *catalog.Artists
	// Feed is nil when no Redis is configured; /ws is then not served.
	Feed *realtime.Feed
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(corsMiddleware(d.Config.CORSAllowedOrigin))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogMiddleware(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "artist-management",
		})
	})

	authn := auth.Middleware(d.Tokens, d.Identities, d.Logger)
	optional := auth.OptionalMiddleware(d.Tokens, d.Identities, d.Logger)
	admins := auth.RequireRoles(auth.RoleSuperAdmin, auth.RoleArtistManager)
	superAdmin := auth.RequireRoles(auth.RoleSuperAdmin)
	artist := auth.RequireRoles(auth.RoleArtist)

	if d.Feed != nil {
		r.With(wsTokenMiddleware, authn, admins).Get("/ws", d.Feed.ServeWS)
	}

	uh := users.NewHandler(d.Users, d.Logger)
	ch := catalog.NewHandler(d.Albums, d.Artists, d.Logger)
	limiter := newIPLimiter(d.Config.LoginRatePerSec, d.Config.LoginBurst)

	api := chi.NewRouter()
	api.Use(middleware.Timeout(30 * time.Second))
	limitBody := bodySizeLimitMiddleware(d.Config.MaxBodyBytes)

	// Auth routes (public, signup records the caller when one is logged in)
	api.With(limitBody, optional).Post("/users/auth/signup", uh.HandleSignup)
	api.With(limitBody, loginRateLimitMiddleware(limiter)).Post("/users/auth/login", uh.HandleLogin)
	api.With(limitBody).Post("/users/auth/refresh-token", uh.HandleRefresh)

	api.Group(func(r chi.Router) {
		r.Use(authn)

		r.Group(func(r chi.Router) {
			r.Use(limitBody)

			r.With(superAdmin).Route("/users/admin", uh.RegisterApprovalRoutes)

			r.With(superAdmin).Get("/users/dashboard/super-admin", uh.HandleSuperAdminDashboard)
			r.With(auth.RequireRoles(auth.RoleArtistManager)).Get("/users/dashboard/artist-manager", uh.HandleManagerDashboard)
			r.With(artist).Get("/users/dashboard/artist", uh.HandleArtistDashboard)

			r.With(artist).Route("/users/artists/profile", ch.RegisterProfileRoutes)
			r.With(superAdmin).Route("/users", uh.RegisterUserRoutes)
			r.With(artist).Route("/albums", ch.RegisterAlbumRoutes)
		})

		// CSV imports are larger than any JSON payload.
		r.Route("/artists", func(r chi.Router) {
			r.Use(admins, bodySizeLimitMiddleware(max(d.Config.MaxBodyBytes, catalog.MaxImportBytes)))
			r.Post("/", uh.HandleCreateArtist)
			ch.RegisterArtistAdminRoutes(r)
		})
	})

	r.Mount("/api", api)
	return r
}

// wsTokenMiddleware lets browsers, which cannot set headers on a websocket handshake, pass the
// access token as ?access_token=.
func wsTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if tok := r.URL.Query().Get("access_token"); tok != "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		next.ServeHTTP(w, r)
	})
}
