package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/clinic-access/internal/accessrequest"
	"github.com/frahmantamala/clinic-access/internal/auth"
	"github.com/frahmantamala/clinic-access/internal/permission"
	"github.com/frahmantamala/clinic-access/internal/transport/middleware"
	"github.com/frahmantamala/clinic-access/internal/transport/swagger"
	"github.com/frahmantamala/clinic-access/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, permissionHandler *permission.Handler, requestHandler *accessrequest.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Public catalog route (no auth required)
		if permissionHandler != nil {
			r.Get("/permissions/catalog", permissionHandler.GetCatalog)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				if permissionHandler != nil {
					pr.Get("/permissions/me", permissionHandler.GetMyPermissions)

					// Grant administration
					pr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermissions(permission.UsersManage))
						ar.Post("/permissions/grants", permissionHandler.CreateGrant)
						ar.Get("/users/{userID}/grants", permissionHandler.GetUserGrants)
					})
				}

				// Permission request workflow
				if requestHandler != nil {
					pr.Route("/permission-requests", func(rr chi.Router) {
						rr.Post("/", requestHandler.CreateRequest)
						rr.Get("/{id}", requestHandler.GetRequest)

						// Review routes with permission protection
						rr.Group(func(mr chi.Router) {
							mr.Use(middleware.RequirePermissions(permission.UsersManage))
							mr.Get("/", requestHandler.ListRequests)
							mr.Patch("/{id}/review", requestHandler.ReviewRequest)
						})
					})
				}
			})
		}
	})
}
