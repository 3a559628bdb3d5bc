package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/ctrlfund/ctrlfund/internal/document"
	"github.com/ctrlfund/ctrlfund/internal/identity"
	"github.com/ctrlfund/ctrlfund/internal/note"
	"github.com/ctrlfund/ctrlfund/internal/permission"
	"github.com/ctrlfund/ctrlfund/internal/receipt"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
	"github.com/ctrlfund/ctrlfund/internal/transport/middleware"
	"github.com/ctrlfund/ctrlfund/internal/transport/swagger"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Identity     *identity.Handler
	Transaction  *transaction.Handler
	Note         *note.Handler
	Receipt      *receipt.Handler
	Document     *document.Handler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// RegisterAllRoutes mounts the full API surface on the router. Auth
// routes and the shared-note view are public; everything else sits
// behind the bearer-token middleware with per-group capability gates.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	handlers Handlers,
	tokens middleware.TokenValidator,
	allowedOrigins string,
	lg *slog.Logger,
) {
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(lg))
	router.Use(middleware.LoggingMiddleware(lg))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", pingHandler)
		r.Get("/health", healthCheckHandler(db))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", handlers.Identity.Login)
			r.Post("/google", handlers.Identity.LoginFederated)
			r.Post("/signup", handlers.Identity.Signup)
			r.Post("/refresh", handlers.Identity.RefreshToken)
			r.Post("/logout", handlers.Identity.Logout)
		})

		// Share-by-link view, reachable without a session.
		r.Get("/notes/shared/{id}", handlers.Note.GetShared)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokens, lg))

			r.Get("/users/me", handlers.Identity.CurrentUser)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireCapability(permission.CapManageUsers))

				r.Get("/", handlers.Identity.ListUsers)
				r.Put("/{id}/active", handlers.Identity.SetActive)
				r.Put("/{id}/role", handlers.Identity.SetRole)
				r.Put("/{id}/permissions", handlers.Identity.SetOverrides)
				r.Delete("/{id}", handlers.Identity.DeleteUser)
			})

			r.Route("/transactions", func(r chi.Router) {
				view := middleware.RequireCapability(permission.CapViewTransactions)
				r.With(view).Get("/", handlers.Transaction.List)
				r.With(view).Get("/stats", handlers.Transaction.Stats)
				r.With(view).Get("/categories", handlers.Transaction.Categories)
				r.With(view).Get("/watch", handlers.Transaction.Watch)

				add := middleware.RequireCapability(permission.CapAddTransactions)
				r.With(add).Post("/", handlers.Transaction.Create)
				r.With(add).Post("/bulk", handlers.Transaction.BulkCreate)

				r.With(middleware.RequireCapability(permission.CapEditTransactions)).
					Put("/{id}", handlers.Transaction.Update)
				r.With(middleware.RequireCapability(permission.CapDeleteTransactions)).
					Delete("/{id}", handlers.Transaction.Delete)
			})

			r.Route("/notes", func(r chi.Router) {
				r.With(middleware.RequireCapability(permission.CapViewNotes)).
					Get("/", handlers.Note.List)
				r.With(middleware.RequireCapability(permission.CapCreateNotes)).
					Post("/", handlers.Note.Create)
				r.With(middleware.RequireCapability(permission.CapEditNotes)).
					Put("/{id}", handlers.Note.Update)
				r.With(middleware.RequireCapability(permission.CapDeleteNotes)).
					Delete("/{id}", handlers.Note.Delete)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.With(middleware.RequireCapability(permission.CapViewReceipts)).
					Get("/", handlers.Receipt.List)

				upload := middleware.RequireCapability(permission.CapUploadReceipts)
				r.With(upload).Post("/", handlers.Receipt.Create)
				r.With(upload).Put("/{id}", handlers.Receipt.Update)

				r.With(middleware.RequireCapability(permission.CapDeleteReceipts)).
					Delete("/{id}", handlers.Receipt.Delete)
				r.With(middleware.RequireCapability(permission.CapUploadToDrive)).
					Post("/{id}/drive", handlers.Receipt.UploadToDrive)
			})

			// Documents share the receipt capability cluster. Deletion
			// is additionally restricted to the protected admin inside
			// the service.
			r.Route("/documents", func(r chi.Router) {
				r.With(middleware.RequireCapability(permission.CapViewReceipts)).
					Get("/", handlers.Document.List)

				upload := middleware.RequireCapability(permission.CapUploadReceipts)
				r.With(upload).Post("/", handlers.Document.Create)
				r.With(upload).Put("/{id}", handlers.Document.Update)

				r.With(middleware.RequireCapability(permission.CapDeleteReceipts)).
					Delete("/{id}", handlers.Document.Delete)
			})

			r.Get("/notifications", handlers.Notification.List)
			r.Delete("/notifications", handlers.Notification.Clear)

			r.Route("/export", func(r chi.Router) {
				r.With(middleware.RequireCapability(permission.CapViewTransactions)).
					Get("/transactions", handlers.Export.ExportTransactions)
				r.With(middleware.RequireCapability(permission.CapViewReceipts)).
					Get("/receipts", handlers.Export.ExportReceipts)
				r.With(middleware.RequireCapability(permission.CapViewNotes)).
					Get("/notes", handlers.Export.ExportNotes)
			})
		})
	})
}
