package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"courseportal/internal/config"
	"courseportal/internal/http/middleware"
	"courseportal/internal/service"
)

// Services groups the service layer the routes call into.
type Services struct {
	Auth     service.AuthService
	Accounts service.AccountService
	Units    service.UnitService
	Files    service.FileService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Both surfaces call the same handlers; only paths and the unit id source differ.
// Session resolution is expected to run earlier in the chain (middleware.Session).
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, cfg config.AuthConfig) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	csrf := middleware.CSRF(cfg.CSRFEnabled, cfg.CookieSecure, CSRFErrorHandler)

	// Form-post surface. The /api/* endpoints are CSRF exempt, as they always were.
	app.Post("/login", csrf, Login(svc.Auth, cfg))
	app.Post("/signup", csrf, Signup(svc.Accounts))
	app.Post("/logout", csrf, Logout(svc.Auth))
	app.Post("/api/create-unit", CreateUnit(svc.Units))
	app.Post("/api/upload-file", UploadFiles(svc.Files))
	app.Post("/api/publish-files", PublishUnit(svc.Files))
	app.Get("/api/download-file/:id", ServeFile(svc.Files, false))
	app.Get("/api/preview-file/:id", ServeFile(svc.Files, true))
	app.Delete("/api/delete-file/:id", DeleteFile(svc.Files))
	app.Delete("/api/delete-unit/:id", DeleteUnit(svc.Units))

	v1 := app.Group("/api/v1", csrf)

	auth := v1.Group("/auth")
	auth.Post("/signup", Signup(svc.Accounts))
	auth.Get("/csrf", CSRFToken())
	auth.Post("/login", Login(svc.Auth, cfg))
	auth.Post("/logout", Logout(svc.Auth))
	auth.Get("/me", Me())

	v1.Get("/teachers", ListTeachers(svc.Accounts))

	units := v1.Group("/units")
	units.Get("/", ListUnits(svc.Units))
	units.Post("/create", CreateUnit(svc.Units))
	units.Post("/:id/upload", UploadFiles(svc.Files))
	units.Post("/:id/publish", PublishUnit(svc.Files))
	units.Delete("/:id", DeleteUnit(svc.Units))

	files := v1.Group("/files")
	files.Post("/publish", SetFilePublished(svc.Files))
	files.Delete("/:id", DeleteFile(svc.Files))
	files.Get("/:id/download", ServeFile(svc.Files, false))
	files.Get("/:id/preview", ServeFile(svc.Files, true))
	files.Get("/:id/url", FileURL(svc.Files))
}
