package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"kbrain/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all business rules live in the service layer.
// obs may be nil when upload metrics are not wanted.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, scopeSvc service.ScopeService, tagSvc service.TagService, obs UploadObserver) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	scopes := app.Group("/scopes")
	scopes.Post("/", CreateScope(scopeSvc))
	scopes.Get("/", ListScopes(scopeSvc))
	scopes.Get("/:scopeID", GetScope(scopeSvc))
	scopes.Patch("/:scopeID", UpdateScope(scopeSvc))
	scopes.Delete("/:scopeID", DeleteScope(scopeSvc))
	scopes.Get("/:scopeID/statistics", ScopeStatistics(scopeSvc))

	scopes.Post("/:scopeID/tags", CreateTag(tagSvc))
	scopes.Get("/:scopeID/tags", ListTags(tagSvc))
	scopes.Get("/:scopeID/tags/:tagID", GetTag(tagSvc))
	scopes.Patch("/:scopeID/tags/:tagID", UpdateTag(tagSvc))
	scopes.Delete("/:scopeID/tags/:tagID", DeleteTag(tagSvc))

	uploadHandler := UploadDocument(docSvc)
	if obs != nil {
		uploadHandler = UploadDocument(docSvc, obs)
	}
	scopes.Post("/:scopeID/documents", uploadHandler)
	scopes.Get("/:scopeID/documents", ListDocuments(docSvc))

	documents := app.Group("/documents")
	documents.Get("/:id", GetDocument(docSvc))
	documents.Get("/:id/download", DownloadDocument(docSvc))
	documents.Patch("/:id/status", UpdateDocumentStatus(docSvc))
	documents.Patch("/:id/metadata", UpdateDocumentMetadata(docSvc))
	documents.Delete("/:id", DeleteDocument(docSvc))
}
