package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kbrain/internal/model"
	"kbrain/internal/repository"
	"kbrain/internal/service"
)

// UploadObserver receives the byte size of each accepted upload.
type UploadObserver interface {
	ObserveUpload(size int64)
}

// UploadDocument accepts a multipart upload (field name: file) into a scope.
// Tag IDs may be passed in the "tags" form field, comma-separated.
func UploadDocument(svc service.DocumentService, obs ...UploadObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		var tagIDs []string
		if raw := strings.TrimSpace(c.FormValue("tags")); raw != "" {
			for _, id := range strings.Split(raw, ",") {
				id = strings.TrimSpace(id)
				if id == "" {
					continue
				}
				if _, err := uuid.Parse(id); err != nil {
					return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid tag id format")
				}
				tagIDs = append(tagIDs, id)
			}
		}

		doc, err := svc.Upload(c.UserContext(), scopeID, service.UploadInput{
			Filename: fh.Filename,
			Content:  content,
			MimeType: mimeType,
			TagIDs:   tagIDs,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		for _, o := range obs {
			o.ObserveUpload(doc.FileSize)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns a scope's documents with limit/offset pagination and
// optional status, extension and search filters.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		f := repository.DocumentFilter{
			Status:    model.DocumentStatus(c.Query("status")),
			Extension: c.Query("extension"),
			Search:    c.Query("search"),
		}
		res, err := svc.List(c.UserContext(), scopeID, f, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document by ID, tags included.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams a document's stored bytes back to the caller.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, content, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if doc.MimeType != "" {
			c.Set(fiber.HeaderContentType, doc.MimeType)
		}
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.OriginalName+`"`)
		return c.Send(content)
	}
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// UpdateDocumentStatus transitions a document through its processing lifecycle.
func UpdateDocumentStatus(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.UpdateStatus(c.UserContext(), id, model.DocumentStatus(req.Status), req.ErrorMessage)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocumentMetadata merges the request body into the document's metadata map.
func UpdateDocumentMetadata(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.UpdateMetadata(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document. The delete_storage query flag (default
// true) controls whether the backing bytes go with it.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		deleteStorage, err := strconv.ParseBool(c.Query("delete_storage", "true"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid delete_storage flag")
		}
		if err := svc.Delete(c.UserContext(), id, deleteStorage); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
