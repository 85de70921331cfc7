package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kbrain/internal/model"
	"kbrain/internal/service"
)

type createScopeRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	AllowedExtensions []string `json:"allowed_extensions"`
	StorageBackend    string   `json:"storage_backend"`
}

type updateScopeRequest struct {
	Description       *string  `json:"description"`
	AllowedExtensions []string `json:"allowed_extensions"`
	IsActive          *bool    `json:"is_active"`
}

// CreateScope registers a new scope.
func CreateScope(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createScopeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		scope, err := svc.Create(c.UserContext(), service.CreateScopeInput{
			Name:              req.Name,
			Description:       req.Description,
			AllowedExtensions: req.AllowedExtensions,
			StorageBackend:    model.StorageBackend(req.StorageBackend),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(scope)
	}
}

// ListScopes returns scopes with limit/offset pagination; the is_active
// query flag filters by the active state when present.
func ListScopes(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		var isActive *bool
		if raw := c.Query("is_active"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid is_active flag")
			}
			isActive = &v
		}

		res, err := svc.List(c.UserContext(), isActive, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetScope returns a scope by ID.
func GetScope(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("scopeID")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		scope, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(scope)
	}
}

// UpdateScope changes a scope's mutable policy fields.
func UpdateScope(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("scopeID")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateScopeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		scope, err := svc.Update(c.UserContext(), id, service.UpdateScopeInput{
			Description:       req.Description,
			AllowedExtensions: req.AllowedExtensions,
			IsActive:          req.IsActive,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(scope)
	}
}

// ScopeStatistics returns document count, total size and status breakdown.
func ScopeStatistics(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("scopeID")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		stats, err := svc.Statistics(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}

// DeleteScope removes a scope along with its documents and tags.
func DeleteScope(svc service.ScopeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("scopeID")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
