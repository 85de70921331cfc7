package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kbrain/internal/service"
)

type createTagRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	Meta        map[string]any `json:"meta"`
}

type updateTagRequest struct {
	Description *string        `json:"description"`
	Color       *string        `json:"color"`
	Meta        map[string]any `json:"meta"`
}

// CreateTag registers a new tag within a scope.
func CreateTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		var req createTagRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tag, err := svc.Create(c.UserContext(), scopeID, service.CreateTagInput{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
			Meta:        req.Meta,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
}

// ListTags returns all of a scope's tags.
func ListTags(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		tags, err := svc.List(c.UserContext(), scopeID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tags)
	}
}

// GetTag returns a tag by ID within a scope.
func GetTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		id := c.Params("tagID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid tag id format")
		}
		tag, err := svc.Get(c.UserContext(), scopeID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tag)
	}
}

// UpdateTag changes a tag's mutable fields.
func UpdateTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		id := c.Params("tagID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid tag id format")
		}
		var req updateTagRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tag, err := svc.Update(c.UserContext(), scopeID, id, service.UpdateTagInput{
			Description: req.Description,
			Color:       req.Color,
			Meta:        req.Meta,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tag)
	}
}

// DeleteTag removes a tag and its document associations.
func DeleteTag(svc service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeID := c.Params("scopeID")
		id := c.Params("tagID")
		if _, err := uuid.Parse(scopeID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid scope id format")
		}
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid tag id format")
		}
		if err := svc.Delete(c.UserContext(), scopeID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
