package handler

import (
	"fmt"
	"maps"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"courseportal/internal/http/middleware"
	"courseportal/internal/model"
	"courseportal/internal/service"
)

// uploadField is the multipart field carrying the files of a batch.
const uploadField = "files"

type createUnitRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

type unitRequest struct {
	UnitID string `json:"unit_id" form:"unit_id"`
	Tag    string `json:"tag" form:"tag"`
}

// resourceID returns id when it is a well-formed UUID and "" otherwise.
// Malformed ids cannot exist, so they take the same path as a missing resource.
func resourceID(id string) string {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// unitID prefers the :id route parameter and falls back to unit_id in the body.
func unitID(c *fiber.Ctx, req unitRequest) string {
	if id := c.Params("id"); id != "" {
		return resourceID(id)
	}
	return resourceID(req.UnitID)
}

// ListUnits returns the caller's units with all of their files, drafts included.
//
// @Summary List own units
// @Tags units
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 403 {object} errorPayload
// @Router /api/v1/units [get]
func ListUnits(svc service.UnitService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		units, err := svc.ListMine(c.UserContext(), middleware.CurrentSession(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "units": units})
	}
}

// CreateUnit creates an empty unit owned by the caller.
//
// @Summary Create unit
// @Tags units
// @Accept json,mpfd,x-www-form-urlencoded
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/units/create [post]
func CreateUnit(svc service.UnitService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUnitRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		unit, err := svc.Create(c.UserContext(), middleware.CurrentSession(c), service.CreateUnitInput{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "unit": unit})
	}
}

// DeleteUnit removes a unit with every file in it.
//
// @Summary Delete unit
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} errorPayload
// @Router /api/v1/units/{id} [delete]
func DeleteUnit(svc service.UnitService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.CurrentSession(c), resourceID(c.Params("id"))); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Unit deleted successfully"})
	}
}

// UploadFiles stores a multipart batch as drafts. Files the batch rejects are
// listed under skipped_files; the rest are still stored.
//
// @Summary Upload files to a unit
// @Tags units
// @Accept mpfd
// @Produce json
// @Param id path string true "Unit ID"
// @Param files formData file true "Files"
// @Param tag formData string false "assignment, personal_note, study_material or question_bank"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/v1/units/{id}/upload [post]
func UploadFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		headers := formFiles(c)
		files := make([]service.UploadFile, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			files = append(files, service.UploadFile{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Content:     f,
			})
		}

		res, err := svc.Upload(c.UserContext(), middleware.CurrentSession(c), unitID(c, req), files, model.Tag(strings.TrimSpace(req.Tag)))
		if err != nil {
			return serviceError(c, err)
		}

		out := fiber.Map{
			"success": true,
			"files":   res.Accepted,
			"message": fmt.Sprintf("%d file(s) uploaded successfully", len(res.Accepted)),
		}
		if len(res.Rejected) > 0 {
			out["skipped_files"] = res.Rejected
			out["warning"] = fmt.Sprintf("%d file(s) were skipped", len(res.Rejected))
		}
		return c.JSON(out)
	}
}

// formFiles returns the files under the "files" field. Clients that use another
// field name still get their files accepted, taken in field-name order.
func formFiles(c *fiber.Ctx) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	if fhs := form.File[uploadField]; len(fhs) > 0 {
		return fhs
	}

	var out []*multipart.FileHeader
	for _, k := range slices.Sorted(maps.Keys(form.File)) {
		out = append(out, form.File[k]...)
	}
	return out
}

// PublishUnit publishes every draft in a unit.
//
// @Summary Publish unit files
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} errorPayload
// @Router /api/v1/units/{id}/publish [post]
func PublishUnit(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		n, err := svc.PublishUnit(c.UserContext(), middleware.CurrentSession(c), unitID(c, req))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"published": n,
			"message":   fmt.Sprintf("%d file(s) published successfully", n),
		})
	}
}
