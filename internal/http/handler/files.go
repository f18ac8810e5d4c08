package handler

import (
	"mime"

	"github.com/gofiber/fiber/v2"

	"courseportal/internal/http/middleware"
	"courseportal/internal/service"
)

type publishFileRequest struct {
	FileID      string    `json:"file_id" form:"file_id"`
	IsPublished *flexBool `json:"is_published" form:"is_published"`
}

// SetFilePublished sets one file's published flag. is_published defaults to true.
//
// @Summary Publish or unpublish a file
// @Tags files
// @Accept json,mpfd,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Router /api/v1/files/publish [post]
func SetFilePublished(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req publishFileRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		sess := middleware.CurrentSession(c)
		if req.FileID == "" && sess.IsTeacher() {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "file_id required")
		}

		f, err := svc.SetPublished(c.UserContext(), sess, resourceID(req.FileID), boolOr(req.IsPublished, true))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "file": f})
	}
}

// DeleteFile removes a file's bytes and record.
//
// @Summary Delete file
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} errorPayload
// @Router /api/v1/files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.CurrentSession(c), resourceID(c.Params("id"))); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "File deleted successfully"})
	}
}

// ServeFile streams a file's bytes under its original name, as an attachment
// or inline. Every refusal is a 404.
//
// @Summary Download or preview a file
// @Tags files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /api/v1/files/{id}/download [get]
// @Router /api/v1/files/{id}/preview [get]
func ServeFile(svc service.FileService, inline bool) fiber.Handler {
	disposition, open := "attachment", svc.Open
	if inline {
		disposition, open = "inline", svc.Preview
	}
	return func(c *fiber.Ctx) error {
		content, err := open(c.UserContext(), middleware.CurrentSession(c), resourceID(c.Params("id")))
		if err != nil {
			return serviceError(c, err)
		}

		c.Set(fiber.HeaderContentType, content.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{
			"filename": content.File.OriginalName,
		}))
		// SendStream closes the body once it has been written.
		return c.SendStream(content.Body, int(content.Size))
	}
}

// FileURL returns a short-lived direct download URL.
//
// @Summary Presigned download URL
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/v1/files/{id}/url [get]
func FileURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Link(c.UserContext(), middleware.CurrentSession(c), resourceID(c.Params("id")))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "url": u})
	}
}

// ListTeachers returns teachers with published content, each with only their
// published files.
//
// @Summary Published catalog
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/teachers [get]
func ListTeachers(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teachers, err := svc.Teachers(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"teachers": teachers})
	}
}
