package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"courseportal/internal/config"
	"courseportal/internal/http/middleware"
	"courseportal/internal/model"
	"courseportal/internal/service"
)

type signupRequest struct {
	FullName        string    `json:"full_name" form:"full_name"`
	Email           string    `json:"email" form:"email"`
	Password        string    `json:"password" form:"password"`
	ConfirmPassword string    `json:"confirm_password" form:"confirm_password"`
	Role            string    `json:"role" form:"role"`
	Subject         string    `json:"subject" form:"subject"`
	Agreed          *flexBool `json:"agreed" form:"agreed"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Signup registers a student or teacher account.
//
// @Summary Register an account
// @Tags auth
// @Accept json,mpfd,x-www-form-urlencoded
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/auth/signup [post]
func Signup(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		acc, err := svc.Register(c.UserContext(), service.RegisterInput{
			FullName:        strings.TrimSpace(req.FullName),
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Role:            model.Role(strings.ToLower(strings.TrimSpace(req.Role))),
			Subject:         strings.TrimSpace(req.Subject),
			Agreed:          boolOr(req.Agreed, false),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": acc})
	}
}

// Login authenticates email, password and role and sets the session cookie.
// A session already carried by the request is ended only once the new login succeeds.
//
// @Summary Log in
// @Tags auth
// @Accept json,mpfd,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/auth/login [post]
func Login(svc service.AuthService, cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		}

		role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
		sess, err := svc.Authenticate(c.UserContext(), middleware.SessionToken(c), req.Email, req.Password, role)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "email, password and role are required")
			}
			return serviceError(c, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookie,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{"success": true, "user": sess})
	}
}

// Logout ends the caller's session, if any, and clears the cookie.
//
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), middleware.SessionToken(c)); err != nil {
			return serviceError(c, err)
		}
		c.ClearCookie(middleware.SessionCookie)
		return c.JSON(fiber.Map{"success": true})
	}
}

// Me returns the identity behind the current session, or a null user.
//
// @Summary Current identity
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/auth/me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.CurrentSession(c)
		if sess == nil {
			return c.JSON(fiber.Map{"user": nil})
		}
		return c.JSON(fiber.Map{"user": sess})
	}
}

// CSRFToken sets the csrftoken cookie and returns the token for clients that
// cannot read cookies.
//
// @Summary Issue CSRF token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/auth/csrf [get]
func CSRFToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"csrf": "set", "token": middleware.CSRFToken(c)})
	}
}
