package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"courseportal/internal/model"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestLogger_AccountAndServerError(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(sessionLocalKey, &model.Session{AccountID: "acc-1"})
		return c.Next()
	})
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "acc-1", logData["account_id"])
	assert.Equal(t, float64(fiber.StatusServiceUnavailable), logData["status"])
	assert.Equal(t, "error", logData["level"])
}

func TestLogger_TraceID(t *testing.T) {
	var buf bytes.Buffer
	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(trace.ContextWithSpanContext(c.UserContext(), sc))
		return c.Next()
	})
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/traced", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest("GET", "/traced", nil))
	require.NoError(t, err)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", logData["trace_id"])
}

type stubResolver struct {
	sessions map[string]*model.Session
	err      error
	seen     []string
}

func (s *stubResolver) Current(_ context.Context, token string) (*model.Session, error) {
	s.seen = append(s.seen, token)
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func TestSession(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]*model.Session{
		"good": {Token: "good", AccountID: "acc-1", Role: model.RoleTeacher},
	}}

	app := fiber.New()
	app.Use(Session(resolver))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.SendString("anonymous:" + SessionToken(c))
		}
		return c.SendString(sess.AccountID)
	})

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "cookie",
			setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) },
			want:  "acc-1",
		},
		{
			name:  "bearer header",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			want:  "acc-1",
		},
		{
			name:  "unknown token stays anonymous",
			setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"}) },
			want:  "anonymous:stale",
		},
		{
			name:  "no credentials",
			setup: func(r *http.Request) {},
			want:  "anonymous:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			tt.setup(req)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestSession_ResolverError(t *testing.T) {
	app := fiber.New()
	app.Use(Session(&stubResolver{err: errors.New("db down")}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "x"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCSRF(t *testing.T) {
	newApp := func(enabled bool) *fiber.App {
		app := fiber.New()
		app.Use(CSRF(enabled, false, func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).SendString("csrf")
		}))
		app.Get("/token", func(c *fiber.Ctx) error { return c.SendString(CSRFToken(c)) })
		app.Post("/change", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
		return app
	}

	t.Run("disabled passes unsafe requests through", func(t *testing.T) {
		resp, err := newApp(false).Test(httptest.NewRequest("POST", "/change", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		resp, err := newApp(true).Test(httptest.NewRequest("POST", "/change", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("echoed token is accepted", func(t *testing.T) {
		app := newApp(true)

		resp, err := app.Test(httptest.NewRequest("GET", "/token", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		token := string(body)
		require.NotEmpty(t, token)

		var cookie *http.Cookie
		for _, ck := range resp.Cookies() {
			if ck.Name == CSRFCookie {
				cookie = ck
			}
		}
		require.NotNil(t, cookie)

		req := httptest.NewRequest("POST", "/change", nil)
		req.AddCookie(cookie)
		req.Header.Set(CSRFHeader, token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		form := httptest.NewRequest("POST", "/change", strings.NewReader(CSRFFormField+"="+token))
		form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		form.AddCookie(cookie)
		resp, err = app.Test(form)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		wrong := httptest.NewRequest("POST", "/change", strings.NewReader(CSRFFormField+"=forged"))
		wrong.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		wrong.AddCookie(cookie)
		resp, err = app.Test(wrong)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS("http://localhost:5173, *"))
	app.Get("/api/v1/auth/me", func(c *fiber.Ctx) error { return c.SendString("ok") })

	t.Run("listed origin gets credentials", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin is not echoed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
		req.Header.Set("Origin", "http://evil.example")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty list disables the middleware", func(t *testing.T) {
		app := fiber.New()
		app.Use(CORS(" "))
		app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
