package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

type stubAuth map[string]access.Actor

func (s stubAuth) Authenticate(_ context.Context, token string) (access.Actor, error) {
	switch token {
	case "inactive":
		return access.Actor{}, types.Forbidden.New("user is inactive")
	case "broken":
		return access.Actor{}, errors.New("database down")
	}
	actor, ok := s[token]
	if !ok {
		return access.Actor{}, types.Unauthorized.New("session is not valid")
	}
	return actor, nil
}

// errorCodes renders CustomError codes like the server does
func errorCodes(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return c.Status(custom.Code).SendString(custom.Type)
	}
	return c.Status(fiber.StatusInternalServerError).SendString("internal")
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorCodes})
	auth := stubAuth{
		"admin": {ID: "u-admin", Role: models.RoleAdmin},
		"prof":  {ID: "u-prof", Role: models.RoleProfessional},
	}
	app.Use(VersionMiddleware())
	app.Use(Authenticate(auth, "Authorization"))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(Actor(c).ID)
	})
	app.Get("/admin", RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthenticate(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		cookie string
		bearer string
		status int
	}{
		{"cookie", "prof", "", 200},
		{"bearer", "", "prof", 200},
		{"missing", "", "", 401},
		{"invalid", "forged", "", 401},
		{"inactive", "inactive", "", 403},
		{"failure", "broken", "", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", "Authorization="+tt.cookie)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer prof")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 204, resp.StatusCode)
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer prof")
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer prof")
	req.Header.Set("X-Api-Version", "1.0")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, APIVersion, resp.Header.Get("X-Api-Version"))
}
