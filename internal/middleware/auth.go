package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/access"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/localnerve/medrecords/internal/utils"
)

const actorKey = "actor"

// Authenticator resolves a session token to an actor
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Actor, error)
}

// Authenticate resolves the session cookie, or a bearer token, to the actor
// stored in the request locals
func Authenticate(auth Authenticator, cookie string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookie)
		if token == "" {
			token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if token == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Session cookie \"" + cookie + "\" not found",
				Type:    "auth.session",
			}
		}

		actor, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			status, _ := utils.StatusOf(err)
			if status == fiber.StatusInternalServerError {
				return err
			}
			return &types.CustomError{
				Code:    status,
				Message: "Invalid session: " + err.Error(),
				Type:    "auth.session",
			}
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Actor returns the authenticated actor of the request
func Actor(c *fiber.Ctx) access.Actor {
	actor, _ := c.Locals(actorKey).(access.Actor)
	return actor
}

// RequireRoles rejects actors whose role is not listed
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Role \"" + actor.Role + "\" may not use this resource",
			Type:    "auth.role",
		}
	}
}
