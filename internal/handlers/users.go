package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/utils"
)

const usersArea = "users"

// UserHandler handles the admin account routes
type UserHandler struct {
	Users *services.Users
}

// ListUsers handles GET /api/admin/users
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/admin/users/:id
// @Summary Get an account
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.Account
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	account, err := h.Users.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	return c.JSON(account)
}

// CreateUser handles POST /api/admin/users
// @Summary Register an account
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body services.UserInput true "Account"
// @Success 201 {object} services.Account
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	account, err := h.Users.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

// UpdateUser handles PATCH /api/admin/users/:id
// @Summary Change an account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body services.UserInput true "Fields to change"
// @Success 200 {object} services.Account
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	account, err := h.Users.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	return c.JSON(account)
}

// DeleteUser handles DELETE /api/admin/users/:id
// @Summary Delete an account
// @Tags Admin
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.Users.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return utils.ServiceErrorResponse(c, err, usersArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
