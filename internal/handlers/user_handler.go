package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/middleware"
	"github.com/booknest/booknest/internal/services"
)

// UserHandler covers the profile endpoints plus the admin moderation
// operations on users.
type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"message": "user profile retrieved successfully",
		"status":  fiber.StatusOK,
		"user":    user.Public(),
	})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, apperr.Validation(err.Error()))
	}

	user := middleware.CurrentUser(c)
	updated, err := h.auth.UpdateProfile(c.Context(), user, req.Username, req.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "profile updated successfully",
		"status":  fiber.StatusOK,
		"user":    updated.Public(),
	})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	public := make([]interface{}, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return c.JSON(fiber.Map{
		"message": "users",
		"status":  fiber.StatusOK,
		"users":   public,
	})
}

func (h *UserHandler) MakeAdmin(c *fiber.Ctx) error {
	if err := h.auth.MakeAdmin(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user promoted to admin", "status": fiber.StatusOK})
}

func (h *UserHandler) Block(c *fiber.Ctx) error {
	if err := h.auth.Block(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user blocked", "status": fiber.StatusOK})
}

func (h *UserHandler) Unblock(c *fiber.Ctx) error {
	if err := h.auth.Unblock(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user unblocked", "status": fiber.StatusOK})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.auth.DeleteUser(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deleted", "status": fiber.StatusOK})
}
