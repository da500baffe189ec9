package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, apperr.Validation(err.Error()))
	}

	user, token, err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user registered successfully",
		"status":  fiber.StatusCreated,
		"token":   token,
		"user":    user.Public(),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, apperr.Validation(err.Error()))
	}

	user, token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "login successful",
		"status":  fiber.StatusOK,
		"token":   token,
		"user":    user.Public(),
	})
}
