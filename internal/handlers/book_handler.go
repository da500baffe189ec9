package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/middleware"
	"github.com/booknest/booknest/internal/services"
)

type BookHandler struct {
	books  *services.BookService
	covers *services.CoverService
}

func NewBookHandler(books *services.BookService, covers *services.CoverService) *BookHandler {
	return &BookHandler{books: books, covers: covers}
}

// Publish submits a new book. It starts as a draft until an admin
// approves it.
func (h *BookHandler) Publish(c *fiber.Ctx) error {
	var req PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, apperr.Validation(err.Error()))
	}

	actor := middleware.CurrentUser(c)
	book, err := h.books.Publish(c.Context(), actor, req.Name, req.Pages)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "book submitted for approval",
		"status":  fiber.StatusCreated,
		"book":    book,
	})
}

func (h *BookHandler) ListUnpublished(c *fiber.Ctx) error {
	books, err := h.books.ListUnpublished(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "unpublished books retrieved",
		"status":  fiber.StatusOK,
		"books":   books,
	})
}

func (h *BookHandler) Approve(c *fiber.Ctx) error {
	if err := h.books.Approve(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "book published", "status": fiber.StatusOK})
}

func (h *BookHandler) Unpublish(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.books.Unpublish(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "book unpublished", "status": fiber.StatusOK})
}

func (h *BookHandler) List(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	books, err := h.books.List(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "books retrieved",
		"status":  fiber.StatusOK,
		"books":   books,
	})
}

func (h *BookHandler) MyBooks(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	books, err := h.books.MyBooks(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "books retrieved",
		"status":  fiber.StatusOK,
		"books":   books,
	})
}

func (h *BookHandler) MyPublished(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	books, err := h.books.MyPublished(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "published books retrieved",
		"status":  fiber.StatusOK,
		"books":   books,
	})
}

func (h *BookHandler) Borrow(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	book, err := h.books.Borrow(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "book borrowed successfully",
		"status":  fiber.StatusOK,
		"book":    book,
	})
}

func (h *BookHandler) Return(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	book, err := h.books.Return(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "book returned successfully",
		"status":  fiber.StatusOK,
		"book":    book,
	})
}

func (h *BookHandler) History(c *fiber.Ctx) error {
	history, err := h.books.History(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "book history retrieved",
		"status":  fiber.StatusOK,
		"history": history,
	})
}

func (h *BookHandler) UserHistory(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	logs, err := h.books.UserHistory(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "borrowing history retrieved",
		"status":  fiber.StatusOK,
		"logs":    logs,
	})
}

func (h *BookHandler) CurrentBorrows(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	books, err := h.books.CurrentBorrows(c.Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "currently borrowed books retrieved",
		"status":  fiber.StatusOK,
		"books":   books,
	})
}

func (h *BookHandler) Update(c *fiber.Ctx) error {
	var req BookUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, apperr.Validation(err.Error()))
	}

	actor := middleware.CurrentUser(c)
	book, err := h.books.Update(c.Context(), actor, c.Params("id"), req.Name, req.Pages)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "book updated successfully",
		"status":  fiber.StatusOK,
		"book":    book,
	})
}

func (h *BookHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	book, err := h.books.Delete(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if h.covers != nil {
		h.covers.Remove(c.Context(), book)
	}
	return c.JSON(fiber.Map{
		"message": "book deleted successfully",
		"status":  fiber.StatusOK,
	})
}

func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("cover")
	if err != nil {
		return respondError(c, apperr.Validation("missing cover file"))
	}

	actor := middleware.CurrentUser(c)
	book, err := h.covers.Upload(c.Context(), actor, c.Params("id"), fileHeader)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "cover uploaded successfully",
		"status":  fiber.StatusOK,
		"book":    book,
	})
}

func (h *BookHandler) CoverURL(c *fiber.Ctx) error {
	url, err := h.covers.URL(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "cover link generated",
		"status":  fiber.StatusOK,
		"url":     url,
	})
}
