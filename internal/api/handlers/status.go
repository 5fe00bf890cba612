package handlers

import (
	"errors"

	"foodshare/domain"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps service errors onto HTTP codes: missing ids are
// 404, non-author mutations 403, everything else is invalid input.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCatalogTagNotFound),
		errors.Is(err, domain.ErrCatalogIngredientNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotRecipeAuthor):
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}
