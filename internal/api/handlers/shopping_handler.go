package handlers

import (
	"foodshare/domain"
	"foodshare/internal/api/presenters"
	"foodshare/internal/utils"
	"foodshare/pkg/shopping"

	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingHandler interface {
		DownloadShoppingList(c *fiber.Ctx) error
	}

	shoppingHandler struct {
		shoppingService shopping.ShoppingService
	}
)

func NewShoppingHandler(shoppingService shopping.ShoppingService) ShoppingHandler {
	return &shoppingHandler{shoppingService: shoppingService}
}

// DownloadShoppingList returns the aggregated cart as a text
// attachment. An empty cart either returns an empty file or 400,
// controlled by SHOPPING_EMPTY_AS_ERROR.
func (h *shoppingHandler) DownloadShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	items, err := h.shoppingService.GetShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDownloadList, err)
	}

	if len(items) == 0 && utils.GetConfig("SHOPPING_EMPTY_AS_ERROR") == "true" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDownloadList, domain.ErrEmptyCart)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="shopping_list.txt"`)
	return c.SendString(h.shoppingService.RenderShoppingList(items))
}
