package domain

import (
	"errors"
)

var (
	MessageSuccessDownloadList = "shopping list generated successfully"
	MessageFailedDownloadList  = "failed to generate shopping list"

	ErrEmptyCart = errors.New("shopping cart is empty")
)

type (
	// IngredientLine is one raw (ingredient, unit, amount) row belonging
	// to a recipe in the user's cart, before aggregation.
	IngredientLine struct {
		IngredientID string `json:"ingredient_id"`
		Name         string `json:"name"`
		Unit         string `json:"unit"`
		Amount       int    `json:"amount"`
	}

	// ShoppingItem is an aggregated (ingredient, unit) group with the
	// summed amount across every cart recipe.
	ShoppingItem struct {
		IngredientID string `json:"ingredient_id"`
		Name         string `json:"name"`
		Unit         string `json:"unit"`
		Amount       int    `json:"amount"`
	}
)
