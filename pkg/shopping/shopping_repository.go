package shopping

import (
	"context"

	"foodshare/domain"
	"foodshare/entities"

	"gorm.io/gorm"
)

type (
	ShoppingRepository interface {
		IngredientLinesForCartOwner(ctx context.Context, userID string) ([]domain.IngredientLine, error)
	}

	shoppingRepository struct {
		db *gorm.DB
	}
)

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

// IngredientLinesForCartOwner returns every ingredient line of every
// recipe in the user's cart, ungrouped. Aggregation happens in the
// service so it stays a pure, testable transform.
func (r *shoppingRepository) IngredientLinesForCartOwner(ctx context.Context, userID string) ([]domain.IngredientLine, error) {
	var lines []domain.IngredientLine
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select("ingredients.id as ingredient_id, ingredients.name as name, ingredients.measurement_unit as unit, recipe_ingredients.amount as amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN user_recipe_marks ON user_recipe_marks.recipe_id = recipe_ingredients.recipe_id").
		Where("user_recipe_marks.user_id = ? AND user_recipe_marks.kind = ?", userID, entities.MarkCart).
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
