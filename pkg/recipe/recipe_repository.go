package recipe

import (
	"context"

	"foodshare/domain"
	"foodshare/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error
		UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, id string) error

		AddMark(ctx context.Context, userID, recipeID, kind string) error
		RemoveMark(ctx context.Context, userID, recipeID, kind string) (int64, error)
		HasMark(ctx context.Context, userID, recipeID, kind string) (bool, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipeWithAssociations inserts the recipe row, its ingredient
// lines and its tag links inside one transaction. A failure on any row
// rolls back the whole recipe.
func (r *recipeRepository) CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return insertAssociations(tx, recipe.ID, lines, tagIDs)
	})
}

// UpdateRecipeWithAssociations replaces the recipe's associations in
// full: existing lines and links are deleted, the validated set is
// re-inserted, and the scalar fields are updated last. Full-replace
// semantics, not an incremental patch.
func (r *recipeRepository) UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := insertAssociations(tx, recipe.ID, lines, tagIDs); err != nil {
			return err
		}
		return tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"image_url":    recipe.ImageURL,
				"cooking_time": recipe.CookingTime,
			}).Error
	})
}

func insertAssociations(tx *gorm.DB, recipeID uuid.UUID, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	for _, line := range lines {
		line.ID = uuid.New()
		line.RecipeID = recipeID
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}

	tagLinks := make([]*entities.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tagLinks = append(tagLinks, &entities.RecipeTag{
			ID:       uuid.New(),
			RecipeID: recipeID,
			TagID:    tagID,
		})
	}
	return tx.Create(&tagLinks).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Lines.Ingredient").
		Preload("TagLinks.Tag").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Model(&entities.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}

	// is_favorited=false / is_in_shopping_cart=false does not filter.
	if filter.IsFavorited && filter.RequestingUserID != "" {
		query = query.Where("recipes.id IN (?)", r.markSubquery(filter.RequestingUserID, entities.MarkFavorite))
	}
	if filter.IsInShoppingCart && filter.RequestingUserID != "" {
		query = query.Where("recipes.id IN (?)", r.markSubquery(filter.RequestingUserID, entities.MarkCart))
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Offset(offset).
		Limit(filter.Limit).
		Order("recipes.pub_date desc").
		Preload("Author").
		Preload("Lines.Ingredient").
		Preload("TagLinks.Tag").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) markSubquery(userID, kind string) *gorm.DB {
	return r.db.Model(&entities.UserRecipeMark{}).
		Select("user_recipe_marks.recipe_id").
		Where("user_recipe_marks.user_id = ? AND user_recipe_marks.kind = ?", userID, kind)
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.UserRecipeMark{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) AddMark(ctx context.Context, userID, recipeID, kind string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	mark := entities.UserRecipeMark{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipeUUID,
		Kind:     kind,
	}
	return r.db.WithContext(ctx).Create(&mark).Error
}

func (r *recipeRepository) RemoveMark(ctx context.Context, userID, recipeID, kind string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Delete(&entities.UserRecipeMark{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) HasMark(ctx context.Context, userID, recipeID, kind string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.UserRecipeMark{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
