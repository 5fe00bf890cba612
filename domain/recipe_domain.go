package domain

import (
	"errors"
	"time"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1000
	MinAmount      = 1
	MaxAmount      = 32767
	MinNameLength  = 3
)

var (
	MessageSuccessGetRecipes    = "success get recipes"
	MessageSuccessGetRecipe     = "success get recipe detail"
	MessageSuccessCreateRecipe  = "recipe created successfully"
	MessageSuccessUpdateRecipe  = "recipe updated successfully"
	MessageSuccessDeleteRecipe  = "recipe deleted successfully"
	MessageSuccessAddMark       = "recipe added successfully"
	MessageSuccessRemoveMark    = "recipe removed successfully"
	MessageSuccessUploadImage   = "image uploaded successfully"

	MessageFailedGetRecipes   = "failed to get recipes"
	MessageFailedGetRecipe    = "failed to get recipe detail"
	MessageFailedCreateRecipe = "failed to create recipe"
	MessageFailedUpdateRecipe = "failed to update recipe"
	MessageFailedDeleteRecipe = "failed to delete recipe"
	MessageFailedAddMark      = "failed to add recipe"
	MessageFailedRemoveMark   = "failed to remove recipe"
	MessageFailedUploadImage  = "failed to upload image"

	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeAuthor     = errors.New("only the author can modify this recipe")
	ErrNameTooShort        = errors.New("name must be at least 3 characters")
	ErrNoTags              = errors.New("tags must be a non-empty list")
	ErrNoIngredients       = errors.New("ingredients must be a non-empty list")
	ErrTagNotFound         = errors.New("tag does not exist")
	ErrDuplicateTag        = errors.New("duplicate tag in submission")
	ErrIngredientNotFound  = errors.New("ingredient does not exist")
	ErrDuplicateIngredient = errors.New("duplicate ingredient in submission")
	ErrAmountOutOfRange    = errors.New("amount must be between 1 and 32767")
	ErrCookingTimeRange    = errors.New("cooking_time must be between 1 and 1000 minutes")

	ErrAlreadyInFavorites = errors.New("recipe already in favorites")
	ErrNotInFavorites     = errors.New("recipe not in favorites")
	ErrAlreadyInCart      = errors.New("recipe already in shopping cart")
	ErrNotInCart          = errors.New("recipe not in shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1,max=32767"`
	}

	SaveRecipeRequest struct {
		Name        string                    `json:"name" validate:"required"`
		Text        string                    `json:"text" validate:"required"`
		ImageURL    string                    `json:"image_url" validate:"omitempty,url"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1,max=1000"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	RecipeFilter struct {
		TagSlugs          []string
		AuthorID          string
		IsFavorited       bool
		IsInShoppingCart  bool
		RequestingUserID  string
		Page              int
		Limit             int
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Author           UserResponse               `json:"author"`
		Name             string                     `json:"name"`
		Text             string                     `json:"text"`
		ImageURL         string                     `json:"image_url,omitempty"`
		CookingTime      int                        `json:"cooking_time"`
		PubDate          time.Time                  `json:"pub_date"`
		Tags             []TagResponse              `json:"tags"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	}

	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	UploadImageResponse struct {
		ImageURL string `json:"image_url"`
	}
)
