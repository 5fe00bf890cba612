package entities

import (
	"time"

	"github.com/google/uuid"
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	AuthorID    uuid.UUID `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"not null" json:"name"`
	Text        string    `gorm:"type:text" json:"text"`
	ImageURL    string    `json:"image_url,omitempty"`
	CookingTime int       `gorm:"not null" json:"cooking_time"`
	PubDate     time.Time `gorm:"type:timestamp" json:"pub_date"`

	Author   *User               `gorm:"foreignKey:AuthorID"`
	Lines    []*RecipeIngredient `gorm:"foreignKey:RecipeID"`
	TagLinks []*RecipeTag        `gorm:"foreignKey:RecipeID"`
	Timestamp
}

// RecipeIngredient is one ingredient line of a recipe. Lines are only
// ever written as a full set inside the recipe transaction, never
// patched individually.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RecipeID     uuid.UUID `gorm:"uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int       `gorm:"not null" json:"amount"`

	Recipe     *Recipe     `gorm:"foreignKey:RecipeID"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
	Timestamp
}

type RecipeTag struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RecipeID uuid.UUID `gorm:"uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	TagID    uuid.UUID `gorm:"uniqueIndex:idx_recipe_tag" json:"tag_id"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
	Tag    *Tag    `gorm:"foreignKey:TagID"`
	Timestamp
}

const (
	MarkFavorite = "favorite"
	MarkCart     = "cart"
)

// UserRecipeMark is a pure existence record: a user keeping a recipe
// as a favorite or in the shopping cart. One table serves both kinds.
type UserRecipeMark struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID   uuid.UUID `gorm:"uniqueIndex:idx_user_recipe_kind" json:"user_id"`
	RecipeID uuid.UUID `gorm:"uniqueIndex:idx_user_recipe_kind" json:"recipe_id"`
	Kind     string    `gorm:"uniqueIndex:idx_user_recipe_kind;not null" json:"kind"`

	User   *User   `gorm:"foreignKey:UserID"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
	Timestamp
}
