package recipe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"foodshare/domain"
	"foodshare/entities"
	"foodshare/internal/utils/storage"
	"foodshare/pkg/catalog"
	"foodshare/pkg/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error)
		GetRecipeByID(ctx context.Context, recipeID string, requestingUserID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		UploadRecipeImage(ctx context.Context, image *multipart.FileHeader, userID string) (domain.UploadImageResponse, error)

		AddMark(ctx context.Context, recipeID, userID, kind string) (domain.RecipeShortResponse, error)
		RemoveMark(ctx context.Context, recipeID, userID, kind string) error
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		s3                storage.AwsS3
		publisher         notification.Publisher
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	s3 storage.AwsS3,
	publisher notification.Publisher,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		s3:                s3,
		publisher:         publisher,
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// validated holds a submission after all checks passed, ready for the
// transactional write.
type validated struct {
	name   string
	tagIDs []uuid.UUID
	lines  []*entities.RecipeIngredient
}

// validate runs the submission checks in a fixed order: name, tags,
// ingredients, cooking time. Nothing is written until every check has
// passed.
func (s *recipeService) validate(ctx context.Context, req domain.SaveRecipeRequest) (validated, error) {
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < domain.MinNameLength {
		return validated{}, domain.ErrNameTooShort
	}
	name = capitalize(name)

	if len(req.Tags) == 0 {
		return validated{}, domain.ErrNoTags
	}
	seenTags := make(map[string]bool, len(req.Tags))
	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	for _, rawID := range req.Tags {
		if seenTags[rawID] {
			return validated{}, fmt.Errorf("%w: %s", domain.ErrDuplicateTag, rawID)
		}
		seenTags[rawID] = true

		id, err := uuid.Parse(rawID)
		if err != nil {
			return validated{}, fmt.Errorf("%w: %s", domain.ErrTagNotFound, rawID)
		}
		tagIDs = append(tagIDs, id)
	}
	tags, err := s.catalogRepository.GetTagsByIDs(ctx, req.Tags)
	if err != nil {
		return validated{}, err
	}
	if len(tags) != len(tagIDs) {
		existing := make(map[string]bool, len(tags))
		for _, tag := range tags {
			existing[tag.ID.String()] = true
		}
		for _, rawID := range req.Tags {
			if !existing[rawID] {
				return validated{}, fmt.Errorf("%w: %s", domain.ErrTagNotFound, rawID)
			}
		}
	}

	if len(req.Ingredients) == 0 {
		return validated{}, domain.ErrNoIngredients
	}
	seenIngredients := make(map[string]bool, len(req.Ingredients))
	ingredientIDs := make([]string, 0, len(req.Ingredients))
	lines := make([]*entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, entry := range req.Ingredients {
		if seenIngredients[entry.ID] {
			return validated{}, fmt.Errorf("%w: %s", domain.ErrDuplicateIngredient, entry.ID)
		}
		seenIngredients[entry.ID] = true

		if entry.Amount < domain.MinAmount || entry.Amount > domain.MaxAmount {
			return validated{}, fmt.Errorf("%w: ingredient %s", domain.ErrAmountOutOfRange, entry.ID)
		}

		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return validated{}, fmt.Errorf("%w: %s", domain.ErrIngredientNotFound, entry.ID)
		}
		ingredientIDs = append(ingredientIDs, entry.ID)
		lines = append(lines, &entities.RecipeIngredient{
			IngredientID: id,
			Amount:       entry.Amount,
		})
	}
	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return validated{}, err
	}
	if len(ingredients) != len(ingredientIDs) {
		existing := make(map[string]bool, len(ingredients))
		for _, ingredient := range ingredients {
			existing[ingredient.ID.String()] = true
		}
		for _, rawID := range ingredientIDs {
			if !existing[rawID] {
				return validated{}, fmt.Errorf("%w: %s", domain.ErrIngredientNotFound, rawID)
			}
		}
	}

	if req.CookingTime < domain.MinCookingTime || req.CookingTime > domain.MaxCookingTime {
		return validated{}, domain.ErrCookingTimeRange
	}

	return validated{name: name, tagIDs: tagIDs, lines: lines}, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	checked, err := s.validate(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        checked.name,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		CookingTime: req.CookingTime,
		PubDate:     time.Now(),
	}

	if err := s.recipeRepository.CreateRecipeWithAssociations(ctx, recipe, checked.lines, checked.tagIDs); err != nil {
		return domain.RecipeResponse{}, err
	}

	res, err := s.GetRecipeByID(ctx, recipe.ID.String(), userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	s.publishRecipe(ctx, res)
	return res, nil
}

// publishRecipe notifies followers about a new recipe. Best-effort:
// the broker being down never fails the create request.
func (s *recipeService) publishRecipe(ctx context.Context, res domain.RecipeResponse) {
	event := notification.RecipePublishedEvent{
		RecipeID:    res.ID,
		RecipeName:  res.Name,
		AuthorID:    res.Author.ID,
		AuthorName:  res.Author.Username,
		PublishedAt: res.PubDate.Format(time.RFC3339),
	}
	if err := s.publisher.PublishRecipePublished(ctx, event); err != nil {
		log.Printf("publish recipe event: %v", err)
	}
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if existing.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	checked, err := s.validate(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL := existing.ImageURL
	if req.ImageURL != "" {
		imageURL = req.ImageURL
	}

	updated := &entities.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        checked.name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}

	if err := s.recipeRepository.UpdateRecipeWithAssociations(ctx, updated, checked.lines, checked.tagIDs); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeByID(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if existing.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, requestingUserID string) domain.RecipeResponse {
	tags := make([]domain.TagResponse, 0, len(recipe.TagLinks))
	for _, link := range recipe.TagLinks {
		if link.Tag == nil {
			continue
		}
		tags = append(tags, domain.TagResponse{
			ID:    link.Tag.ID.String(),
			Name:  link.Tag.Name,
			Color: link.Tag.Color,
			Slug:  link.Tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		if line.Ingredient == nil {
			continue
		}
		ingredients = append(ingredients, domain.RecipeIngredientResponse{
			ID:              line.Ingredient.ID.String(),
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	author := domain.UserResponse{}
	if recipe.Author != nil {
		author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Username:  recipe.Author.Username,
			Email:     recipe.Author.Email,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			AvatarURL: recipe.Author.AvatarURL,
		}
	}

	isFavorited, isInCart := false, false
	if requestingUserID != "" {
		isFavorited, _ = s.recipeRepository.HasMark(ctx, requestingUserID, recipe.ID.String(), entities.MarkFavorite)
		isInCart, _ = s.recipeRepository.HasMark(ctx, requestingUserID, recipe.ID.String(), entities.MarkCart)
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Author:           author,
		Name:             recipe.Name,
		Text:             recipe.Text,
		ImageURL:         recipe.ImageURL,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, s.toRecipeResponse(ctx, recipe, filter.RequestingUserID))
	}
	return result, count, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, recipeID string, requestingUserID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, requestingUserID), nil
}

func (s *recipeService) UploadRecipeImage(ctx context.Context, image *multipart.FileHeader, userID string) (domain.UploadImageResponse, error) {
	fileName := fmt.Sprintf("recipe-%s-%s", userID, uuid.New().String())
	objectKey, err := s.s3.UploadFile(fileName, image, "recipes", storage.AllowImage...)
	if err != nil {
		return domain.UploadImageResponse{}, err
	}
	return domain.UploadImageResponse{ImageURL: s.s3.GetPublicLinkKey(objectKey)}, nil
}

func (s *recipeService) AddMark(ctx context.Context, recipeID, userID, kind string) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeShortResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeShortResponse{}, err
	}

	exists, err := s.recipeRepository.HasMark(ctx, userID, recipeID, kind)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if exists {
		if kind == entities.MarkFavorite {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInFavorites
		}
		return domain.RecipeShortResponse{}, domain.ErrAlreadyInCart
	}

	if err := s.recipeRepository.AddMark(ctx, userID, recipeID, kind); err != nil {
		return domain.RecipeShortResponse{}, err
	}

	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *recipeService) RemoveMark(ctx context.Context, recipeID, userID, kind string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	affected, err := s.recipeRepository.RemoveMark(ctx, userID, recipeID, kind)
	if err != nil {
		return err
	}
	if affected == 0 {
		if kind == entities.MarkFavorite {
			return domain.ErrNotInFavorites
		}
		return domain.ErrNotInCart
	}
	return nil
}
