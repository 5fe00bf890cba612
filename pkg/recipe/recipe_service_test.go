package recipe

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"testing"

	"foodshare/domain"
	"foodshare/entities"
	"foodshare/pkg/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeCatalogRepository struct {
	tags        map[string]*entities.Tag
	ingredients map[string]*entities.Ingredient
}

func (f *fakeCatalogRepository) GetTags(ctx context.Context) ([]*entities.Tag, error) {
	tags := make([]*entities.Tag, 0, len(f.tags))
	for _, tag := range f.tags {
		tags = append(tags, tag)
	}
	return tags, nil
}

func (f *fakeCatalogRepository) GetTagByID(ctx context.Context, id string) (*entities.Tag, error) {
	if tag, ok := f.tags[id]; ok {
		return tag, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) GetTagsByIDs(ctx context.Context, ids []string) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (f *fakeCatalogRepository) GetIngredients(ctx context.Context, namePrefix string) ([]*entities.Ingredient, error) {
	ingredients := make([]*entities.Ingredient, 0, len(f.ingredients))
	for _, ingredient := range f.ingredients {
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}

func (f *fakeCatalogRepository) GetIngredientByID(ctx context.Context, id string) (*entities.Ingredient, error) {
	if ingredient, ok := f.ingredients[id]; ok {
		return ingredient, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			ingredients = append(ingredients, ingredient)
		}
	}
	return ingredients, nil
}

type fakeRecipeRepository struct {
	catalog *fakeCatalogRepository
	authors map[string]*entities.User

	recipes map[string]*entities.Recipe
	lines   map[string][]*entities.RecipeIngredient
	tagIDs  map[string][]uuid.UUID
	marks   map[string]bool

	createCalls int
	updateCalls int
}

func newFakeRecipeRepository(catalog *fakeCatalogRepository) *fakeRecipeRepository {
	return &fakeRecipeRepository{
		catalog: catalog,
		authors: make(map[string]*entities.User),
		recipes: make(map[string]*entities.Recipe),
		lines:   make(map[string][]*entities.RecipeIngredient),
		tagIDs:  make(map[string][]uuid.UUID),
		marks:   make(map[string]bool),
	}
}

func markKey(userID, recipeID, kind string) string {
	return userID + "|" + recipeID + "|" + kind
}

func (f *fakeRecipeRepository) CreateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	f.createCalls++
	id := recipe.ID.String()
	f.recipes[id] = recipe
	f.lines[id] = lines
	f.tagIDs[id] = tagIDs
	return nil
}

func (f *fakeRecipeRepository) UpdateRecipeWithAssociations(ctx context.Context, recipe *entities.Recipe, lines []*entities.RecipeIngredient, tagIDs []uuid.UUID) error {
	f.updateCalls++
	id := recipe.ID.String()
	existing, ok := f.recipes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	recipe.PubDate = existing.PubDate
	f.recipes[id] = recipe
	f.lines[id] = lines
	f.tagIDs[id] = tagIDs
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	stored, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	recipe := *stored
	recipe.Author = f.authors[stored.AuthorID.String()]
	recipe.Lines = nil
	for _, line := range f.lines[id] {
		resolved := *line
		resolved.Ingredient = f.catalog.ingredients[line.IngredientID.String()]
		recipe.Lines = append(recipe.Lines, &resolved)
	}
	recipe.TagLinks = nil
	for _, tagID := range f.tagIDs[id] {
		recipe.TagLinks = append(recipe.TagLinks, &entities.RecipeTag{
			RecipeID: stored.ID,
			TagID:    tagID,
			Tag:      f.catalog.tags[tagID.String()],
		})
	}
	return &recipe, nil
}

func (f *fakeRecipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	for id := range f.recipes {
		recipe, err := f.GetRecipeByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, int64(len(recipes)), nil
}

func (f *fakeRecipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	delete(f.recipes, id)
	delete(f.lines, id)
	delete(f.tagIDs, id)
	return nil
}

func (f *fakeRecipeRepository) AddMark(ctx context.Context, userID, recipeID, kind string) error {
	f.marks[markKey(userID, recipeID, kind)] = true
	return nil
}

func (f *fakeRecipeRepository) RemoveMark(ctx context.Context, userID, recipeID, kind string) (int64, error) {
	key := markKey(userID, recipeID, kind)
	if !f.marks[key] {
		return 0, nil
	}
	delete(f.marks, key)
	return 1, nil
}

func (f *fakeRecipeRepository) HasMark(ctx context.Context, userID, recipeID, kind string) (bool, error) {
	return f.marks[markKey(userID, recipeID, kind)], nil
}

type fakeS3 struct{}

func (fakeS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	return folder + "/" + fileName, nil
}
func (fakeS3) UpdateFile(objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	return objectKey, nil
}
func (fakeS3) DeleteFile(objectKey string) error      { return nil }
func (fakeS3) GetPublicLinkKey(objectKey string) string { return "https://cdn.test/" + objectKey }
func (fakeS3) GetObjectKeyFromLink(link string) string  { return link }

type fakePublisher struct {
	events []notification.RecipePublishedEvent
}

func (f *fakePublisher) PublishRecipePublished(ctx context.Context, event notification.RecipePublishedEvent) error {
	f.events = append(f.events, event)
	return nil
}

type serviceFixture struct {
	service   RecipeService
	repo      *fakeRecipeRepository
	publisher *fakePublisher

	authorID     string
	breakfastTag *entities.Tag
	dinnerTag    *entities.Tag
	flour        *entities.Ingredient
	egg          *entities.Ingredient
	milk         *entities.Ingredient
}

func newServiceFixture() *serviceFixture {
	catalog := &fakeCatalogRepository{
		tags:        make(map[string]*entities.Tag),
		ingredients: make(map[string]*entities.Ingredient),
	}

	breakfast := &entities.Tag{ID: uuid.New(), Name: "Breakfast", Color: "#FFAA00", Slug: "breakfast"}
	dinner := &entities.Tag{ID: uuid.New(), Name: "Dinner", Color: "#0000FF", Slug: "dinner"}
	catalog.tags[breakfast.ID.String()] = breakfast
	catalog.tags[dinner.ID.String()] = dinner

	flour := &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	egg := &entities.Ingredient{ID: uuid.New(), Name: "egg", MeasurementUnit: "pcs"}
	milk := &entities.Ingredient{ID: uuid.New(), Name: "milk", MeasurementUnit: "cup"}
	catalog.ingredients[flour.ID.String()] = flour
	catalog.ingredients[egg.ID.String()] = egg
	catalog.ingredients[milk.ID.String()] = milk

	repo := newFakeRecipeRepository(catalog)
	author := &entities.User{ID: uuid.New(), Username: "chef", Email: "chef@example.com"}
	repo.authors[author.ID.String()] = author

	publisher := &fakePublisher{}
	return &serviceFixture{
		service:      NewRecipeService(repo, catalog, fakeS3{}, publisher),
		repo:         repo,
		publisher:    publisher,
		authorID:     author.ID.String(),
		breakfastTag: breakfast,
		dinnerTag:    dinner,
		flour:        flour,
		egg:          egg,
		milk:         milk,
	}
}

func (f *serviceFixture) validRequest() domain.SaveRecipeRequest {
	return domain.SaveRecipeRequest{
		Name:        "pancakes with syrup",
		Text:        "Mix and fry.",
		ImageURL:    "https://cdn.test/recipes/pancakes.png",
		CookingTime: 20,
		Tags:        []string{f.breakfastTag.ID.String()},
		Ingredients: []domain.IngredientAmountRequest{
			{ID: f.flour.ID.String(), Amount: 200},
			{ID: f.egg.ID.String(), Amount: 2},
		},
	}
}

func ingredientIDs(res domain.RecipeResponse) []string {
	ids := make([]string, 0, len(res.Ingredients))
	for _, ingredient := range res.Ingredients {
		ids = append(ids, ingredient.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestCreateRecipe(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	res, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if res.Name != "Pancakes with syrup" {
		t.Errorf("name = %q, want %q", res.Name, "Pancakes with syrup")
	}
	if res.Author.Username != "chef" {
		t.Errorf("author = %q, want chef", res.Author.Username)
	}
	if len(res.Tags) != 1 || res.Tags[0].Slug != "breakfast" {
		t.Errorf("tags = %+v, want single breakfast tag", res.Tags)
	}

	want := []string{f.egg.ID.String(), f.flour.ID.String()}
	sort.Strings(want)
	got := ingredientIDs(res)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ingredient ids = %v, want %v", got, want)
	}
	if res.IsFavorited || res.IsInShoppingCart {
		t.Errorf("fresh recipe marked: favorited=%v cart=%v", res.IsFavorited, res.IsInShoppingCart)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.publisher.events))
	}
	if f.publisher.events[0].RecipeName != "Pancakes with syrup" {
		t.Errorf("event recipe name = %q", f.publisher.events[0].RecipeName)
	}
}

func TestCreateRecipeTrimsName(t *testing.T) {
	f := newServiceFixture()
	req := f.validRequest()
	req.Name = "  soup of the day  "

	res, err := f.service.CreateRecipe(context.Background(), req, f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if res.Name != "Soup of the day" {
		t.Errorf("name = %q, want %q", res.Name, "Soup of the day")
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newServiceFixture()

	tests := []struct {
		name    string
		mutate  func(req *domain.SaveRecipeRequest)
		wantErr error
	}{
		{
			name:    "name too short",
			mutate:  func(req *domain.SaveRecipeRequest) { req.Name = " ab " },
			wantErr: domain.ErrNameTooShort,
		},
		{
			name:    "no tags",
			mutate:  func(req *domain.SaveRecipeRequest) { req.Tags = nil },
			wantErr: domain.ErrNoTags,
		},
		{
			name: "duplicate tag",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Tags = append(req.Tags, req.Tags[0])
			},
			wantErr: domain.ErrDuplicateTag,
		},
		{
			name: "unknown tag",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Tags = []string{uuid.New().String()}
			},
			wantErr: domain.ErrTagNotFound,
		},
		{
			name:    "no ingredients",
			mutate:  func(req *domain.SaveRecipeRequest) { req.Ingredients = nil },
			wantErr: domain.ErrNoIngredients,
		},
		{
			name: "duplicate ingredient",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Ingredients = append(req.Ingredients, req.Ingredients[0])
			},
			wantErr: domain.ErrDuplicateIngredient,
		},
		{
			name: "unknown ingredient",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Ingredients = []domain.IngredientAmountRequest{{ID: uuid.New().String(), Amount: 10}}
			},
			wantErr: domain.ErrIngredientNotFound,
		},
		{
			name: "amount below minimum",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Ingredients[0].Amount = 0
			},
			wantErr: domain.ErrAmountOutOfRange,
		},
		{
			name: "amount above maximum",
			mutate: func(req *domain.SaveRecipeRequest) {
				req.Ingredients[0].Amount = 32768
			},
			wantErr: domain.ErrAmountOutOfRange,
		},
		{
			name:    "cooking time zero",
			mutate:  func(req *domain.SaveRecipeRequest) { req.CookingTime = 0 },
			wantErr: domain.ErrCookingTimeRange,
		},
		{
			name:    "cooking time above maximum",
			mutate:  func(req *domain.SaveRecipeRequest) { req.CookingTime = 1001 },
			wantErr: domain.ErrCookingTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.validRequest()
			tt.mutate(&req)

			before := f.repo.createCalls
			_, err := f.service.CreateRecipe(context.Background(), req, f.authorID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if f.repo.createCalls != before {
				t.Errorf("rejected submission reached the repository")
			}
		})
	}
}

func TestCreateRecipeCookingTimeBoundsAccepted(t *testing.T) {
	f := newServiceFixture()

	for _, minutes := range []int{domain.MinCookingTime, domain.MaxCookingTime} {
		req := f.validRequest()
		req.CookingTime = minutes
		if _, err := f.service.CreateRecipe(context.Background(), req, f.authorID); err != nil {
			t.Errorf("cooking time %d rejected: %v", minutes, err)
		}
	}
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	update := f.validRequest()
	update.Tags = []string{f.dinnerTag.ID.String()}
	update.Ingredients = []domain.IngredientAmountRequest{{ID: f.milk.ID.String(), Amount: 1}}

	res, err := f.service.UpdateRecipe(ctx, created.ID, update, f.authorID)
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	if len(res.Ingredients) != 1 || res.Ingredients[0].ID != f.milk.ID.String() {
		t.Errorf("ingredients = %+v, want only milk", res.Ingredients)
	}
	if len(res.Tags) != 1 || res.Tags[0].Slug != "dinner" {
		t.Errorf("tags = %+v, want only dinner", res.Tags)
	}
}

func TestRejectedUpdateLeavesRecipeUnchanged(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	update := f.validRequest()
	update.Ingredients = append(update.Ingredients, update.Ingredients[0])
	if _, err := f.service.UpdateRecipe(ctx, created.ID, update, f.authorID); !errors.Is(err, domain.ErrDuplicateIngredient) {
		t.Fatalf("err = %v, want %v", err, domain.ErrDuplicateIngredient)
	}

	after, err := f.service.GetRecipeByID(ctx, created.ID, f.authorID)
	if err != nil {
		t.Fatalf("GetRecipeByID: %v", err)
	}
	if len(after.Ingredients) != len(created.Ingredients) || after.Name != created.Name {
		t.Errorf("recipe changed after rejected update: %+v", after)
	}
}

func TestUpdateRecipeKeepsImageWhenOmitted(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	update := f.validRequest()
	update.ImageURL = ""

	res, err := f.service.UpdateRecipe(ctx, created.ID, update, f.authorID)
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}
	if res.ImageURL != created.ImageURL {
		t.Errorf("image = %q, want kept %q", res.ImageURL, created.ImageURL)
	}
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	_, err = f.service.UpdateRecipe(ctx, created.ID, f.validRequest(), uuid.New().String())
	if !errors.Is(err, domain.ErrNotRecipeAuthor) {
		t.Errorf("err = %v, want %v", err, domain.ErrNotRecipeAuthor)
	}
}

func TestUpdateRecipeNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.UpdateRecipe(context.Background(), uuid.New().String(), f.validRequest(), f.authorID)
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("err = %v, want %v", err, domain.ErrRecipeNotFound)
	}
}

func TestDeleteRecipe(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if err := f.service.DeleteRecipe(ctx, created.ID, uuid.New().String()); !errors.Is(err, domain.ErrNotRecipeAuthor) {
		t.Errorf("stranger delete err = %v, want %v", err, domain.ErrNotRecipeAuthor)
	}

	if err := f.service.DeleteRecipe(ctx, created.ID, f.authorID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, err := f.service.GetRecipeByID(ctx, created.ID, f.authorID); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("deleted recipe still readable, err = %v", err)
	}
}

func TestMarks(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	reader := uuid.New().String()

	tests := []struct {
		name        string
		kind        string
		wantDupErr  error
		wantGoneErr error
	}{
		{"favorite", entities.MarkFavorite, domain.ErrAlreadyInFavorites, domain.ErrNotInFavorites},
		{"shopping cart", entities.MarkCart, domain.ErrAlreadyInCart, domain.ErrNotInCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.service.RemoveMark(ctx, created.ID, reader, tt.kind); !errors.Is(err, tt.wantGoneErr) {
				t.Errorf("remove before add err = %v, want %v", err, tt.wantGoneErr)
			}

			short, err := f.service.AddMark(ctx, created.ID, reader, tt.kind)
			if err != nil {
				t.Fatalf("AddMark: %v", err)
			}
			if short.ID != created.ID || short.Name != created.Name {
				t.Errorf("short response = %+v", short)
			}

			if _, err := f.service.AddMark(ctx, created.ID, reader, tt.kind); !errors.Is(err, tt.wantDupErr) {
				t.Errorf("second add err = %v, want %v", err, tt.wantDupErr)
			}

			if err := f.service.RemoveMark(ctx, created.ID, reader, tt.kind); err != nil {
				t.Fatalf("RemoveMark: %v", err)
			}
		})
	}
}

func TestMarksVisibleInResponse(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.validRequest(), f.authorID)
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	reader := uuid.New().String()

	if _, err := f.service.AddMark(ctx, created.ID, reader, entities.MarkFavorite); err != nil {
		t.Fatalf("AddMark: %v", err)
	}

	res, err := f.service.GetRecipeByID(ctx, created.ID, reader)
	if err != nil {
		t.Fatalf("GetRecipeByID: %v", err)
	}
	if !res.IsFavorited || res.IsInShoppingCart {
		t.Errorf("flags = favorited:%v cart:%v, want favorited only", res.IsFavorited, res.IsInShoppingCart)
	}

	anonymous, err := f.service.GetRecipeByID(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("GetRecipeByID anonymous: %v", err)
	}
	if anonymous.IsFavorited || anonymous.IsInShoppingCart {
		t.Errorf("anonymous flags set: %+v", anonymous)
	}
}

func TestMarkUnknownRecipe(t *testing.T) {
	f := newServiceFixture()

	if _, err := f.service.AddMark(context.Background(), uuid.New().String(), f.authorID, entities.MarkFavorite); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("err = %v, want %v", err, domain.ErrRecipeNotFound)
	}
}

func TestValidateChecksNameBeforeCatalog(t *testing.T) {
	f := newServiceFixture()

	req := f.validRequest()
	req.Name = "ab"
	req.Tags = []string{uuid.New().String()}

	_, err := f.service.CreateRecipe(context.Background(), req, f.authorID)
	if !errors.Is(err, domain.ErrNameTooShort) {
		t.Errorf("err = %v, want name check to run first", err)
	}
}

func TestDuplicateTagErrorNamesTheTag(t *testing.T) {
	f := newServiceFixture()

	req := f.validRequest()
	req.Tags = append(req.Tags, req.Tags[0])

	_, err := f.service.CreateRecipe(context.Background(), req, f.authorID)
	if err == nil || !errors.Is(err, domain.ErrDuplicateTag) {
		t.Fatalf("err = %v, want %v", err, domain.ErrDuplicateTag)
	}
	want := fmt.Sprintf("%s: %s", domain.ErrDuplicateTag.Error(), req.Tags[0])
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}
