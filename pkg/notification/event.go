// Package notification publishes recipe events to RabbitMQ and runs
// the background consumer that emails followers of an author when a
// new recipe is published.
package notification

const RecipePublishedQueue = "recipe.published"

// RecipePublishedEvent carries enough data for downstream consumers to
// notify followers without querying the recipe again.
type RecipePublishedEvent struct {
	RecipeID    string `json:"recipe_id"`
	RecipeName  string `json:"recipe_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	PublishedAt string `json:"published_at"`
}
