package shopping

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"foodshare/domain"
)

type (
	ShoppingService interface {
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingItem, error)
		RenderShoppingList(items []domain.ShoppingItem) string
	}

	shoppingService struct {
		shoppingRepository ShoppingRepository
		inflector          *Inflector
	}
)

func NewShoppingService(shoppingRepository ShoppingRepository, inflector *Inflector) ShoppingService {
	return &shoppingService{
		shoppingRepository: shoppingRepository,
		inflector:          inflector,
	}
}

func (s *shoppingService) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingItem, error) {
	lines, err := s.shoppingRepository.IngredientLinesForCartOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(lines), nil
}

// Aggregate groups ingredient lines by (name, unit), sums amounts and
// sorts by ingredient name, ties broken by ingredient id so the order
// is deterministic.
func Aggregate(lines []domain.IngredientLine) []domain.ShoppingItem {
	type key struct {
		name string
		unit string
	}

	totals := make(map[key]*domain.ShoppingItem)
	for _, line := range lines {
		k := key{name: line.Name, unit: line.Unit}
		if item, ok := totals[k]; ok {
			item.Amount += line.Amount
			continue
		}
		totals[k] = &domain.ShoppingItem{
			IngredientID: line.IngredientID,
			Name:         line.Name,
			Unit:         line.Unit,
			Amount:       line.Amount,
		}
	}

	items := make([]domain.ShoppingItem, 0, len(totals))
	for _, item := range totals {
		items = append(items, *item)
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].Name != items[b].Name {
			return items[a].Name < items[b].Name
		}
		return items[a].IngredientID < items[b].IngredientID
	})
	return items
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// RenderShoppingList produces the downloadable text document. An empty
// item list renders a header with no entries; whether that is an error
// is the handler's policy.
func (s *shoppingService) RenderShoppingList(items []domain.ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s - %d %s\n",
			i+1,
			capitalize(item.Name),
			item.Amount,
			s.inflector.Inflect(item.Unit, item.Amount),
		)
	}
	return b.String()
}
