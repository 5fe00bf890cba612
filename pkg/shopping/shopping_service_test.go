package shopping

import (
	"context"
	"testing"

	"foodshare/domain"
)

type fakeShoppingRepo struct {
	lines []domain.IngredientLine
	err   error
}

func (f *fakeShoppingRepo) IngredientLinesForCartOwner(ctx context.Context, userID string) ([]domain.IngredientLine, error) {
	return f.lines, f.err
}

func TestAggregateSumsPerIngredientAndUnit(t *testing.T) {
	// Cart: R1 = {flour: 200 g, egg: 2 pcs}, R2 = {flour: 100 g, milk: 1 cup}
	lines := []domain.IngredientLine{
		{IngredientID: "i-flour", Name: "flour", Unit: "g", Amount: 200},
		{IngredientID: "i-egg", Name: "egg", Unit: "pcs", Amount: 2},
		{IngredientID: "i-flour", Name: "flour", Unit: "g", Amount: 100},
		{IngredientID: "i-milk", Name: "milk", Unit: "cup", Amount: 1},
	}

	items := Aggregate(lines)

	want := []domain.ShoppingItem{
		{IngredientID: "i-egg", Name: "egg", Unit: "pcs", Amount: 2},
		{IngredientID: "i-flour", Name: "flour", Unit: "g", Amount: 300},
		{IngredientID: "i-milk", Name: "milk", Unit: "cup", Amount: 1},
	}

	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestAggregateKeepsDistinctUnitsApart(t *testing.T) {
	lines := []domain.IngredientLine{
		{IngredientID: "i-1", Name: "sugar", Unit: "g", Amount: 50},
		{IngredientID: "i-2", Name: "sugar", Unit: "cup", Amount: 1},
	}

	items := Aggregate(lines)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (same name, different units)", len(items))
	}
}

func TestAggregateEmptyCart(t *testing.T) {
	items := Aggregate(nil)
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}

func TestAggregateTieBreaksByIngredientID(t *testing.T) {
	lines := []domain.IngredientLine{
		{IngredientID: "i-b", Name: "salt", Unit: "g", Amount: 1},
		{IngredientID: "i-a", Name: "salt", Unit: "pinch", Amount: 1},
	}

	items := Aggregate(lines)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].IngredientID != "i-a" || items[1].IngredientID != "i-b" {
		t.Errorf("tie order = [%s, %s], want [i-a, i-b]", items[0].IngredientID, items[1].IngredientID)
	}
}

func TestGetShoppingListUsesRepository(t *testing.T) {
	repo := &fakeShoppingRepo{lines: []domain.IngredientLine{
		{IngredientID: "i-1", Name: "butter", Unit: "g", Amount: 20},
		{IngredientID: "i-1", Name: "butter", Unit: "g", Amount: 30},
	}}
	svc := NewShoppingService(repo, NewInflector())

	items, err := svc.GetShoppingList(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Amount != 50 {
		t.Fatalf("got %+v, want one butter item with amount 50", items)
	}
}

func TestRenderShoppingList(t *testing.T) {
	svc := NewShoppingService(&fakeShoppingRepo{}, NewInflector())

	items := []domain.ShoppingItem{
		{IngredientID: "i-egg", Name: "egg", Unit: "pcs", Amount: 2},
		{IngredientID: "i-flour", Name: "flour", Unit: "g", Amount: 300},
		{IngredientID: "i-milk", Name: "milk", Unit: "cup", Amount: 1},
	}

	got := svc.RenderShoppingList(items)
	want := "Shopping list:\n\n" +
		"1. Egg - 2 pcs\n" +
		"2. Flour - 300 g\n" +
		"3. Milk - 1 cup\n"
	if got != want {
		t.Errorf("rendered list:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderShoppingListEmpty(t *testing.T) {
	svc := NewShoppingService(&fakeShoppingRepo{}, NewInflector())

	got := svc.RenderShoppingList(nil)
	if got != "Shopping list:\n\n" {
		t.Errorf("rendered empty list = %q", got)
	}
}

func TestInflect(t *testing.T) {
	inflector := NewInflector()

	tests := []struct {
		unit  string
		count int
		want  string
	}{
		{"cup", 1, "cup"},
		{"cup", 3, "cups"},
		{"g", 100, "g"},
		{"pcs", 5, "pcs"},
		{"pinch", 2, "pinches"},
		{"leaf", 4, "leaves"},
		{"box", 2, "boxes"},
		{"carrot", 2, "carrots"},
		{"Tablespoon", 2, "tablespoons"},
		{"", 2, ""},
	}

	for _, tt := range tests {
		if got := inflector.Inflect(tt.unit, tt.count); got != tt.want {
			t.Errorf("Inflect(%q, %d) = %q, want %q", tt.unit, tt.count, got, tt.want)
		}
	}
}
