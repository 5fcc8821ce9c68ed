package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
)

func TestShoppingListService_Build(t *testing.T) {
	users := NewMockUserRepository()
	ingredients := NewMockIngredientRepository()
	recipes := NewMockRecipeRepository(ingredients)
	relations := NewMockRelationRepository()
	svc := NewShoppingListService(relations, recipes, users, zerolog.Nop())

	chef := domain.NewUser("chef@example.com", "chef", "Anna", "Smith", "hash")
	if err := users.Create(context.Background(), chef); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	buyer := domain.NewUser("buyer@example.com", "buyer", "Bob", "Jones", "hash")
	if err := users.Create(context.Background(), buyer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	flour := ingredients.Add("flour", "g")
	milk := ingredients.Add("milk", "ml")
	salt := ingredients.Add("salt", "g")

	pancakes := domain.NewRecipe(chef.ID, "Pancakes", "steps", 20, "img.png")
	err := recipes.Create(context.Background(), pancakes, []domain.IngredientLine{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: milk.ID, Amount: 300},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bread := domain.NewRecipe(chef.ID, "Bread", "steps", 60, "img.png")
	err = recipes.Create(context.Background(), bread, []domain.IngredientLine{
		{IngredientID: flour.ID, Amount: 500},
		{IngredientID: salt.ID, Amount: 10},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	addToCart := func(recipeID int64) {
		t.Helper()
		err := relations.Add(context.Background(), domain.Relation{
			SubjectID: buyer.ID, ObjectID: recipeID, Kind: domain.RelationShoppingCart,
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	addToCart(pancakes.ID)
	addToCart(bread.ID)

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	got, err := svc.Build(context.Background(), buyer.ID, now)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := "Shopping list for 2025-06-15:\n" +
		"\n" +
		"Ingredients:\n" +
		"1. Flour: 700 g\n" +
		"2. Milk: 300 ml\n" +
		"3. Salt: 10 g\n" +
		"\n" +
		"Recipes in cart:\n" +
		"- Pancakes (author: Anna Smith)\n" +
		"- Bread (author: Anna Smith)\n"
	if got != want {
		t.Errorf("Build() =\n%s\nwant:\n%s", got, want)
	}
}

func TestShoppingListService_Build_FirstUnitWins(t *testing.T) {
	users := NewMockUserRepository()
	ingredients := NewMockIngredientRepository()
	recipes := NewMockRecipeRepository(ingredients)
	relations := NewMockRelationRepository()
	svc := NewShoppingListService(relations, recipes, users, zerolog.Nop())

	chef := domain.NewUser("chef@example.com", "chef", "Anna", "Smith", "hash")
	if err := users.Create(context.Background(), chef); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same display name with two units in the catalog.
	grams := ingredients.Add("butter", "g")
	spoons := ingredients.Add("butter", "tbsp")

	recipe := domain.NewRecipe(chef.ID, "Toast", "steps", 5, "img.png")
	err := recipes.Create(context.Background(), recipe, []domain.IngredientLine{
		{IngredientID: grams.ID, Amount: 50},
		{IngredientID: spoons.ID, Amount: 2},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = relations.Add(context.Background(), domain.Relation{
		SubjectID: chef.ID, ObjectID: recipe.ID, Kind: domain.RelationShoppingCart,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := svc.Build(context.Background(), chef.ID, time.Now())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Amounts merge under the display name; the first unit seen sticks.
	if !strings.Contains(got, "1. Butter: 52 g\n") {
		t.Errorf("Build() missing merged butter line:\n%s", got)
	}
	if strings.Contains(got, "tbsp") {
		t.Errorf("Build() kept the second unit:\n%s", got)
	}
}

func TestShoppingListService_Build_EmptyCart(t *testing.T) {
	users := NewMockUserRepository()
	recipes := NewMockRecipeRepository(nil)
	relations := NewMockRelationRepository()
	svc := NewShoppingListService(relations, recipes, users, zerolog.Nop())

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	got, err := svc.Build(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := "Shopping list for 2025-06-15:\n\nIngredients:\n\nRecipes in cart:\n"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}
