package service

import (
	"errors"
	"testing"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
)

func seedFood(t *testing.T, svc *FoodService, name, level string, calories float64) *db.Food {
	t.Helper()
	food, err := svc.Create(FoodInput{
		Name:        name,
		FodmapLevel: level,
		Nutrition:   db.NutritionFacts{Calories: calories, Protein: calories / 10},
	})
	if err != nil {
		t.Fatalf("failed to seed food %s: %v", name, err)
	}
	return food
}

func TestRecipeNutritionPerServing(t *testing.T) {
	gdb, cleanup := setupFoodTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	oats := seedFood(t, foods, "燕麦", "low", 100)
	honey := seedFood(t, foods, "蜂蜜", "high", 50)

	svc := NewRecipeService(gdb)
	recipe, err := svc.Create(RecipeInput{
		Name:     "蜂蜜燕麦粥",
		Servings: 2,
		Items: []RecipeItemInput{
			{FoodID: oats.ID, Quantity: 2},
			{FoodID: honey.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(recipe.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(recipe.Items))
	}

	nutrition, err := svc.Nutrition(recipe.ID)
	if err != nil {
		t.Fatalf("Nutrition returned error: %v", err)
	}

	// (100×2 + 50×1) / 2 份 = 125
	if nutrition.PerServing.Calories != 125 {
		t.Fatalf("expected 125 calories per serving, got %.1f", nutrition.PerServing.Calories)
	}
	// 等级取配料最高档
	if nutrition.FodmapLevel != db.FodmapLevelHigh {
		t.Fatalf("expected high fodmap level, got %s", nutrition.FodmapLevel)
	}
}

func TestRecipeValidation(t *testing.T) {
	gdb, cleanup := setupFoodTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	rice := seedFood(t, foods, "米饭", "low", 200)

	svc := NewRecipeService(gdb)

	cases := []struct {
		name  string
		input RecipeInput
		want  error
	}{
		{
			name:  "blank name",
			input: RecipeInput{Name: " ", Servings: 1, Items: []RecipeItemInput{{FoodID: rice.ID, Quantity: 1}}},
			want:  ErrRecipeInvalid,
		},
		{
			name:  "zero servings",
			input: RecipeInput{Name: "饭团", Servings: 0, Items: []RecipeItemInput{{FoodID: rice.ID, Quantity: 1}}},
			want:  ErrRecipeInvalid,
		},
		{
			name:  "no items",
			input: RecipeInput{Name: "饭团", Servings: 1},
			want:  ErrRecipeInvalid,
		},
		{
			name:  "zero quantity",
			input: RecipeInput{Name: "饭团", Servings: 1, Items: []RecipeItemInput{{FoodID: rice.ID, Quantity: 0}}},
			want:  ErrRecipeInvalid,
		},
		{
			name:  "missing food",
			input: RecipeInput{Name: "饭团", Servings: 1, Items: []RecipeItemInput{{FoodID: rice.ID + 99, Quantity: 1}}},
			want:  ErrFoodNotFound,
		},
	}

	for _, tc := range cases {
		if _, err := svc.Create(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestRecipeUpdateReplacesItems(t *testing.T) {
	gdb, cleanup := setupFoodTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	rice := seedFood(t, foods, "米饭", "low", 200)
	egg := seedFood(t, foods, "鸡蛋", "low", 70)

	svc := NewRecipeService(gdb)
	recipe, err := svc.Create(RecipeInput{
		Name:     "蛋炒饭",
		Servings: 1,
		Items:    []RecipeItemInput{{FoodID: rice.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(recipe.ID, RecipeInput{
		Name:     "双蛋炒饭",
		Servings: 2,
		Items: []RecipeItemInput{
			{FoodID: rice.ID, Quantity: 1},
			{FoodID: egg.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "双蛋炒饭" || len(updated.Items) != 2 {
		t.Fatalf("unexpected update result: %s with %d items", updated.Name, len(updated.Items))
	}

	var itemCount int64
	if err := gdb.Model(&db.RecipeItem{}).Where("recipe_id = ?", recipe.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if itemCount != 2 {
		t.Fatalf("expected old items replaced, got %d rows", itemCount)
	}

	if _, err := svc.Update(recipe.ID+50, RecipeInput{
		Name:     "不存在",
		Servings: 1,
		Items:    []RecipeItemInput{{FoodID: rice.ID, Quantity: 1}},
	}); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestRecipeDeleteCascades(t *testing.T) {
	gdb, cleanup := setupFoodTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	rice := seedFood(t, foods, "米饭", "low", 200)

	svc := NewRecipeService(gdb)
	recipe, err := svc.Create(RecipeInput{
		Name:     "白饭",
		Servings: 1,
		Items:    []RecipeItemInput{{FoodID: rice.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(recipe.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var itemCount int64
	if err := gdb.Unscoped().Model(&db.RecipeItem{}).Count(&itemCount).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected items to cascade, got %d", itemCount)
	}

	if err := svc.Delete(recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}
