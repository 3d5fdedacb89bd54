package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMealTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:meal-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Food{}, &db.Recipe{}, &db.RecipeItem{}, &db.MealEntry{}, &db.MealItem{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestMealLogAndDailyNutrition(t *testing.T) {
	gdb, cleanup := setupMealTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	banana := seedFood(t, foods, "香蕉", "low", 90)
	honey := seedFood(t, foods, "蜂蜜", "high", 60)

	recipes := NewRecipeService(gdb)
	porridge, err := recipes.Create(RecipeInput{
		Name:     "蜂蜜粥",
		Servings: 2,
		Items:    []RecipeItemInput{{FoodID: honey.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	svc := NewMealService(gdb)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.Local)

	breakfast, err := svc.Log(MealInput{
		MealType: "Breakfast",
		LogDate:  day,
		Items: []MealItemInput{
			{FoodID: &banana.ID, Quantity: 2},
			{RecipeID: &porridge.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	if breakfast.MealType != db.MealTypeBreakfast {
		t.Fatalf("expected normalized meal type, got %s", breakfast.MealType)
	}
	if len(breakfast.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(breakfast.Items))
	}

	if _, err := svc.Log(MealInput{
		MealType: "snack",
		LogDate:  day,
		Items:    []MealItemInput{{FoodID: &banana.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	nutrition, err := svc.DailyNutrition(day)
	if err != nil {
		t.Fatalf("DailyNutrition returned error: %v", err)
	}

	if len(nutrition.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(nutrition.Meals))
	}

	// 香蕉 90×2 + 粥每份 (60×2)/2 ×1 + 加餐香蕉 90×1 = 330
	if nutrition.Totals.Calories != 330 {
		t.Fatalf("expected 330 calories, got %.1f", nutrition.Totals.Calories)
	}
	// 粥含高 FODMAP 蜂蜜，全天取最高档
	if nutrition.FodmapLevel != db.FodmapLevelHigh {
		t.Fatalf("expected high fodmap level, got %s", nutrition.FodmapLevel)
	}

	if nutrition.Meals[0].FodmapLevel != db.FodmapLevelHigh {
		t.Fatalf("expected breakfast to be high, got %s", nutrition.Meals[0].FodmapLevel)
	}
	if nutrition.Meals[1].FodmapLevel != db.FodmapLevelLow {
		t.Fatalf("expected snack to be low, got %s", nutrition.Meals[1].FodmapLevel)
	}
}

func TestMealValidation(t *testing.T) {
	gdb, cleanup := setupMealTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	banana := seedFood(t, foods, "香蕉", "low", 90)
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.Local)
	missingID := banana.ID + 99

	svc := NewMealService(gdb)

	cases := []struct {
		name  string
		input MealInput
		want  error
	}{
		{
			name:  "bad meal type",
			input: MealInput{MealType: "brunch", LogDate: day, Items: []MealItemInput{{FoodID: &banana.ID, Quantity: 1}}},
			want:  ErrMealInvalid,
		},
		{
			name:  "missing date",
			input: MealInput{MealType: "lunch", Items: []MealItemInput{{FoodID: &banana.ID, Quantity: 1}}},
			want:  ErrMealInvalid,
		},
		{
			name:  "no items",
			input: MealInput{MealType: "lunch", LogDate: day},
			want:  ErrMealInvalid,
		},
		{
			name:  "item without reference",
			input: MealInput{MealType: "lunch", LogDate: day, Items: []MealItemInput{{Quantity: 1}}},
			want:  ErrMealInvalid,
		},
		{
			name: "item with both references",
			input: MealInput{MealType: "lunch", LogDate: day, Items: []MealItemInput{
				{FoodID: &banana.ID, RecipeID: &banana.ID, Quantity: 1},
			}},
			want: ErrMealInvalid,
		},
		{
			name:  "zero quantity",
			input: MealInput{MealType: "lunch", LogDate: day, Items: []MealItemInput{{FoodID: &banana.ID, Quantity: 0}}},
			want:  ErrMealInvalid,
		},
		{
			name:  "missing food",
			input: MealInput{MealType: "lunch", LogDate: day, Items: []MealItemInput{{FoodID: &missingID, Quantity: 1}}},
			want:  ErrFoodNotFound,
		},
	}

	for _, tc := range cases {
		if _, err := svc.Log(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestMealUpdateReplacesItems(t *testing.T) {
	gdb, cleanup := setupMealTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	banana := seedFood(t, foods, "香蕉", "low", 90)
	rice := seedFood(t, foods, "米饭", "low", 200)
	day := time.Date(2024, 4, 3, 0, 0, 0, 0, time.Local)

	svc := NewMealService(gdb)
	meal, err := svc.Log(MealInput{
		MealType: "lunch",
		LogDate:  day,
		Items:    []MealItemInput{{FoodID: &banana.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	updated, err := svc.Update(meal.ID, MealInput{
		MealType: "dinner",
		LogDate:  day,
		Note:     "加了点米饭",
		Items:    []MealItemInput{{FoodID: &rice.ID, Quantity: 1.5}},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.MealType != db.MealTypeDinner || updated.Note != "加了点米饭" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if len(updated.Items) != 1 || updated.Items[0].FoodID == nil || *updated.Items[0].FoodID != rice.ID {
		t.Fatalf("expected items replaced, got %+v", updated.Items)
	}

	var itemCount int64
	if err := gdb.Model(&db.MealItem{}).Where("meal_entry_id = ?", meal.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if itemCount != 1 {
		t.Fatalf("expected 1 item row, got %d", itemCount)
	}
}

func TestMealDelete(t *testing.T) {
	gdb, cleanup := setupMealTestDB(t)
	defer cleanup()

	foods := NewFoodService(gdb)
	banana := seedFood(t, foods, "香蕉", "low", 90)
	day := time.Date(2024, 4, 4, 0, 0, 0, 0, time.Local)

	svc := NewMealService(gdb)
	meal, err := svc.Log(MealInput{
		MealType: "snack",
		LogDate:  day,
		Items:    []MealItemInput{{FoodID: &banana.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	if err := svc.Delete(meal.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(meal.ID); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("expected ErrMealNotFound, got %v", err)
	}

	entries, err := svc.ListByDate(day)
	if err != nil {
		t.Fatalf("ListByDate returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no meals, got %d", len(entries))
	}
}
