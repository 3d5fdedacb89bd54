package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrMealNotFound 在指定餐食不存在时返回
	ErrMealNotFound = errors.New("meal not found")
	// ErrMealInvalid 当餐食字段缺失或非法时返回
	ErrMealInvalid = errors.New("invalid meal")
)

var validMealTypes = []string{
	db.MealTypeBreakfast,
	db.MealTypeLunch,
	db.MealTypeDinner,
	db.MealTypeSnack,
}

// MealService 负责餐食记录与每日营养聚合
// 条目指向食物或配方；配方按份折算后并入当餐
type MealService struct {
	db *gorm.DB
}

// MealItemInput 指定一项餐食内容，食物与配方二选一
type MealItemInput struct {
	FoodID   *uint
	RecipeID *uint
	Quantity float64
}

// MealInput 定义记录/更新餐食时可配置字段
type MealInput struct {
	MealType string
	LogDate  time.Time
	LogTime  *time.Time
	Note     string
	PhotoURL string
	Items    []MealItemInput
}

// MealNutrition 汇总单餐营养与 FODMAP 等级
type MealNutrition struct {
	MealEntryID uint
	MealType    string
	Totals      db.NutritionFacts
	FodmapLevel string
}

// DailyNutrition 汇总全天营养，等级取当日最高档
type DailyNutrition struct {
	Date        time.Time
	Meals       []MealNutrition
	Totals      db.NutritionFacts
	FodmapLevel string
}

// NewMealService 构造 MealService
func NewMealService(gdb *gorm.DB) *MealService {
	return &MealService{db: gdb}
}

// Log 记录一次用餐，条目与餐食在同一事务内写入
func (s *MealService) Log(input MealInput) (*db.MealEntry, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	var entry db.MealEntry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry = db.MealEntry{
			MealType: normalized.MealType,
			LogDate:  normalizeToDate(normalized.LogDate),
			LogTime:  normalized.LogTime,
			Note:     normalized.Note,
			PhotoURL: normalized.PhotoURL,
		}
		for _, item := range normalized.Items {
			entry.Items = append(entry.Items, db.MealItem{
				FoodID:   item.FoodID,
				RecipeID: item.RecipeID,
				Quantity: item.Quantity,
			})
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create meal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(entry.ID)
}

// Get 根据 ID 获取餐食及其条目
func (s *MealService) Get(id uint) (*db.MealEntry, error) {
	var entry db.MealEntry
	if err := s.db.Preload("Items.Food").
		Preload("Items.Recipe.Items.Food").
		First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return &entry, nil
}

// Update 更新餐食并整体替换条目
func (s *MealService) Update(id uint, input MealInput) (*db.MealEntry, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.MealEntry
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMealNotFound
			}
			return fmt.Errorf("find meal: %w", err)
		}

		existing.MealType = normalized.MealType
		existing.LogDate = normalizeToDate(normalized.LogDate)
		existing.LogTime = normalized.LogTime
		existing.Note = normalized.Note
		existing.PhotoURL = normalized.PhotoURL
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update meal: %w", err)
		}

		if err := tx.Unscoped().Where("meal_entry_id = ?", id).Delete(&db.MealItem{}).Error; err != nil {
			return fmt.Errorf("replace meal items: %w", err)
		}
		for _, item := range normalized.Items {
			record := db.MealItem{
				MealEntryID: id,
				FoodID:      item.FoodID,
				RecipeID:    item.RecipeID,
				Quantity:    item.Quantity,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("replace meal items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除餐食及其条目
func (s *MealService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.MealEntry
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMealNotFound
			}
			return fmt.Errorf("find meal: %w", err)
		}

		if err := tx.Unscoped().Where("meal_entry_id = ?", id).Delete(&db.MealItem{}).Error; err != nil {
			return fmt.Errorf("delete meal items: %w", err)
		}
		return tx.Unscoped().Delete(&db.MealEntry{}, id).Error
	})
}

// ListByDate 返回某天的全部餐食，按记录时间排序
func (s *MealService) ListByDate(date time.Time) ([]db.MealEntry, error) {
	var entries []db.MealEntry
	day := normalizeToDate(date)

	if err := s.db.Preload("Items.Food").
		Preload("Items.Recipe.Items.Food").
		Where("log_date = ?", day).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return entries, nil
}

// DailyNutrition 聚合某天的营养：逐餐合计食物与配方份数，等级取最高档
func (s *MealService) DailyNutrition(date time.Time) (*DailyNutrition, error) {
	entries, err := s.ListByDate(date)
	if err != nil {
		return nil, err
	}

	result := &DailyNutrition{
		Date:        normalizeToDate(date),
		Meals:       make([]MealNutrition, 0, len(entries)),
		FodmapLevel: db.FodmapLevelLow,
	}

	for i := range entries {
		meal := mealNutritionOf(&entries[i])
		result.Meals = append(result.Meals, meal)
		result.Totals = addNutrition(result.Totals, meal.Totals)
		result.FodmapLevel = worseFodmapLevel(result.FodmapLevel, meal.FodmapLevel)
	}

	return result, nil
}

// mealNutritionOf 对已加载条目的餐食做纯内存折算
func mealNutritionOf(entry *db.MealEntry) MealNutrition {
	meal := MealNutrition{
		MealEntryID: entry.ID,
		MealType:    entry.MealType,
		FodmapLevel: db.FodmapLevelLow,
	}

	for _, item := range entry.Items {
		switch {
		case item.FoodID != nil && item.Food != nil:
			meal.Totals = addNutrition(meal.Totals, scaleNutrition(item.Food.Nutrition, item.Quantity))
			meal.FodmapLevel = worseFodmapLevel(meal.FodmapLevel, item.Food.FodmapLevel)
		case item.RecipeID != nil && item.Recipe != nil:
			nutrition := recipeNutritionOf(item.Recipe)
			meal.Totals = addNutrition(meal.Totals, scaleNutrition(nutrition.PerServing, item.Quantity))
			meal.FodmapLevel = worseFodmapLevel(meal.FodmapLevel, nutrition.FodmapLevel)
		}
	}

	return meal
}

func (s *MealService) validateInput(input MealInput) (MealInput, error) {
	out := input
	out.MealType = strings.TrimSpace(strings.ToLower(input.MealType))

	valid := false
	for _, candidate := range validMealTypes {
		if out.MealType == candidate {
			valid = true
			break
		}
	}
	if !valid {
		return out, fmt.Errorf("%w: unsupported meal type %s", ErrMealInvalid, input.MealType)
	}

	if input.LogDate.IsZero() {
		return out, fmt.Errorf("%w: log date is required", ErrMealInvalid)
	}
	if len(input.Items) == 0 {
		return out, fmt.Errorf("%w: at least one item is required", ErrMealInvalid)
	}

	out.Note = strings.TrimSpace(input.Note)
	out.PhotoURL = strings.TrimSpace(input.PhotoURL)

	for _, item := range input.Items {
		hasFood := item.FoodID != nil && *item.FoodID != 0
		hasRecipe := item.RecipeID != nil && *item.RecipeID != 0
		if hasFood == hasRecipe {
			return out, fmt.Errorf("%w: item must reference exactly one of food or recipe", ErrMealInvalid)
		}
		if item.Quantity <= 0 {
			return out, fmt.Errorf("%w: item quantity must be positive", ErrMealInvalid)
		}

		if hasFood {
			var food db.Food
			if err := s.db.First(&food, *item.FoodID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return out, ErrFoodNotFound
				}
				return out, fmt.Errorf("check meal food: %w", err)
			}
		} else {
			var recipe db.Recipe
			if err := s.db.First(&recipe, *item.RecipeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return out, ErrRecipeNotFound
				}
				return out, fmt.Errorf("check meal recipe: %w", err)
			}
		}
	}

	return out, nil
}
