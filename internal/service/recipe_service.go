package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrRecipeNotFound 在指定配方不存在时返回
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrRecipeInvalid 当配方字段缺失或非法时返回
	ErrRecipeInvalid = errors.New("invalid recipe")
)

// RecipeService 负责用户配方的增删改查与营养折算
// 配方营养按份计算，FODMAP 等级取配料中的最高档
type RecipeService struct {
	db *gorm.DB
}

// RecipeItemInput 指定一种配料及其相对食物一份的倍数
type RecipeItemInput struct {
	FoodID   uint
	Quantity float64
}

// RecipeInput 定义创建/更新配方时可配置字段
type RecipeInput struct {
	Name        string
	Description string
	Servings    int
	Items       []RecipeItemInput
}

// RecipeNutrition 汇总配方每份营养与整体 FODMAP 等级
type RecipeNutrition struct {
	RecipeID    uint
	PerServing  db.NutritionFacts
	FodmapLevel string
}

// NewRecipeService 构造 RecipeService
func NewRecipeService(gdb *gorm.DB) *RecipeService {
	return &RecipeService{db: gdb}
}

// List 返回配方集合，支持名称搜索
func (s *RecipeService) List(search string) ([]db.Recipe, error) {
	var recipes []db.Recipe

	query := s.db.Preload("Items.Food").Order("name ASC")
	if strings.TrimSpace(search) != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(search))
		query = query.Where("name LIKE ?", like)
	}

	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Get 根据 ID 获取配方及其配料
func (s *RecipeService) Get(id uint) (*db.Recipe, error) {
	var recipe db.Recipe
	if err := s.db.Preload("Items.Food").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &recipe, nil
}

// Create 新建配方，配料与配方在同一事务内写入
func (s *RecipeService) Create(input RecipeInput) (*db.Recipe, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	var recipe db.Recipe
	err = s.db.Transaction(func(tx *gorm.DB) error {
		recipe = db.Recipe{
			Name:        normalized.Name,
			Description: normalized.Description,
			Servings:    normalized.Servings,
		}
		for _, item := range normalized.Items {
			recipe.Items = append(recipe.Items, db.RecipeItem{
				FoodID:   item.FoodID,
				Quantity: item.Quantity,
			})
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(recipe.ID)
}

// Update 更新配方并整体替换配料
func (s *RecipeService) Update(id uint, input RecipeInput) (*db.Recipe, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.Recipe
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("find recipe: %w", err)
		}

		existing.Name = normalized.Name
		existing.Description = normalized.Description
		existing.Servings = normalized.Servings
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if err := tx.Unscoped().Where("recipe_id = ?", id).Delete(&db.RecipeItem{}).Error; err != nil {
			return fmt.Errorf("replace recipe items: %w", err)
		}
		for _, item := range normalized.Items {
			record := db.RecipeItem{RecipeID: id, FoodID: item.FoodID, Quantity: item.Quantity}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("replace recipe items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 删除配方及其配料
func (s *RecipeService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.Recipe
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("find recipe: %w", err)
		}

		if err := tx.Unscoped().Where("recipe_id = ?", id).Delete(&db.RecipeItem{}).Error; err != nil {
			return fmt.Errorf("delete recipe items: %w", err)
		}
		if err := tx.Unscoped().Delete(&db.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
}

// Nutrition 折算配方每份营养：配料营养×倍数求和后除以份数
func (s *RecipeService) Nutrition(id uint) (*RecipeNutrition, error) {
	recipe, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	result := recipeNutritionOf(recipe)
	return &result, nil
}

// recipeNutritionOf 对已加载配料的配方做纯内存折算，餐食聚合复用同一套算法
func recipeNutritionOf(recipe *db.Recipe) RecipeNutrition {
	result := RecipeNutrition{RecipeID: recipe.ID, FodmapLevel: db.FodmapLevelLow}

	var total db.NutritionFacts
	for _, item := range recipe.Items {
		total = addNutrition(total, scaleNutrition(item.Food.Nutrition, item.Quantity))
		result.FodmapLevel = worseFodmapLevel(result.FodmapLevel, item.Food.FodmapLevel)
	}

	servings := recipe.Servings
	if servings < 1 {
		servings = 1
	}
	result.PerServing = scaleNutrition(total, 1/float64(servings))

	return result
}

func (s *RecipeService) validateInput(input RecipeInput) (RecipeInput, error) {
	out := input
	out.Name = strings.TrimSpace(input.Name)
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is required", ErrRecipeInvalid)
	}
	out.Description = strings.TrimSpace(input.Description)

	if input.Servings < 1 {
		return out, fmt.Errorf("%w: servings must be at least 1", ErrRecipeInvalid)
	}
	if len(input.Items) == 0 {
		return out, fmt.Errorf("%w: at least one ingredient is required", ErrRecipeInvalid)
	}

	for _, item := range input.Items {
		if item.FoodID == 0 {
			return out, fmt.Errorf("%w: ingredient food is required", ErrRecipeInvalid)
		}
		if item.Quantity <= 0 {
			return out, fmt.Errorf("%w: ingredient quantity must be positive", ErrRecipeInvalid)
		}
		var food db.Food
		if err := s.db.First(&food, item.FoodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return out, ErrFoodNotFound
			}
			return out, fmt.Errorf("check ingredient food: %w", err)
		}
	}

	return out, nil
}
