package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrFoodNotFound 在指定食物不存在时返回
	ErrFoodNotFound = errors.New("food not found")
	// ErrFoodInvalid 当食物字段缺失或非法时返回
	ErrFoodInvalid = errors.New("invalid food")
)

// FoodService 负责食物库的增删改查
// FODMAP 等级是核心字段：餐食与配方的等级都由食物档案推导
type FoodService struct {
	db *gorm.DB
}

// FoodFilter 描述食物列表过滤条件
type FoodFilter struct {
	Search        string
	Category      string
	FodmapLevel   string
	FavoritesOnly bool
}

// FoodInput 定义创建/更新食物时可配置字段
type FoodInput struct {
	Name        string
	Category    string
	FodmapLevel string
	ServingSize string
	Nutrition   db.NutritionFacts
	IsFavorite  bool
}

// NewFoodService 构造 FoodService
func NewFoodService(gdb *gorm.DB) *FoodService {
	return &FoodService{db: gdb}
}

// List 返回食物集合，支持名称搜索与分类/等级/收藏过滤
func (s *FoodService) List(filter FoodFilter) ([]db.Food, error) {
	var foods []db.Food

	query := s.db.Model(&db.Food{})

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("name LIKE ?", like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", strings.TrimSpace(filter.Category))
	}
	if filter.FodmapLevel != "" {
		level, err := normalizeFodmapLevel(filter.FodmapLevel)
		if err != nil {
			return nil, err
		}
		query = query.Where("fodmap_level = ?", level)
	}
	if filter.FavoritesOnly {
		query = query.Where("is_favorite = ?", true)
	}

	if err := query.Order("is_favorite DESC, name ASC").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// Get 根据 ID 获取食物
func (s *FoodService) Get(id uint) (*db.Food, error) {
	var food db.Food
	if err := s.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}
	return &food, nil
}

// Create 新建食物
func (s *FoodService) Create(input FoodInput) (*db.Food, error) {
	normalized, err := validateFoodInput(input)
	if err != nil {
		return nil, err
	}

	food := db.Food{
		Name:        normalized.Name,
		Category:    normalized.Category,
		FodmapLevel: normalized.FodmapLevel,
		ServingSize: normalized.ServingSize,
		Nutrition:   normalized.Nutrition,
		IsFavorite:  normalized.IsFavorite,
	}
	if err := s.db.Create(&food).Error; err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	return &food, nil
}

// Update 更新食物
func (s *FoodService) Update(id uint, input FoodInput) (*db.Food, error) {
	normalized, err := validateFoodInput(input)
	if err != nil {
		return nil, err
	}

	var existing db.Food
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("find food: %w", err)
	}

	existing.Name = normalized.Name
	existing.Category = normalized.Category
	existing.FodmapLevel = normalized.FodmapLevel
	existing.ServingSize = normalized.ServingSize
	existing.Nutrition = normalized.Nutrition
	existing.IsFavorite = normalized.IsFavorite

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update food: %w", err)
	}
	return &existing, nil
}

// Delete 软删除食物；历史餐食条目仍可通过 ID 关联到档案
func (s *FoodService) Delete(id uint) error {
	result := s.db.Delete(&db.Food{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete food: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

// SetFavorite 切换收藏标记
func (s *FoodService) SetFavorite(id uint, favorite bool) (*db.Food, error) {
	result := s.db.Model(&db.Food{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return nil, fmt.Errorf("set food favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrFoodNotFound
	}
	return s.Get(id)
}

func validateFoodInput(input FoodInput) (FoodInput, error) {
	out := input
	out.Name = strings.TrimSpace(input.Name)
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is required", ErrFoodInvalid)
	}

	out.Category = strings.TrimSpace(input.Category)
	out.ServingSize = strings.TrimSpace(input.ServingSize)

	level, err := normalizeFodmapLevel(input.FodmapLevel)
	if err != nil {
		return out, err
	}
	out.FodmapLevel = level

	if input.Nutrition.Calories < 0 || input.Nutrition.Protein < 0 ||
		input.Nutrition.Carbs < 0 || input.Nutrition.Fat < 0 || input.Nutrition.Fiber < 0 {
		return out, fmt.Errorf("%w: nutrition values must not be negative", ErrFoodInvalid)
	}

	return out, nil
}

// normalizeFodmapLevel 规范化等级，空值回退为 low
func normalizeFodmapLevel(level string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(level))
	switch trimmed {
	case "":
		return db.FodmapLevelLow, nil
	case db.FodmapLevelLow, db.FodmapLevelMedium, db.FodmapLevelHigh:
		return trimmed, nil
	default:
		return "", fmt.Errorf("%w: unsupported fodmap level %s", ErrFoodInvalid, level)
	}
}
