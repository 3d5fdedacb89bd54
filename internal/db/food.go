package db

import "gorm.io/gorm"

// FODMAP 等级，low < medium < high，配方取配料中的最高档
const (
	FodmapLevelLow    = "low"
	FodmapLevelMedium = "medium"
	FodmapLevelHigh   = "high"
)

// NutritionFacts 描述每份食物的营养成分，整体以 JSON 存储
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Food 定义了食物库条目
// ServingSize 为一份的描述文本（如 "100g" / "1 cup"）
// IsFavorite 标记常用食物，便于客户端快速选择
type Food struct {
	gorm.Model
	Name        string `gorm:"size:200;index"`
	Category    string `gorm:"size:100;index"`
	FodmapLevel string `gorm:"size:20;index"`
	ServingSize string
	Nutrition   NutritionFacts `gorm:"serializer:json"`
	IsFavorite  bool
}

// Recipe 定义了用户配方
// Servings 为整份配方可分的份数，营养按份折算
type Recipe struct {
	gorm.Model
	Name        string `gorm:"size:200;index"`
	Description string
	Servings    int
	Items       []RecipeItem `gorm:"constraint:OnDelete:CASCADE"`
}

// RecipeItem 是配方中的一种配料
// Quantity 为相对食物一份的倍数
type RecipeItem struct {
	gorm.Model
	RecipeID uint `gorm:"index"`
	FoodID   uint `gorm:"index"`
	Food     Food
	Quantity float64
}
