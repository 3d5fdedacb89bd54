package db

import (
	"time"

	"gorm.io/gorm"
)

// 餐次类型
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// MealEntry 记录一次用餐
// LogDate 为日历日，LogTime 为用户选择的具体时间
// PhotoURL 指向上传接口返回的照片地址，可为空
type MealEntry struct {
	gorm.Model
	MealType string    `gorm:"size:20;index"`
	LogDate  time.Time `gorm:"index"`
	LogTime  *time.Time
	Note     string
	PhotoURL string
	Items    []MealItem `gorm:"constraint:OnDelete:CASCADE"`
}

// MealItem 是用餐中的一项内容，指向食物或配方（二选一）
// Quantity 对食物为份数倍数，对配方为食用份数
type MealItem struct {
	gorm.Model
	MealEntryID uint  `gorm:"index"`
	FoodID      *uint `gorm:"index"`
	Food        *Food
	RecipeID    *uint `gorm:"index"`
	Recipe      *Recipe
	Quantity    float64
}
