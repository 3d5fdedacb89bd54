package service

import "github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"

// fodmapRank 把等级映射为可比较的序：low < medium < high。
// 未知值按 low 处理，避免脏数据拉高整餐等级。
func fodmapRank(level string) int {
	switch level {
	case db.FodmapLevelHigh:
		return 2
	case db.FodmapLevelMedium:
		return 1
	default:
		return 0
	}
}

// worseFodmapLevel 返回两个等级中较高的一档
func worseFodmapLevel(a, b string) string {
	if fodmapRank(b) > fodmapRank(a) {
		return b
	}
	if a == "" {
		return db.FodmapLevelLow
	}
	return a
}

func scaleNutrition(n db.NutritionFacts, factor float64) db.NutritionFacts {
	return db.NutritionFacts{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
		Fiber:    n.Fiber * factor,
	}
}

func addNutrition(a, b db.NutritionFacts) db.NutritionFacts {
	return db.NutritionFacts{
		Calories: a.Calories + b.Calories,
		Protein:  a.Protein + b.Protein,
		Carbs:    a.Carbs + b.Carbs,
		Fat:      a.Fat + b.Fat,
		Fiber:    a.Fiber + b.Fiber,
	}
}
