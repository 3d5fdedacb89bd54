package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type mealItemPayload struct {
	FoodID   *uint   `json:"food_id"`
	RecipeID *uint   `json:"recipe_id"`
	Quantity float64 `json:"quantity"`
}

type mealPayload struct {
	MealType string            `json:"meal_type"`
	LogDate  string            `json:"log_date"` // 2006-01-02
	LogTime  string            `json:"log_time"` // 15:04，可选
	Note     string            `json:"note"`
	PhotoURL string            `json:"photo_url"`
	Items    []mealItemPayload `json:"items"`
}

// ListMeals 返回某天的全部餐食
func (a *API) ListMeals(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	meals, err := a.meals.ListByDate(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取餐食记录失败")
		return
	}

	items := make([]gin.H, 0, len(meals))
	for i := range meals {
		items = append(items, mealToPayload(&meals[i]))
	}

	c.JSON(http.StatusOK, gin.H{"meals": items})
}

// GetMeal 返回单条餐食记录
func (a *API) GetMeal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的餐食ID")
		return
	}

	meal, err := a.meals.Get(id)
	if err != nil {
		handleMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": mealToPayload(meal)})
}

// CreateMeal 记录一餐
func (a *API) CreateMeal(c *gin.Context) {
	input, ok := parseMealInput(c)
	if !ok {
		return
	}

	meal, err := a.meals.Log(input)
	if err != nil {
		handleMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": mealToPayload(meal)})
}

// UpdateMeal 更新一餐，条目整体替换
func (a *API) UpdateMeal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的餐食ID")
		return
	}

	input, ok := parseMealInput(c)
	if !ok {
		return
	}

	meal, err := a.meals.Update(id, input)
	if err != nil {
		handleMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": mealToPayload(meal)})
}

// DeleteMeal 删除一餐
func (a *API) DeleteMeal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的餐食ID")
		return
	}

	if err := a.meals.Delete(id); err != nil {
		handleMealError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetDailyNutrition 返回某天的营养汇总与 FODMAP 等级
func (a *API) GetDailyNutrition(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	daily, err := a.meals.DailyNutrition(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算营养汇总失败")
		return
	}

	meals := make([]gin.H, 0, len(daily.Meals))
	for _, meal := range daily.Meals {
		meals = append(meals, gin.H{
			"meal_entry_id": meal.MealEntryID,
			"meal_type":     meal.MealType,
			"totals":        meal.Totals,
			"fodmap_level":  meal.FodmapLevel,
		})
	}

	c.JSON(http.StatusOK, gin.H{"daily_nutrition": gin.H{
		"date":         daily.Date.Format(dateFormat),
		"meals":        meals,
		"totals":       daily.Totals,
		"fodmap_level": daily.FodmapLevel,
	}})
}

func parseMealInput(c *gin.Context) (service.MealInput, bool) {
	var payload mealPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.MealInput{}, false
	}

	date, ok := parseDateField(payload.LogDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return service.MealInput{}, false
	}

	logTime, ok := combineClock(date, payload.LogTime)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的时间")
		return service.MealInput{}, false
	}

	items := make([]service.MealItemInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, service.MealItemInput{
			FoodID:   item.FoodID,
			RecipeID: item.RecipeID,
			Quantity: item.Quantity,
		})
	}

	return service.MealInput{
		MealType: payload.MealType,
		LogDate:  date,
		LogTime:  logTime,
		Note:     payload.Note,
		PhotoURL: payload.PhotoURL,
		Items:    items,
	}, true
}

func mealToPayload(meal *db.MealEntry) gin.H {
	items := make([]gin.H, 0, len(meal.Items))
	for _, item := range meal.Items {
		entry := gin.H{
			"id":       item.ID,
			"quantity": item.Quantity,
		}
		if item.FoodID != nil {
			entry["food_id"] = *item.FoodID
			if item.Food != nil {
				entry["food"] = foodToPayload(*item.Food)
			}
		}
		if item.RecipeID != nil {
			entry["recipe_id"] = *item.RecipeID
			if item.Recipe != nil {
				entry["recipe"] = recipeToPayload(item.Recipe)
			}
		}
		items = append(items, entry)
	}

	payload := gin.H{
		"id":        meal.ID,
		"meal_type": meal.MealType,
		"log_date":  meal.LogDate.Format(dateFormat),
		"note":      meal.Note,
		"photo_url": meal.PhotoURL,
		"items":     items,
	}
	if meal.LogTime != nil {
		payload["log_time"] = meal.LogTime.Format(time.RFC3339)
	}

	return payload
}

func handleMealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMealNotFound):
		respondError(c, http.StatusNotFound, "餐食记录不存在")
	case errors.Is(err, service.ErrFoodNotFound):
		respondError(c, http.StatusBadRequest, "餐食引用的食物不存在")
	case errors.Is(err, service.ErrRecipeNotFound):
		respondError(c, http.StatusBadRequest, "餐食引用的配方不存在")
	case errors.Is(err, service.ErrMealInvalid):
		respondError(c, http.StatusBadRequest, "餐食记录不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
