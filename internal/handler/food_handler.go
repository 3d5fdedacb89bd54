package handler

import (
	"errors"
	"net/http"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type foodPayload struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	FodmapLevel string            `json:"fodmap_level"`
	ServingSize string            `json:"serving_size"`
	Nutrition   db.NutritionFacts `json:"nutrition"`
	IsFavorite  bool              `json:"is_favorite"`
}

// ListFoods 返回食物库，支持搜索与过滤
func (a *API) ListFoods(c *gin.Context) {
	filter := service.FoodFilter{
		Search:        c.Query("search"),
		Category:      c.Query("category"),
		FodmapLevel:   c.Query("fodmap_level"),
		FavoritesOnly: c.Query("favorites") == "1" || c.Query("favorites") == "true",
	}

	foods, err := a.foods.List(filter)
	if err != nil {
		handleFoodError(c, err)
		return
	}

	items := make([]gin.H, 0, len(foods))
	for _, food := range foods {
		items = append(items, foodToPayload(food))
	}

	c.JSON(http.StatusOK, gin.H{"foods": items})
}

// GetFood 返回单个食物档案
func (a *API) GetFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	food, err := a.foods.Get(id)
	if err != nil {
		handleFoodError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"food": foodToPayload(*food)})
}

// CreateFood 创建食物档案
func (a *API) CreateFood(c *gin.Context) {
	var payload foodPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	food, err := a.foods.Create(foodInputFromPayload(payload))
	if err != nil {
		handleFoodError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"food": foodToPayload(*food)})
}

// UpdateFood 更新食物档案
func (a *API) UpdateFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	var payload foodPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	food, err := a.foods.Update(id, foodInputFromPayload(payload))
	if err != nil {
		handleFoodError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"food": foodToPayload(*food)})
}

// DeleteFood 删除食物档案
func (a *API) DeleteFood(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	if err := a.foods.Delete(id); err != nil {
		handleFoodError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetFoodFavorite 切换食物收藏状态
func (a *API) SetFoodFavorite(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的食物ID")
		return
	}

	var payload struct {
		Favorite bool `json:"favorite"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	food, err := a.foods.SetFavorite(id, payload.Favorite)
	if err != nil {
		handleFoodError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"food": foodToPayload(*food)})
}

func foodInputFromPayload(payload foodPayload) service.FoodInput {
	return service.FoodInput{
		Name:        payload.Name,
		Category:    payload.Category,
		FodmapLevel: payload.FodmapLevel,
		ServingSize: payload.ServingSize,
		Nutrition:   payload.Nutrition,
		IsFavorite:  payload.IsFavorite,
	}
}

func foodToPayload(food db.Food) gin.H {
	return gin.H{
		"id":           food.ID,
		"name":         food.Name,
		"category":     food.Category,
		"fodmap_level": food.FodmapLevel,
		"serving_size": food.ServingSize,
		"nutrition":    food.Nutrition,
		"is_favorite":  food.IsFavorite,
	}
}

func handleFoodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFoodNotFound):
		respondError(c, http.StatusNotFound, "食物不存在")
	case errors.Is(err, service.ErrFoodInvalid):
		respondError(c, http.StatusBadRequest, "食物档案不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
