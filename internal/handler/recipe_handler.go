package handler

import (
	"errors"
	"net/http"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type recipeItemPayload struct {
	FoodID   uint    `json:"food_id"`
	Quantity float64 `json:"quantity"`
}

type recipePayload struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Servings    int                 `json:"servings"`
	Items       []recipeItemPayload `json:"items"`
}

// ListRecipes 返回配方列表，支持名称搜索
func (a *API) ListRecipes(c *gin.Context) {
	recipes, err := a.recipes.List(c.Query("search"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取配方列表失败")
		return
	}

	items := make([]gin.H, 0, len(recipes))
	for i := range recipes {
		items = append(items, recipeToPayload(&recipes[i]))
	}

	c.JSON(http.StatusOK, gin.H{"recipes": items})
}

// GetRecipe 返回单个配方及其食材
func (a *API) GetRecipe(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的配方ID")
		return
	}

	recipe, err := a.recipes.Get(id)
	if err != nil {
		handleRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeToPayload(recipe)})
}

// CreateRecipe 创建配方
func (a *API) CreateRecipe(c *gin.Context) {
	input, ok := parseRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := a.recipes.Create(input)
	if err != nil {
		handleRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeToPayload(recipe)})
}

// UpdateRecipe 更新配方，食材整体替换
func (a *API) UpdateRecipe(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的配方ID")
		return
	}

	input, ok := parseRecipeInput(c)
	if !ok {
		return
	}

	recipe, err := a.recipes.Update(id, input)
	if err != nil {
		handleRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipeToPayload(recipe)})
}

// DeleteRecipe 删除配方及其食材
func (a *API) DeleteRecipe(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的配方ID")
		return
	}

	if err := a.recipes.Delete(id); err != nil {
		handleRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetRecipeNutrition 返回按单份折算的配方营养与 FODMAP 等级
func (a *API) GetRecipeNutrition(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的配方ID")
		return
	}

	nutrition, err := a.recipes.Nutrition(id)
	if err != nil {
		handleRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nutrition": gin.H{
		"recipe_id":    nutrition.RecipeID,
		"per_serving":  nutrition.PerServing,
		"fodmap_level": nutrition.FodmapLevel,
	}})
}

func parseRecipeInput(c *gin.Context) (service.RecipeInput, bool) {
	var payload recipePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.RecipeInput{}, false
	}

	items := make([]service.RecipeItemInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, service.RecipeItemInput{FoodID: item.FoodID, Quantity: item.Quantity})
	}

	return service.RecipeInput{
		Name:        payload.Name,
		Description: payload.Description,
		Servings:    payload.Servings,
		Items:       items,
	}, true
}

func recipeToPayload(recipe *db.Recipe) gin.H {
	items := make([]gin.H, 0, len(recipe.Items))
	for _, item := range recipe.Items {
		entry := gin.H{
			"id":       item.ID,
			"food_id":  item.FoodID,
			"quantity": item.Quantity,
		}
		if item.Food.ID != 0 {
			entry["food"] = foodToPayload(item.Food)
		}
		items = append(items, entry)
	}

	return gin.H{
		"id":          recipe.ID,
		"name":        recipe.Name,
		"description": recipe.Description,
		"servings":    recipe.Servings,
		"items":       items,
	}
}

func handleRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		respondError(c, http.StatusNotFound, "配方不存在")
	case errors.Is(err, service.ErrFoodNotFound):
		respondError(c, http.StatusBadRequest, "配方引用的食物不存在")
	case errors.Is(err, service.ErrRecipeInvalid):
		respondError(c, http.StatusBadRequest, "配方不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
