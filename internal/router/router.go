package router

import (
	"net/http"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/auth"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由。
// 除登录与健康检查外，全部 API 都要求 Bearer 访问令牌。
func SetupRouter(api *handler.API, tokens *auth.Manager, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 上传的照片走静态文件服务
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/login", api.Login)

		authorized := apiGroup.Group("")
		authorized.Use(handler.RequireAuth(tokens))
		{
			authorized.GET("/auth/me", api.Me)

			authorized.GET("/activity-types", api.ListActivityTypes)
			authorized.POST("/activity-types", api.CreateActivityType)
			authorized.PUT("/activity-types/:id", api.UpdateActivityType)
			authorized.DELETE("/activity-types/:id", api.DeleteActivityType)

			authorized.GET("/scheduled-activities", api.ListScheduledActivities)
			authorized.POST("/scheduled-activities", api.CreateScheduledActivity)
			authorized.GET("/scheduled-activities/:id", api.GetScheduledActivity)
			authorized.PUT("/scheduled-activities/:id", api.UpdateScheduledActivity)
			authorized.PUT("/scheduled-activities/:id/active", api.SetScheduledActivityActive)
			authorized.DELETE("/scheduled-activities/:id", api.DeleteScheduledActivity)

			authorized.GET("/day-plan", api.GetDayPlan)
			authorized.PUT("/day-plan/status", api.SetActivityStatus)
			authorized.DELETE("/day-plan/status", api.ClearActivityStatus)

			authorized.GET("/activity-logs", api.ListActivityLogs)
			authorized.POST("/activity-logs", api.CreateActivityLog)
			authorized.DELETE("/activity-logs/:id", api.DeleteActivityLog)

			authorized.GET("/foods", api.ListFoods)
			authorized.POST("/foods", api.CreateFood)
			authorized.GET("/foods/:id", api.GetFood)
			authorized.PUT("/foods/:id", api.UpdateFood)
			authorized.PUT("/foods/:id/favorite", api.SetFoodFavorite)
			authorized.DELETE("/foods/:id", api.DeleteFood)

			authorized.GET("/recipes", api.ListRecipes)
			authorized.POST("/recipes", api.CreateRecipe)
			authorized.GET("/recipes/:id", api.GetRecipe)
			authorized.GET("/recipes/:id/nutrition", api.GetRecipeNutrition)
			authorized.PUT("/recipes/:id", api.UpdateRecipe)
			authorized.DELETE("/recipes/:id", api.DeleteRecipe)

			authorized.GET("/meals", api.ListMeals)
			authorized.POST("/meals", api.CreateMeal)
			authorized.GET("/meals/:id", api.GetMeal)
			authorized.PUT("/meals/:id", api.UpdateMeal)
			authorized.DELETE("/meals/:id", api.DeleteMeal)
			authorized.GET("/nutrition/daily", api.GetDailyNutrition)

			authorized.POST("/water", api.AddWater)
			authorized.GET("/water", api.ListWater)
			authorized.DELETE("/water/:id", api.DeleteWater)

			authorized.POST("/symptoms", api.AddSymptom)
			authorized.GET("/symptoms", api.ListSymptoms)
			authorized.DELETE("/symptoms/:id", api.DeleteSymptom)

			authorized.POST("/bowel-movements", api.AddBowelMovement)
			authorized.GET("/bowel-movements", api.ListBowelMovements)
			authorized.DELETE("/bowel-movements/:id", api.DeleteBowelMovement)

			authorized.POST("/treatments", api.AddTreatment)
			authorized.GET("/treatments", api.ListTreatments)
			authorized.DELETE("/treatments/:id", api.DeleteTreatment)

			authorized.GET("/diary/summary", api.GetDaySummary)
			authorized.GET("/reports/weekly", api.GetWeeklyReport)

			authorized.GET("/settings", api.GetSettings)
			authorized.PUT("/settings", api.UpdateSettings)

			authorized.POST("/upload/photo", api.UploadPhoto)
		}
	}

	return r
}
