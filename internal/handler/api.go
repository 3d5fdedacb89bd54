package handler

import (
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/auth"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	tokens        *auth.Manager
	activityTypes *service.ActivityTypeService
	plans         *service.ScheduledActivityService
	dayPlans      *service.DayPlanService
	activityLogs  *service.ActivityLogService
	foods         *service.FoodService
	recipes       *service.RecipeService
	meals         *service.MealService
	diary         *service.DiaryService
	settings      *service.SettingsService
	reports       *service.ReportService
	uploadDir     string
	uploadURL     string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, tokens *auth.Manager, uploadDir, uploadURL string) *API {
	dayPlanService := service.NewDayPlanService(db)
	mealService := service.NewMealService(db)
	diaryService := service.NewDiaryService(db, dayPlanService)

	return &API{
		db:            db,
		tokens:        tokens,
		activityTypes: service.NewActivityTypeService(db),
		plans:         service.NewScheduledActivityService(db),
		dayPlans:      dayPlanService,
		activityLogs:  service.NewActivityLogService(db),
		foods:         service.NewFoodService(db),
		recipes:       service.NewRecipeService(db),
		meals:         mealService,
		diary:         diaryService,
		settings:      service.NewSettingsService(db),
		reports:       service.NewReportService(db, diaryService, mealService),
		uploadDir:     uploadDir,
		uploadURL:     uploadURL,
	}
}
