package main

import (
	"fmt"
	"log"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/config"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/joho/godotenv"
)

// 种子数据生成器：写入属主账号、预置活动类型、FODMAP 食物库与示例配方/计划
func main() {
	// .env 可选，与服务端共用同一份配置
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始写入种子数据...")

	username, password := cfg.OwnerUsername, cfg.OwnerPassword
	if username == "" {
		username = "owner"
	}
	if password == "" {
		password = "fodmap123"
	}
	hadOwner, err := db.HasOwner()
	if err != nil {
		log.Fatal("检查属主账号失败:", err)
	}
	if err := db.EnsureOwner(username, password); err != nil {
		log.Fatal("创建属主账号失败:", err)
	}

	if err := service.NewActivityTypeService(db.DB).EnsureDefaults(); err != nil {
		log.Fatal("写入预置活动类型失败:", err)
	}

	seedFoods()
	seedRecipes()
	seedPlans()

	fmt.Println("种子数据写入完成！")
	if hadOwner {
		fmt.Println("属主账号已存在，保持原有凭据不变")
	} else {
		fmt.Printf("账号: %s (密码: %s)\n", username, password)
	}
	fmt.Printf("食物库: %d 种食材\n", len(foodCatalog))
}

// foodCatalog 是预置食物库，覆盖三档 FODMAP 等级的常见食材。
// 营养成分按一份（ServingSize）估算。
var foodCatalog = []db.Food{
	// 低 FODMAP
	{Name: "香蕉", Category: "fruit", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 根 (100g)", Nutrition: db.NutritionFacts{Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3, Fiber: 2.6}},
	{Name: "草莓", Category: "fruit", FodmapLevel: db.FodmapLevelLow, ServingSize: "10 颗 (150g)", Nutrition: db.NutritionFacts{Calories: 48, Protein: 1, Carbs: 11.5, Fat: 0.5, Fiber: 3}},
	{Name: "蓝莓", Category: "fruit", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 小碗 (125g)", Nutrition: db.NutritionFacts{Calories: 71, Protein: 0.9, Carbs: 18, Fat: 0.4, Fiber: 3}},
	{Name: "橙子", Category: "fruit", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 个 (130g)", Nutrition: db.NutritionFacts{Calories: 62, Protein: 1.2, Carbs: 15.4, Fat: 0.2, Fiber: 3.1}},
	{Name: "白米饭", Category: "grain", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 碗 (150g)", Nutrition: db.NutritionFacts{Calories: 195, Protein: 4, Carbs: 42.9, Fat: 0.4, Fiber: 0.6}},
	{Name: "燕麦", Category: "grain", FodmapLevel: db.FodmapLevelLow, ServingSize: "1/2 杯 (40g)", Nutrition: db.NutritionFacts{Calories: 150, Protein: 5, Carbs: 27, Fat: 2.5, Fiber: 4}},
	{Name: "藜麦", Category: "grain", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 碗 (155g)", Nutrition: db.NutritionFacts{Calories: 185, Protein: 6.8, Carbs: 32.9, Fat: 3, Fiber: 4.4}},
	{Name: "鸡蛋", Category: "protein", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 个 (50g)", Nutrition: db.NutritionFacts{Calories: 72, Protein: 6.3, Carbs: 0.4, Fat: 4.8, Fiber: 0}},
	{Name: "鸡胸肉", Category: "protein", FodmapLevel: db.FodmapLevelLow, ServingSize: "100g", Nutrition: db.NutritionFacts{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6, Fiber: 0}},
	{Name: "三文鱼", Category: "protein", FodmapLevel: db.FodmapLevelLow, ServingSize: "100g", Nutrition: db.NutritionFacts{Calories: 208, Protein: 20, Carbs: 0, Fat: 13, Fiber: 0}},
	{Name: "硬豆腐", Category: "protein", FodmapLevel: db.FodmapLevelLow, ServingSize: "100g", Nutrition: db.NutritionFacts{Calories: 144, Protein: 15.5, Carbs: 2.3, Fat: 8.7, Fiber: 2.3}},
	{Name: "胡萝卜", Category: "vegetable", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 根 (75g)", Nutrition: db.NutritionFacts{Calories: 31, Protein: 0.7, Carbs: 7.2, Fat: 0.2, Fiber: 2.1}},
	{Name: "菠菜", Category: "vegetable", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 把 (75g)", Nutrition: db.NutritionFacts{Calories: 17, Protein: 2.1, Carbs: 2.7, Fat: 0.3, Fiber: 1.7}},
	{Name: "黄瓜", Category: "vegetable", FodmapLevel: db.FodmapLevelLow, ServingSize: "半根 (100g)", Nutrition: db.NutritionFacts{Calories: 15, Protein: 0.7, Carbs: 3.6, Fat: 0.1, Fiber: 0.5}},
	{Name: "土豆", Category: "vegetable", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 个 (150g)", Nutrition: db.NutritionFacts{Calories: 116, Protein: 3.1, Carbs: 26.3, Fat: 0.1, Fiber: 3.3}},
	{Name: "无乳糖牛奶", Category: "dairy", FodmapLevel: db.FodmapLevelLow, ServingSize: "1 杯 (250ml)", Nutrition: db.NutritionFacts{Calories: 105, Protein: 8.3, Carbs: 12.5, Fat: 2.5, Fiber: 0}},

	// 中 FODMAP
	{Name: "西兰花", Category: "vegetable", FodmapLevel: db.FodmapLevelMedium, ServingSize: "1 小碗 (75g)", Nutrition: db.NutritionFacts{Calories: 26, Protein: 2.1, Carbs: 5, Fat: 0.3, Fiber: 2}},
	{Name: "红薯", Category: "vegetable", FodmapLevel: db.FodmapLevelMedium, ServingSize: "半个 (75g)", Nutrition: db.NutritionFacts{Calories: 64, Protein: 1.2, Carbs: 15, Fat: 0.1, Fiber: 2.3}},
	{Name: "牛油果", Category: "fruit", FodmapLevel: db.FodmapLevelMedium, ServingSize: "1/4 个 (50g)", Nutrition: db.NutritionFacts{Calories: 80, Protein: 1, Carbs: 4.3, Fat: 7.3, Fiber: 3.4}},
	{Name: "甜玉米", Category: "vegetable", FodmapLevel: db.FodmapLevelMedium, ServingSize: "半根 (75g)", Nutrition: db.NutritionFacts{Calories: 64, Protein: 2.4, Carbs: 14, Fat: 1, Fiber: 1.5}},

	// 高 FODMAP
	{Name: "洋葱", Category: "vegetable", FodmapLevel: db.FodmapLevelHigh, ServingSize: "100g", Nutrition: db.NutritionFacts{Calories: 40, Protein: 1.1, Carbs: 9.3, Fat: 0.1, Fiber: 1.7}},
	{Name: "大蒜", Category: "vegetable", FodmapLevel: db.FodmapLevelHigh, ServingSize: "3 瓣 (10g)", Nutrition: db.NutritionFacts{Calories: 15, Protein: 0.6, Carbs: 3.3, Fat: 0.1, Fiber: 0.2}},
	{Name: "苹果", Category: "fruit", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 个 (180g)", Nutrition: db.NutritionFacts{Calories: 94, Protein: 0.5, Carbs: 25, Fat: 0.3, Fiber: 4.3}},
	{Name: "梨", Category: "fruit", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 个 (180g)", Nutrition: db.NutritionFacts{Calories: 102, Protein: 0.6, Carbs: 27.3, Fat: 0.2, Fiber: 5.6}},
	{Name: "西瓜", Category: "fruit", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 块 (150g)", Nutrition: db.NutritionFacts{Calories: 45, Protein: 0.9, Carbs: 11.3, Fat: 0.2, Fiber: 0.6}},
	{Name: "芒果", Category: "fruit", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 个 (200g)", Nutrition: db.NutritionFacts{Calories: 120, Protein: 1.6, Carbs: 30, Fat: 0.8, Fiber: 3.2}},
	{Name: "全麦面包", Category: "grain", FodmapLevel: db.FodmapLevelHigh, ServingSize: "2 片 (70g)", Nutrition: db.NutritionFacts{Calories: 174, Protein: 8.4, Carbs: 32.2, Fat: 2.4, Fiber: 4.8}},
	{Name: "牛奶", Category: "dairy", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 杯 (250ml)", Nutrition: db.NutritionFacts{Calories: 122, Protein: 8.2, Carbs: 11.7, Fat: 4.8, Fiber: 0}},
	{Name: "蜂蜜", Category: "sweetener", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 勺 (21g)", Nutrition: db.NutritionFacts{Calories: 64, Protein: 0.1, Carbs: 17.3, Fat: 0, Fiber: 0}},
	{Name: "腰果", Category: "nut", FodmapLevel: db.FodmapLevelHigh, ServingSize: "1 把 (30g)", Nutrition: db.NutritionFacts{Calories: 166, Protein: 5.5, Carbs: 9.2, Fat: 13.1, Fiber: 1}},
	{Name: "蘑菇", Category: "vegetable", FodmapLevel: db.FodmapLevelHigh, ServingSize: "100g", Nutrition: db.NutritionFacts{Calories: 22, Protein: 3.1, Carbs: 3.3, Fat: 0.3, Fiber: 1}},
}

// seedFoods 写入预置食物库，已有数据时跳过
func seedFoods() {
	var count int64
	db.DB.Model(&db.Food{}).Count(&count)
	if count > 0 {
		fmt.Println("食物库已存在，跳过创建")
		return
	}

	for _, food := range foodCatalog {
		record := food
		if err := db.DB.Create(&record).Error; err != nil {
			log.Fatal("写入食物失败:", err)
		}
	}
	fmt.Printf("已写入 %d 种食材\n", len(foodCatalog))
}

// seedRecipes 写入示例配方，引用食物库中的食材
func seedRecipes() {
	var count int64
	db.DB.Model(&db.Recipe{}).Count(&count)
	if count > 0 {
		fmt.Println("配方已存在，跳过创建")
		return
	}

	recipes := service.NewRecipeService(db.DB)
	samples := []struct {
		name        string
		description string
		servings    int
		items       map[string]float64
	}{
		{
			name:        "香蕉燕麦粥",
			description: "低 FODMAP 早餐，温和易消化",
			servings:    2,
			items:       map[string]float64{"香蕉": 1, "燕麦": 1, "无乳糖牛奶": 1},
		},
		{
			name:        "烤三文鱼配藜麦",
			description: "高蛋白晚餐，搭配低 FODMAP 蔬菜",
			servings:    1,
			items:       map[string]float64{"三文鱼": 1, "藜麦": 1, "胡萝卜": 1},
		},
	}

	for _, sample := range samples {
		input := service.RecipeInput{
			Name:        sample.name,
			Description: sample.description,
			Servings:    sample.servings,
		}
		for name, quantity := range sample.items {
			var food db.Food
			if err := db.DB.Where("name = ?", name).First(&food).Error; err != nil {
				log.Fatal("查找配料失败:", err)
			}
			input.Items = append(input.Items, service.RecipeItemInput{FoodID: food.ID, Quantity: quantity})
		}
		if _, err := recipes.Create(input); err != nil {
			log.Fatal("写入配方失败:", err)
		}
	}
	fmt.Printf("已写入 %d 个示例配方\n", len(samples))
}

// seedPlans 写入示例活动计划，挂在预置活动类型上
func seedPlans() {
	var count int64
	db.DB.Model(&db.ScheduledActivity{}).Count(&count)
	if count > 0 {
		fmt.Println("活动计划已存在，跳过创建")
		return
	}

	plans := service.NewScheduledActivityService(db.DB)
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	samples := []struct {
		typeName string
		input    service.ScheduledActivityInput
	}{
		{typeName: "walking", input: service.ScheduledActivityInput{Name: "晨间散步", DurationMinutes: 30, FrequencyType: "daily", StartDate: start}},
		{typeName: "yoga", input: service.ScheduledActivityInput{Name: "瑜伽课", DurationMinutes: 20, FrequencyType: "specific_days", FrequencyValue: "0,2,4", StartDate: start}},
		{typeName: "meditation", input: service.ScheduledActivityInput{Name: "正念冥想", DurationMinutes: 10, FrequencyType: "interval", FrequencyValue: "2", StartDate: start, ReminderEnabled: true, ReminderTime: "21:30"}},
	}

	for _, sample := range samples {
		var activityType db.ActivityType
		if err := db.DB.Where("name = ?", sample.typeName).First(&activityType).Error; err != nil {
			log.Fatal("查找活动类型失败:", err)
		}
		input := sample.input
		input.ActivityTypeID = activityType.ID
		if _, err := plans.Create(input); err != nil {
			log.Fatal("写入活动计划失败:", err)
		}
	}
	fmt.Printf("已写入 %d 个示例计划\n", len(samples))
}
