package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/locale"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/schedule"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	reportMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	reportSanitizer = bluemonday.UGCPolicy()
)

var (
	weekdayNamesZH = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}
	weekdayNamesEN = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

// ReportService 基于日记数据生成周报，产出 Markdown 与消毒后的 HTML 双格式
type ReportService struct {
	db    *gorm.DB
	diary *DiaryService
	meals *MealService
}

// WeeklyReport 是一次周报生成的结果
type WeeklyReport struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Language  string
	Markdown  string
	HTML      string
}

// NewReportService 构造 ReportService
func NewReportService(gdb *gorm.DB, diary *DiaryService, meals *MealService) *ReportService {
	return &ReportService{db: gdb, diary: diary, meals: meals}
}

// WeeklyReport 生成从 weekStart 起 7 天的周报
func (s *ReportService) WeeklyReport(weekStart time.Time, language string) (*WeeklyReport, error) {
	start := normalizeToDate(weekStart)
	end := start.AddDate(0, 0, 6)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s ~ %s\n\n",
		locale.Pick(language, "Weekly Diary Report", "每周日记报告"),
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	var plannedTotal, completedTotal int

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)

		summary, err := s.diary.DaySummary(day)
		if err != nil {
			return nil, err
		}
		meals, err := s.meals.ListByDate(day)
		if err != nil {
			return nil, err
		}
		symptoms, err := s.diary.ListSymptoms(day)
		if err != nil {
			return nil, err
		}

		plannedTotal += summary.PlannedCount
		completedTotal += summary.CompletedCount

		weekday := weekdayNamesZH[schedule.WeekdayIndex(day)]
		if locale.NormalizeLanguage(language) == locale.LanguageEnglish {
			weekday = weekdayNamesEN[schedule.WeekdayIndex(day)]
		}
		fmt.Fprintf(&b, "## %s %s\n\n", day.Format("2006-01-02"), weekday)

		fmt.Fprintf(&b, "- %s: %d ml\n", locale.Pick(language, "Water", "饮水"), summary.WaterTotalML)
		fmt.Fprintf(&b, "- %s: %d %s\n",
			locale.Pick(language, "Activity", "活动"),
			summary.ActivityMinutes,
			locale.Pick(language, "min", "分钟"))
		if summary.PlannedCount > 0 {
			fmt.Fprintf(&b, "- %s: %d/%d\n",
				locale.Pick(language, "Planned activities completed", "计划完成"),
				summary.CompletedCount, summary.PlannedCount)
		}
		if summary.BowelMovementCount > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", locale.Pick(language, "Bowel movements", "排便"), summary.BowelMovementCount)
		}
		if summary.TreatmentCount > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", locale.Pick(language, "Treatments", "用药"), summary.TreatmentCount)
		}
		b.WriteString("\n")

		if len(meals) > 0 {
			fmt.Fprintf(&b, "| %s | %s | FODMAP |\n| --- | --- | --- |\n",
				locale.Pick(language, "Meal", "餐次"),
				locale.Pick(language, "Items", "内容"))
			for j := range meals {
				entry := &meals[j]
				nutrition := mealNutritionOf(entry)
				fmt.Fprintf(&b, "| %s | %s | %s |\n",
					mealTypeLabel(language, entry.MealType),
					describeMealItems(entry),
					nutrition.FodmapLevel)
			}
			b.WriteString("\n")

			for j := range meals {
				// 只内嵌本地上传的照片，外部链接一律不进报告
				if url := meals[j].PhotoURL; strings.HasPrefix(url, "/uploads/") {
					fmt.Fprintf(&b, "![%s](%s)\n\n", mealTypeLabel(language, meals[j].MealType), url)
				}
			}
		}

		if len(symptoms) > 0 {
			fmt.Fprintf(&b, "%s:\n\n", locale.Pick(language, "Symptoms", "症状"))
			for _, symptom := range symptoms {
				line := fmt.Sprintf("- %s (%d/10)", symptom.Symptom, symptom.Severity)
				if symptom.Note != "" {
					line += ", " + symptom.Note
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "## %s\n\n", locale.Pick(language, "Week Overview", "本周总览"))
	if plannedTotal > 0 {
		fmt.Fprintf(&b, "%s: %d/%d (%.0f%%)\n",
			locale.Pick(language, "Plan adherence", "计划完成度"),
			completedTotal, plannedTotal,
			float64(completedTotal)/float64(plannedTotal)*100)
	} else {
		b.WriteString(locale.Pick(language, "No scheduled activities this week.", "本周没有计划内活动。") + "\n")
	}

	markdown := b.String()
	rendered, err := renderReportHTML(markdown)
	if err != nil {
		return nil, err
	}

	return &WeeklyReport{
		WeekStart: start,
		WeekEnd:   end,
		Language:  locale.NormalizeLanguage(language),
		Markdown:  markdown,
		HTML:      rendered,
	}, nil
}

// renderReportHTML 把 Markdown 渲染为 HTML 并做 UGC 消毒
func renderReportHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := reportMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return string(reportSanitizer.SanitizeBytes(buf.Bytes())), nil
}

func describeMealItems(entry *db.MealEntry) string {
	parts := make([]string, 0, len(entry.Items))
	for _, item := range entry.Items {
		switch {
		case item.Food != nil:
			parts = append(parts, fmt.Sprintf("%s ×%.1f", item.Food.Name, item.Quantity))
		case item.Recipe != nil:
			parts = append(parts, fmt.Sprintf("%s ×%.1f", item.Recipe.Name, item.Quantity))
		}
	}
	return strings.Join(parts, ", ")
}

func mealTypeLabel(language, mealType string) string {
	switch mealType {
	case db.MealTypeBreakfast:
		return locale.Pick(language, "Breakfast", "早餐")
	case db.MealTypeLunch:
		return locale.Pick(language, "Lunch", "午餐")
	case db.MealTypeDinner:
		return locale.Pick(language, "Dinner", "晚餐")
	case db.MealTypeSnack:
		return locale.Pick(language, "Snack", "加餐")
	default:
		return mealType
	}
}
