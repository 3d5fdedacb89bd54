package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrDiaryEntryNotFound 在指定日记条目不存在时返回
	ErrDiaryEntryNotFound = errors.New("diary entry not found")
	// ErrDiaryEntryInvalid 当日记条目字段缺失或非法时返回
	ErrDiaryEntryInvalid = errors.New("invalid diary entry")
)

// DiaryService 负责饮水/症状/排便/用药四类快捷记录与每日摘要
type DiaryService struct {
	db    *gorm.DB
	plans *DayPlanService
}

// WaterInput 定义饮水记录输入
type WaterInput struct {
	LogDate  time.Time
	LogTime  *time.Time
	AmountML int
}

// SymptomInput 定义症状记录输入，Severity 取 0-10
type SymptomInput struct {
	LogDate  time.Time
	LogTime  *time.Time
	Symptom  string
	Severity int
	Note     string
}

// BowelMovementInput 定义排便记录输入，BristolType 取 1-7
type BowelMovementInput struct {
	LogDate     time.Time
	LogTime     *time.Time
	BristolType int
	Note        string
}

// TreatmentInput 定义用药/补剂记录输入
type TreatmentInput struct {
	LogDate time.Time
	LogTime *time.Time
	Name    string
	Dose    string
	Note    string
}

// DaySummary 汇总某天的全部日记维度
type DaySummary struct {
	Date               time.Time
	WaterTotalML       int
	MealCount          int
	SymptomCount       int
	MaxSymptomSeverity int
	BowelMovementCount int
	TreatmentCount     int
	ActivityMinutes    int
	PlannedCount       int
	CompletedCount     int
	SkippedCount       int
	PartialCount       int
	PendingCount       int
	PlanIssueCount     int
}

// NewDiaryService 构造 DiaryService
func NewDiaryService(gdb *gorm.DB, plans *DayPlanService) *DiaryService {
	return &DiaryService{db: gdb, plans: plans}
}

// AddWater 追加一条饮水记录
func (s *DiaryService) AddWater(input WaterInput) (*db.WaterIntake, error) {
	if input.AmountML <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDiaryEntryInvalid)
	}
	if input.LogDate.IsZero() {
		return nil, fmt.Errorf("%w: log date is required", ErrDiaryEntryInvalid)
	}

	record := db.WaterIntake{
		LogDate:  normalizeToDate(input.LogDate),
		LogTime:  input.LogTime,
		AmountML: input.AmountML,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create water intake: %w", err)
	}
	return &record, nil
}

// ListWater 返回某天的饮水记录
func (s *DiaryService) ListWater(date time.Time) ([]db.WaterIntake, error) {
	var records []db.WaterIntake
	if err := s.db.Where("log_date = ?", normalizeToDate(date)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list water intakes: %w", err)
	}
	return records, nil
}

// DeleteWater 删除指定饮水记录
func (s *DiaryService) DeleteWater(id uint) error {
	return s.deleteEntry(&db.WaterIntake{}, id, "delete water intake")
}

// DailyWaterML 汇总某天的饮水量（毫升）
func (s *DiaryService) DailyWaterML(date time.Time) (int, error) {
	var total int64
	if err := s.db.Model(&db.WaterIntake{}).
		Where("log_date = ?", normalizeToDate(date)).
		Select("COALESCE(SUM(amount_ml), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum water intake: %w", err)
	}
	return int(total), nil
}

// AddSymptom 追加一条症状记录
func (s *DiaryService) AddSymptom(input SymptomInput) (*db.SymptomEntry, error) {
	symptom := strings.TrimSpace(input.Symptom)
	if symptom == "" {
		return nil, fmt.Errorf("%w: symptom is required", ErrDiaryEntryInvalid)
	}
	if input.Severity < 0 || input.Severity > 10 {
		return nil, fmt.Errorf("%w: severity must be between 0 and 10", ErrDiaryEntryInvalid)
	}
	if input.LogDate.IsZero() {
		return nil, fmt.Errorf("%w: log date is required", ErrDiaryEntryInvalid)
	}

	record := db.SymptomEntry{
		LogDate:  normalizeToDate(input.LogDate),
		LogTime:  input.LogTime,
		Symptom:  symptom,
		Severity: input.Severity,
		Note:     strings.TrimSpace(input.Note),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create symptom entry: %w", err)
	}
	return &record, nil
}

// ListSymptoms 返回某天的症状记录
func (s *DiaryService) ListSymptoms(date time.Time) ([]db.SymptomEntry, error) {
	var records []db.SymptomEntry
	if err := s.db.Where("log_date = ?", normalizeToDate(date)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list symptom entries: %w", err)
	}
	return records, nil
}

// DeleteSymptom 删除指定症状记录
func (s *DiaryService) DeleteSymptom(id uint) error {
	return s.deleteEntry(&db.SymptomEntry{}, id, "delete symptom entry")
}

// AddBowelMovement 追加一条排便记录
func (s *DiaryService) AddBowelMovement(input BowelMovementInput) (*db.BowelMovement, error) {
	if input.BristolType < 1 || input.BristolType > 7 {
		return nil, fmt.Errorf("%w: bristol type must be between 1 and 7", ErrDiaryEntryInvalid)
	}
	if input.LogDate.IsZero() {
		return nil, fmt.Errorf("%w: log date is required", ErrDiaryEntryInvalid)
	}

	record := db.BowelMovement{
		LogDate:     normalizeToDate(input.LogDate),
		LogTime:     input.LogTime,
		BristolType: input.BristolType,
		Note:        strings.TrimSpace(input.Note),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create bowel movement: %w", err)
	}
	return &record, nil
}

// ListBowelMovements 返回某天的排便记录
func (s *DiaryService) ListBowelMovements(date time.Time) ([]db.BowelMovement, error) {
	var records []db.BowelMovement
	if err := s.db.Where("log_date = ?", normalizeToDate(date)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list bowel movements: %w", err)
	}
	return records, nil
}

// DeleteBowelMovement 删除指定排便记录
func (s *DiaryService) DeleteBowelMovement(id uint) error {
	return s.deleteEntry(&db.BowelMovement{}, id, "delete bowel movement")
}

// AddTreatment 追加一条用药/补剂记录
func (s *DiaryService) AddTreatment(input TreatmentInput) (*db.TreatmentEntry, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrDiaryEntryInvalid)
	}
	if input.LogDate.IsZero() {
		return nil, fmt.Errorf("%w: log date is required", ErrDiaryEntryInvalid)
	}

	record := db.TreatmentEntry{
		LogDate: normalizeToDate(input.LogDate),
		LogTime: input.LogTime,
		Name:    name,
		Dose:    strings.TrimSpace(input.Dose),
		Note:    strings.TrimSpace(input.Note),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create treatment entry: %w", err)
	}
	return &record, nil
}

// ListTreatments 返回某天的用药记录
func (s *DiaryService) ListTreatments(date time.Time) ([]db.TreatmentEntry, error) {
	var records []db.TreatmentEntry
	if err := s.db.Where("log_date = ?", normalizeToDate(date)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list treatment entries: %w", err)
	}
	return records, nil
}

// DeleteTreatment 删除指定用药记录
func (s *DiaryService) DeleteTreatment(id uint) error {
	return s.deleteEntry(&db.TreatmentEntry{}, id, "delete treatment entry")
}

// DaySummary 汇总某天各维度：饮水、餐食、症状、排便、用药、活动与计划完成度
func (s *DiaryService) DaySummary(date time.Time) (*DaySummary, error) {
	day := normalizeToDate(date)
	summary := &DaySummary{Date: day}

	water, err := s.DailyWaterML(day)
	if err != nil {
		return nil, err
	}
	summary.WaterTotalML = water

	if err := s.countByDate(&db.MealEntry{}, day, &summary.MealCount, "count meals"); err != nil {
		return nil, err
	}
	if err := s.countByDate(&db.BowelMovement{}, day, &summary.BowelMovementCount, "count bowel movements"); err != nil {
		return nil, err
	}
	if err := s.countByDate(&db.TreatmentEntry{}, day, &summary.TreatmentCount, "count treatments"); err != nil {
		return nil, err
	}

	symptoms, err := s.ListSymptoms(day)
	if err != nil {
		return nil, err
	}
	summary.SymptomCount = len(symptoms)
	for _, symptom := range symptoms {
		if symptom.Severity > summary.MaxSymptomSeverity {
			summary.MaxSymptomSeverity = symptom.Severity
		}
	}

	var minutes int64
	if err := s.db.Model(&db.ActivityLog{}).
		Where("log_date = ?", day).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Scan(&minutes).Error; err != nil {
		return nil, fmt.Errorf("sum activity minutes: %w", err)
	}
	summary.ActivityMinutes = int(minutes)

	plan, err := s.plans.ResolveDay(day)
	if err != nil {
		return nil, err
	}
	summary.PlannedCount = len(plan.Items)
	summary.PlanIssueCount = len(plan.Issues)
	for _, item := range plan.Items {
		switch item.Status {
		case db.ActivityStatusCompleted:
			summary.CompletedCount++
		case db.ActivityStatusSkipped:
			summary.SkippedCount++
		case db.ActivityStatusPartial:
			summary.PartialCount++
		default:
			summary.PendingCount++
		}
	}

	return summary, nil
}

func (s *DiaryService) countByDate(model interface{}, day time.Time, out *int, action string) error {
	var count int64
	if err := s.db.Model(model).Where("log_date = ?", day).Count(&count).Error; err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	*out = int(count)
	return nil
}

func (s *DiaryService) deleteEntry(model interface{}, id uint, action string) error {
	result := s.db.Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("%s: %w", action, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDiaryEntryNotFound
	}
	return nil
}
