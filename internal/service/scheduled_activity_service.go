package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/schedule"
	"gorm.io/gorm"
)

var (
	// ErrScheduledActivityNotFound 在指定计划不存在时返回
	ErrScheduledActivityNotFound = errors.New("scheduled activity not found")
	// ErrScheduledActivityInvalid 当计划字段缺失或非法时返回
	ErrScheduledActivityInvalid = errors.New("invalid scheduled activity")
)

// ScheduledActivityService 负责周期性活动计划的增删改查
// 重复规则在写入时即校验，坏规则不落库；历史坏数据由当日视图隔离
type ScheduledActivityService struct {
	db *gorm.DB
}

// ScheduledActivityInput 定义创建/更新计划时可配置字段
type ScheduledActivityInput struct {
	ActivityTypeID  uint
	Name            string
	DurationMinutes int
	FrequencyType   string
	FrequencyValue  string
	StartDate       time.Time
	ReminderEnabled bool
	ReminderTime    string
	IsActive        *bool
}

// NewScheduledActivityService 构造 ScheduledActivityService
func NewScheduledActivityService(gdb *gorm.DB) *ScheduledActivityService {
	return &ScheduledActivityService{db: gdb}
}

// List 返回计划列表，includeInactive=false 时仅返回启用中的计划
func (s *ScheduledActivityService) List(includeInactive bool) ([]db.ScheduledActivity, error) {
	var plans []db.ScheduledActivity

	query := s.db.Preload("ActivityType").Order("created_at ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list scheduled activities: %w", err)
	}
	return plans, nil
}

// Get 根据 ID 获取计划
func (s *ScheduledActivityService) Get(id uint) (*db.ScheduledActivity, error) {
	var plan db.ScheduledActivity
	if err := s.db.Preload("ActivityType").First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledActivityNotFound
		}
		return nil, fmt.Errorf("get scheduled activity: %w", err)
	}
	return &plan, nil
}

// Create 新建计划，规则与活动类型在此处校验
func (s *ScheduledActivityService) Create(input ScheduledActivityInput) (*db.ScheduledActivity, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	plan := db.ScheduledActivity{
		ActivityTypeID:  normalized.ActivityTypeID,
		Name:            normalized.Name,
		DurationMinutes: normalized.DurationMinutes,
		FrequencyType:   normalized.FrequencyType,
		FrequencyValue:  normalized.FrequencyValue,
		StartDate:       normalized.StartDate,
		ReminderEnabled: normalized.ReminderEnabled,
		ReminderTime:    normalized.ReminderTime,
		IsActive:        true,
	}
	if normalized.IsActive != nil {
		plan.IsActive = *normalized.IsActive
	}

	if err := s.db.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("create scheduled activity: %w", err)
	}
	return s.Get(plan.ID)
}

// Update 更新计划，规则同样重新校验
func (s *ScheduledActivityService) Update(id uint, input ScheduledActivityInput) (*db.ScheduledActivity, error) {
	normalized, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	var existing db.ScheduledActivity
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduledActivityNotFound
		}
		return nil, fmt.Errorf("find scheduled activity: %w", err)
	}

	existing.ActivityTypeID = normalized.ActivityTypeID
	existing.Name = normalized.Name
	existing.DurationMinutes = normalized.DurationMinutes
	existing.FrequencyType = normalized.FrequencyType
	existing.FrequencyValue = normalized.FrequencyValue
	existing.StartDate = normalized.StartDate
	existing.ReminderEnabled = normalized.ReminderEnabled
	existing.ReminderTime = normalized.ReminderTime
	if normalized.IsActive != nil {
		existing.IsActive = *normalized.IsActive
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update scheduled activity: %w", err)
	}
	return s.Get(existing.ID)
}

// SetActive 切换计划启用状态；停用保留全部历史，仅从当日视图消失
func (s *ScheduledActivityService) SetActive(id uint, active bool) (*db.ScheduledActivity, error) {
	result := s.db.Model(&db.ScheduledActivity{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return nil, fmt.Errorf("set scheduled activity active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrScheduledActivityNotFound
	}
	return s.Get(id)
}

// Delete 硬删除计划及其打卡记录。
// 已镜像到自由流水的完成记录保留，但解除对计划的引用。
func (s *ScheduledActivityService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var plan db.ScheduledActivity
		if err := tx.First(&plan, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduledActivityNotFound
			}
			return err
		}

		if err := tx.Model(&db.ActivityLog{}).
			Where("scheduled_activity_id = ?", id).
			Update("scheduled_activity_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().
			Where("scheduled_activity_id = ?", id).
			Delete(&db.ScheduledActivityLog{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&db.ScheduledActivity{}, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrScheduledActivityNotFound) {
			return err
		}
		return fmt.Errorf("delete scheduled activity: %w", err)
	}
	return nil
}

// validateInput 校验并规范化计划字段。
// 频率值存入规范形式（去空格、星期去重排序、间隔十进制），便于等值比较。
func (s *ScheduledActivityService) validateInput(input ScheduledActivityInput) (ScheduledActivityInput, error) {
	out := input
	out.Name = strings.TrimSpace(input.Name)
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is required", ErrScheduledActivityInvalid)
	}

	if input.DurationMinutes < 0 {
		return out, fmt.Errorf("%w: duration must not be negative", ErrScheduledActivityInvalid)
	}

	if input.ActivityTypeID == 0 {
		return out, fmt.Errorf("%w: activity type is required", ErrScheduledActivityInvalid)
	}
	var activityType db.ActivityType
	if err := s.db.First(&activityType, input.ActivityTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, ErrActivityTypeNotFound
		}
		return out, fmt.Errorf("check activity type: %w", err)
	}

	rule := schedule.Rule{
		Frequency: schedule.Frequency(strings.TrimSpace(strings.ToLower(input.FrequencyType))),
		Value:     strings.TrimSpace(input.FrequencyValue),
		StartDate: input.StartDate,
	}
	if err := rule.Validate(); err != nil {
		return out, err
	}
	out.FrequencyType = string(rule.Frequency)

	switch rule.Frequency {
	case schedule.FrequencySpecificDays:
		days, err := schedule.ParseWeekdays(rule.Value)
		if err != nil {
			return out, err
		}
		out.FrequencyValue = schedule.FormatWeekdays(days)
	case schedule.FrequencyInterval:
		interval, err := strconv.Atoi(rule.Value)
		if err != nil || interval < 1 {
			return out, fmt.Errorf("%w: interval must be a positive integer", schedule.ErrInvalidRule)
		}
		out.FrequencyValue = strconv.Itoa(interval)
	default:
		out.FrequencyValue = ""
	}

	if input.StartDate.IsZero() {
		return out, fmt.Errorf("%w: start date is required", ErrScheduledActivityInvalid)
	}
	out.StartDate = normalizeToDate(input.StartDate)

	out.ReminderTime = strings.TrimSpace(input.ReminderTime)
	if input.ReminderEnabled && out.ReminderTime != "" {
		if _, err := time.Parse("15:04", out.ReminderTime); err != nil {
			return out, fmt.Errorf("%w: reminder time must be HH:MM", ErrScheduledActivityInvalid)
		}
	}

	return out, nil
}
