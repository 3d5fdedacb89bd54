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
	// ErrActivityLogNotFound 在指定流水不存在时返回
	ErrActivityLogNotFound = errors.New("activity log not found")
	// ErrActivityLogInvalid 当流水字段缺失或非法时返回
	ErrActivityLogInvalid = errors.New("invalid activity log")
)

var validIntensities = []string{"light", "moderate", "intense"}

// ActivityLogService 负责自由活动流水：追加写入、按天查询与时长汇总。
// 与计划打卡不同，流水无唯一约束，同一天可记任意多条。
type ActivityLogService struct {
	db *gorm.DB
}

// ActivityLogInput 定义记录活动时的输入对象。
// ActivityTypeID 为零时按 ActivityTypeName 查找类型，首次使用的名称会自动入册。
type ActivityLogInput struct {
	ActivityTypeID   uint
	ActivityTypeName string
	DurationMinutes  int
	Intensity        string
	LogDate          time.Time
	LogTime          *time.Time
	Note             string
}

// NewActivityLogService 构造 ActivityLogService
func NewActivityLogService(gdb *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: gdb}
}

// Log 追加一条活动流水，并在同一事务内累计类型热度
func (s *ActivityLogService) Log(input ActivityLogInput) (*db.ActivityLog, error) {
	if input.ActivityTypeID == 0 && strings.TrimSpace(input.ActivityTypeName) == "" {
		return nil, fmt.Errorf("%w: activity type is required", ErrActivityLogInvalid)
	}
	if input.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrActivityLogInvalid)
	}
	if input.LogDate.IsZero() {
		return nil, fmt.Errorf("%w: log date is required", ErrActivityLogInvalid)
	}

	intensity, err := normalizeIntensity(input.Intensity)
	if err != nil {
		return nil, err
	}

	var record db.ActivityLog
	err = s.db.Transaction(func(tx *gorm.DB) error {
		typeID := input.ActivityTypeID
		if typeID == 0 {
			resolved, err := findOrCreateActivityType(tx, input.ActivityTypeName)
			if err != nil {
				return err
			}
			typeID = resolved.ID
		} else {
			var activityType db.ActivityType
			if err := tx.First(&activityType, typeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrActivityTypeNotFound
				}
				return fmt.Errorf("check activity type: %w", err)
			}
		}

		record = db.ActivityLog{
			ActivityTypeID:  typeID,
			DurationMinutes: input.DurationMinutes,
			Intensity:       intensity,
			LogDate:         normalizeToDate(input.LogDate),
			LogTime:         input.LogTime,
			Note:            strings.TrimSpace(input.Note),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create activity log: %w", err)
		}

		return bumpActivityTypeUsage(tx, typeID)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByDate 返回某天的全部流水，含镜像自计划打卡的条目
func (s *ActivityLogService) ListByDate(date time.Time) ([]db.ActivityLog, error) {
	var logs []db.ActivityLog
	day := normalizeToDate(date)

	if err := s.db.Preload("ActivityType").
		Where("log_date = ?", day).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}

// ListBetween 返回指定区间内的流水
func (s *ActivityLogService) ListBetween(start, end time.Time) ([]db.ActivityLog, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrActivityLogInvalid)
	}

	var logs []db.ActivityLog
	if err := s.db.Preload("ActivityType").
		Where("log_date BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("log_date ASC, created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}

// Delete 删除指定流水。镜像条目也可删除，打卡状态保持不变。
func (s *ActivityLogService) Delete(id uint) error {
	result := s.db.Delete(&db.ActivityLog{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete activity log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrActivityLogNotFound
	}
	return nil
}

// DailyMinutes 汇总某天的活动总时长（分钟）
func (s *ActivityLogService) DailyMinutes(date time.Time) (int, error) {
	var total int64
	day := normalizeToDate(date)

	if err := s.db.Model(&db.ActivityLog{}).
		Where("log_date = ?", day).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum activity minutes: %w", err)
	}
	return int(total), nil
}

func normalizeIntensity(intensity string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(intensity))
	if trimmed == "" {
		return "", nil
	}
	for _, candidate := range validIntensities {
		if trimmed == candidate {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported intensity %s", ErrActivityLogInvalid, intensity)
}
