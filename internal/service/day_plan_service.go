package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/schedule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidActivityStatus 当状态值不在 completed/skipped/partial 内时返回
var ErrInvalidActivityStatus = errors.New("invalid activity status")

// DayPlanService 把启用中的计划解析成某一天的执行清单，并维护打卡状态。
// pending 不落库：当天无记录即视为待办。completed 会镜像一条自由流水，
// 镜像与打卡在同一事务内维护，保证两边一致。
type DayPlanService struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// DayPlanItem 是当日清单中的一项
type DayPlanItem struct {
	Plan                  db.ScheduledActivity
	Status                string
	ActualDurationMinutes int
}

// DayPlanIssue 描述被隔离的问题计划：规则非法或活动类型缺失。
// 单个计划的配置问题不影响其余计划的解析。
type DayPlanIssue struct {
	ScheduledActivityID uint
	Name                string
	Reason              string
}

// DayPlan 是某一天的完整解析结果
type DayPlan struct {
	Date   time.Time
	Items  []DayPlanItem
	Issues []DayPlanIssue
}

// NewDayPlanService 构造 DayPlanService
func NewDayPlanService(gdb *gorm.DB) *DayPlanService {
	return &DayPlanService{db: gdb, nowFn: time.Now}
}

// WithNowFunc 允许在测试中注入固定时钟。
func (s *DayPlanService) WithNowFunc(fn func() time.Time) *DayPlanService {
	if fn == nil {
		return s
	}
	s.nowFn = fn
	return s
}

// ResolveDay 解析指定日期的执行清单。
// 当天不到期的计划不会出现在结果里；有打卡记录的取记录状态，否则为 pending。
func (s *DayPlanService) ResolveDay(date time.Time) (*DayPlan, error) {
	day := normalizeToDate(date)
	plan := &DayPlan{Date: day, Items: []DayPlanItem{}, Issues: []DayPlanIssue{}}

	var candidates []db.ScheduledActivity
	if err := s.db.Preload("ActivityType").
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load scheduled activities: %w", err)
	}

	due := make([]db.ScheduledActivity, 0, len(candidates))
	dueIDs := make([]uint, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ActivityType.ID == 0 {
			plan.Issues = append(plan.Issues, DayPlanIssue{
				ScheduledActivityID: candidate.ID,
				Name:                candidate.Name,
				Reason:              "activity type missing",
			})
			continue
		}

		rule := schedule.Rule{
			Frequency: schedule.Frequency(candidate.FrequencyType),
			Value:     candidate.FrequencyValue,
			StartDate: candidate.StartDate,
		}
		isDue, err := rule.IsDue(day)
		if err != nil {
			plan.Issues = append(plan.Issues, DayPlanIssue{
				ScheduledActivityID: candidate.ID,
				Name:                candidate.Name,
				Reason:              err.Error(),
			})
			continue
		}
		if !isDue {
			continue
		}

		due = append(due, candidate)
		dueIDs = append(dueIDs, candidate.ID)
	}

	statuses := make(map[uint]db.ScheduledActivityLog, len(dueIDs))
	if len(dueIDs) > 0 {
		var logs []db.ScheduledActivityLog
		if err := s.db.Where("scheduled_activity_id IN ? AND log_date = ?", dueIDs, day).
			Find(&logs).Error; err != nil {
			return nil, fmt.Errorf("load day statuses: %w", err)
		}
		for _, record := range logs {
			statuses[record.ScheduledActivityID] = record
		}
	}

	for _, item := range due {
		entry := DayPlanItem{Plan: item, Status: db.ActivityStatusPending}
		if record, ok := statuses[item.ID]; ok {
			entry.Status = record.Status
			entry.ActualDurationMinutes = record.ActualDurationMinutes
		}
		plan.Items = append(plan.Items, entry)
	}

	return plan, nil
}

// SetStatus 以幂等方式写入某计划某天的打卡状态。
// 同一 (计划, 日期) 只保留一行；completed 时实际时长为 0 则回填计划时长。
// 打卡与自由流水镜像在同一事务内完成。
func (s *DayPlanService) SetStatus(scheduledActivityID uint, date time.Time, status string, actualMinutes int) (*db.ScheduledActivityLog, error) {
	normalized := strings.TrimSpace(strings.ToLower(status))
	switch normalized {
	case db.ActivityStatusCompleted, db.ActivityStatusSkipped, db.ActivityStatusPartial:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidActivityStatus, status)
	}
	if actualMinutes < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrScheduledActivityInvalid)
	}

	day := normalizeToDate(date)
	now := s.nowFn()

	var record db.ScheduledActivityLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var plan db.ScheduledActivity
		if err := tx.First(&plan, scheduledActivityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduledActivityNotFound
			}
			return fmt.Errorf("find scheduled activity: %w", err)
		}

		minutes := actualMinutes
		if normalized == db.ActivityStatusCompleted && minutes == 0 {
			minutes = plan.DurationMinutes
		}

		record = db.ScheduledActivityLog{
			ScheduledActivityID:   scheduledActivityID,
			LogDate:               day,
			Status:                normalized,
			ActualDurationMinutes: minutes,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scheduled_activity_id"}, {Name: "log_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "actual_duration_minutes", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("upsert day status: %w", err)
		}

		if err := tx.Where("scheduled_activity_id = ? AND log_date = ?", scheduledActivityID, day).
			First(&record).Error; err != nil {
			return fmt.Errorf("reload day status: %w", err)
		}

		return syncMirrorLog(tx, plan, day, normalized, minutes, now)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ClearStatus 撤销某计划某天的打卡，恢复为 pending。
// 幂等：记录不存在时同样视为成功；镜像流水一并移除。
func (s *DayPlanService) ClearStatus(scheduledActivityID uint, date time.Time) error {
	day := normalizeToDate(date)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("scheduled_activity_id = ? AND log_date = ?", scheduledActivityID, day).
			Delete(&db.ScheduledActivityLog{}).Error; err != nil {
			return fmt.Errorf("clear day status: %w", err)
		}

		if err := tx.Unscoped().
			Where("scheduled_activity_id = ? AND log_date = ?", scheduledActivityID, day).
			Delete(&db.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("remove mirrored activity log: %w", err)
		}
		return nil
	})
}

// syncMirrorLog 维护完成状态到自由流水的镜像：
// completed 时恰好一条镜像（首次插入并累计类型热度，重复打卡仅更新时长），
// 其余状态删除该 (计划, 日期) 的镜像。
func syncMirrorLog(tx *gorm.DB, plan db.ScheduledActivity, day time.Time, status string, minutes int, now time.Time) error {
	var mirror db.ActivityLog
	lookupErr := tx.Where("scheduled_activity_id = ? AND log_date = ?", plan.ID, day).
		First(&mirror).Error

	if status != db.ActivityStatusCompleted {
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if lookupErr != nil {
			return fmt.Errorf("check mirrored activity log: %w", lookupErr)
		}
		if err := tx.Unscoped().
			Where("scheduled_activity_id = ? AND log_date = ?", plan.ID, day).
			Delete(&db.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("remove mirrored activity log: %w", err)
		}
		return nil
	}

	switch {
	case lookupErr == nil:
		mirror.DurationMinutes = minutes
		if err := tx.Save(&mirror).Error; err != nil {
			return fmt.Errorf("update mirrored activity log: %w", err)
		}
		return nil
	case errors.Is(lookupErr, gorm.ErrRecordNotFound):
		loggedAt := now
		mirror = db.ActivityLog{
			ActivityTypeID:      plan.ActivityTypeID,
			ScheduledActivityID: &plan.ID,
			DurationMinutes:     minutes,
			LogDate:             day,
			LogTime:             &loggedAt,
			Note:                plan.Name,
		}
		if err := tx.Create(&mirror).Error; err != nil {
			return fmt.Errorf("mirror activity log: %w", err)
		}
		return bumpActivityTypeUsage(tx, plan.ActivityTypeID)
	default:
		return fmt.Errorf("check mirrored activity log: %w", lookupErr)
	}
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
