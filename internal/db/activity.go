package db

import (
	"time"

	"gorm.io/gorm"
)

// 活动打卡状态。pending 不落库，由当日视图按规则推导。
const (
	ActivityStatusPending   = "pending"
	ActivityStatusCompleted = "completed"
	ActivityStatusSkipped   = "skipped"
	ActivityStatusPartial   = "partial"
)

// ActivityType 定义了活动类型注册表
// 预置类型（walking/yoga 等）与用户自建类型同表存放
// UsageCount 记录被引用次数，列表按热度排序；正常流程不做硬删除
type ActivityType struct {
	gorm.Model
	Name       string `gorm:"size:100;uniqueIndex;not null"`
	Icon       string
	Color      string
	IsDefault  bool
	UsageCount int
}

// ScheduledActivity 定义了周期性活动计划
// FrequencyType/FrequencyValue 描述重复规则（daily/weekly/specific_days/interval/monthly）
// StartDate 为规则锚点；IsActive=false 时计划保留历史但不再出现在当日视图
// ReminderTime 存 "HH:MM"，提醒下发由客户端负责
type ScheduledActivity struct {
	gorm.Model
	ActivityTypeID  uint `gorm:"index"`
	ActivityType    ActivityType
	Name            string
	DurationMinutes int
	FrequencyType   string
	FrequencyValue  string
	StartDate       time.Time
	ReminderEnabled bool
	ReminderTime    string
	IsActive        bool `gorm:"default:true"`
}

// ScheduledActivityLog 记录计划在某一天的打卡状态
// ScheduledActivity + LogDate 采用唯一索引，保证同一天只有一行；无行即 pending
// ActualDurationMinutes 为实际完成时长，partial 时可小于计划值
type ScheduledActivityLog struct {
	gorm.Model
	ScheduledActivityID   uint              `gorm:"index;index:idx_scheduled_activity_log_unique,unique"`
	ScheduledActivity     ScheduledActivity `gorm:"constraint:OnDelete:CASCADE"`
	LogDate               time.Time         `gorm:"index:idx_scheduled_activity_log_unique,unique"`
	Status                string
	ActualDurationMinutes int
}

// TableName 重写确保唯一索引作用到 scheduled_activity_id + log_date
func (ScheduledActivityLog) TableName() string {
	return "scheduled_activity_logs"
}

// ActivityLog 记录自由活动流水（非计划打卡）
// 追加写入、无唯一约束；计划完成时会镜像一条，ScheduledActivityID 指回来源计划
// Intensity 为主观强度（light/moderate/intense），可为空
type ActivityLog struct {
	gorm.Model
	ActivityTypeID      uint `gorm:"index"`
	ActivityType        ActivityType
	ScheduledActivityID *uint `gorm:"index"`
	DurationMinutes     int
	Intensity           string
	LogDate             time.Time `gorm:"index"`
	LogTime             *time.Time
	Note                string
}
