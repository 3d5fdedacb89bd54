package db

import "gorm.io/gorm"

// AppSetting 存储用户可配置的应用级键值对。
type AppSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (AppSetting) TableName() string {
	return "app_settings"
}

const (
	// SettingKeyDisplayName 表示用户显示名称。
	SettingKeyDisplayName = "display_name"
	// SettingKeyLanguage 表示界面与报告语言（zh/en）。
	SettingKeyLanguage = "language"
	// SettingKeyWaterTargetML 表示每日饮水目标（毫升）。
	SettingKeyWaterTargetML = "water_target_ml"
	// SettingKeyDietPhase 表示 FODMAP 饮食阶段（elimination/reintroduction/personalization）。
	SettingKeyDietPhase = "diet_phase"
)
