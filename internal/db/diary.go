package db

import (
	"time"

	"gorm.io/gorm"
)

// WaterIntake 记录一次饮水
type WaterIntake struct {
	gorm.Model
	LogDate  time.Time `gorm:"index"`
	LogTime  *time.Time
	AmountML int
}

// SymptomEntry 记录一次症状
// Severity 取 0-10；Symptom 为症状名（bloating/cramps 等，允许自定义文本）
type SymptomEntry struct {
	gorm.Model
	LogDate  time.Time `gorm:"index"`
	LogTime  *time.Time
	Symptom  string `gorm:"size:100"`
	Severity int
	Note     string
}

// BowelMovement 记录一次排便，BristolType 取布里斯托分类 1-7
type BowelMovement struct {
	gorm.Model
	LogDate     time.Time `gorm:"index"`
	LogTime     *time.Time
	BristolType int
	Note        string
}

// TreatmentEntry 记录一次用药/补剂
type TreatmentEntry struct {
	gorm.Model
	LogDate time.Time `gorm:"index"`
	LogTime *time.Time
	Name    string `gorm:"size:200"`
	Dose    string
	Note    string
}
