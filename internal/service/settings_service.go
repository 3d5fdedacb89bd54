package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/locale"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DietPhaseElimination 表示低 FODMAP 排除期。
	DietPhaseElimination = "elimination"
	// DietPhaseReintroduction 表示逐类重新引入期。
	DietPhaseReintroduction = "reintroduction"
	// DietPhasePersonalization 表示个性化维持期。
	DietPhasePersonalization = "personalization"
)

const defaultWaterTargetML = 2000

var supportedDietPhases = []string{DietPhaseElimination, DietPhaseReintroduction, DietPhasePersonalization}

// ErrSettingsInvalid 当设置取值非法时返回
var ErrSettingsInvalid = errors.New("invalid settings")

// AppSettings 描述用户可配置的应用信息。
type AppSettings struct {
	DisplayName   string
	Language      string
	WaterTargetML int
	DietPhase     string
}

// AppSettingsInput 用于更新应用设置。
type AppSettingsInput struct {
	DisplayName   string
	Language      string
	WaterTargetML int
	DietPhase     string
}

// SettingsService 提供应用设置的读取与更新能力。
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeyDisplayName,
	db.SettingKeyLanguage,
	db.SettingKeyWaterTargetML,
	db.SettingKeyDietPhase,
}

// GetSettings 读取应用设置，如未设置将返回默认值。
func (s *SettingsService) GetSettings() (AppSettings, error) {
	result := AppSettings{
		Language:      locale.LanguageChinese,
		WaterTargetML: defaultWaterTargetML,
		DietPhase:     DietPhaseElimination,
	}

	var records []db.AppSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load app settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyDisplayName:
			result.DisplayName = record.Value
		case db.SettingKeyLanguage:
			if lang := locale.NormalizeLanguage(record.Value); lang != "" {
				result.Language = lang
			}
		case db.SettingKeyWaterTargetML:
			if target, err := strconv.Atoi(record.Value); err == nil && target > 0 {
				result.WaterTargetML = target
			}
		case db.SettingKeyDietPhase:
			if phase := normalizeDietPhase(record.Value); phase != "" {
				result.DietPhase = phase
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存应用设置，各键在同一事务内写入。
func (s *SettingsService) UpdateSettings(input AppSettingsInput) (AppSettings, error) {
	language := locale.NormalizeLanguage(input.Language)
	if language == "" {
		if strings.TrimSpace(input.Language) != "" {
			return AppSettings{}, fmt.Errorf("%w: unsupported language %s", ErrSettingsInvalid, input.Language)
		}
		language = locale.LanguageChinese
	}

	phase := normalizeDietPhase(input.DietPhase)
	if phase == "" {
		if strings.TrimSpace(input.DietPhase) != "" {
			return AppSettings{}, fmt.Errorf("%w: unsupported diet phase %s", ErrSettingsInvalid, input.DietPhase)
		}
		phase = DietPhaseElimination
	}

	target := input.WaterTargetML
	if target == 0 {
		target = defaultWaterTargetML
	}
	if target < 0 {
		return AppSettings{}, fmt.Errorf("%w: water target must be positive", ErrSettingsInvalid)
	}

	sanitized := AppSettings{
		DisplayName:   strings.TrimSpace(input.DisplayName),
		Language:      language,
		WaterTargetML: target,
		DietPhase:     phase,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyDisplayName, sanitized.DisplayName); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyLanguage, sanitized.Language); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyWaterTargetML, strconv.Itoa(sanitized.WaterTargetML)); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyDietPhase, sanitized.DietPhase); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return AppSettings{}, fmt.Errorf("update app settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.AppSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func normalizeDietPhase(phase string) string {
	trimmed := strings.ToLower(strings.TrimSpace(phase))
	for _, candidate := range supportedDietPhases {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
