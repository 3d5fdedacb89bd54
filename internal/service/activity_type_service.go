package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrActivityTypeNotFound 在指定活动类型不存在时返回
	ErrActivityTypeNotFound = errors.New("activity type not found")
	// ErrActivityTypeExists 当同名类型已存在时返回
	ErrActivityTypeExists = errors.New("activity type already exists")
	// ErrActivityTypeInvalid 当类型字段缺失或非法时返回
	ErrActivityTypeInvalid = errors.New("invalid activity type")
)

// defaultActivityTypes 为首次启动写入的预置类型
var defaultActivityTypes = []db.ActivityType{
	{Name: "walking", Icon: "walk", Color: "#4CAF50", IsDefault: true},
	{Name: "running", Icon: "run", Color: "#FF5722", IsDefault: true},
	{Name: "cycling", Icon: "bike", Color: "#2196F3", IsDefault: true},
	{Name: "swimming", Icon: "swim", Color: "#00BCD4", IsDefault: true},
	{Name: "yoga", Icon: "yoga", Color: "#9C27B0", IsDefault: true},
	{Name: "stretching", Icon: "stretch", Color: "#8BC34A", IsDefault: true},
	{Name: "meditation", Icon: "meditation", Color: "#607D8B", IsDefault: true},
	{Name: "strength", Icon: "dumbbell", Color: "#795548", IsDefault: true},
}

// ActivityTypeService 负责活动类型注册表的读写
// 预置与自建类型同表；删除为软删除，历史日志仍持有其 ID
type ActivityTypeService struct {
	db *gorm.DB
}

// ActivityTypeInput 定义创建/更新类型时可配置字段
type ActivityTypeInput struct {
	Name  string
	Icon  string
	Color string
}

// NewActivityTypeService 构造 ActivityTypeService
func NewActivityTypeService(gdb *gorm.DB) *ActivityTypeService {
	return &ActivityTypeService{db: gdb}
}

// EnsureDefaults 写入预置类型，已存在的名称保持不变
func (s *ActivityTypeService) EnsureDefaults() error {
	for _, preset := range defaultActivityTypes {
		record := preset
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("ensure default activity types: %w", err)
		}
	}
	return nil
}

// List 按使用热度降序返回全部类型
func (s *ActivityTypeService) List() ([]db.ActivityType, error) {
	var types []db.ActivityType
	if err := s.db.Order("usage_count DESC, name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list activity types: %w", err)
	}
	return types, nil
}

// Get 根据 ID 获取类型
func (s *ActivityTypeService) Get(id uint) (*db.ActivityType, error) {
	var record db.ActivityType
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityTypeNotFound
		}
		return nil, fmt.Errorf("get activity type: %w", err)
	}
	return &record, nil
}

// Create 新建自定义类型，同名返回 ErrActivityTypeExists
func (s *ActivityTypeService) Create(input ActivityTypeInput) (*db.ActivityType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrActivityTypeInvalid)
	}

	var existing db.ActivityType
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, ErrActivityTypeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check activity type: %w", err)
	}

	record := db.ActivityType{
		Name:  name,
		Icon:  strings.TrimSpace(input.Icon),
		Color: strings.TrimSpace(input.Color),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create activity type: %w", err)
	}
	return &record, nil
}

// Update 更新类型的展示字段，预置类型同样允许改图标与颜色
func (s *ActivityTypeService) Update(id uint, input ActivityTypeInput) (*db.ActivityType, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrActivityTypeInvalid)
	}

	if name != record.Name {
		var conflict db.ActivityType
		if err := s.db.Where("name = ? AND id <> ?", name, id).First(&conflict).Error; err == nil {
			return nil, ErrActivityTypeExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check activity type: %w", err)
		}
	}

	record.Name = name
	record.Icon = strings.TrimSpace(input.Icon)
	record.Color = strings.TrimSpace(input.Color)

	if err := s.db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("update activity type: %w", err)
	}
	return record, nil
}

// Delete 软删除类型。引用它的计划会在当日视图中以配置异常的形式被隔离。
func (s *ActivityTypeService) Delete(id uint) error {
	if err := s.db.Delete(&db.ActivityType{}, id).Error; err != nil {
		return fmt.Errorf("delete activity type: %w", err)
	}
	return nil
}

// bumpActivityTypeUsage 在调用方事务内将类型的使用计数加一。
// 计数只增不减，作为热度排序依据，撤销完成不回退。
func bumpActivityTypeUsage(tx *gorm.DB, id uint) error {
	result := tx.Model(&db.ActivityType{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("bump activity type usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrActivityTypeNotFound
	}
	return nil
}

// findOrCreateActivityType 在调用方事务内按名称查找类型，不存在则创建。
// 自定义活动首次被记录时类型自动入册。
func findOrCreateActivityType(tx *gorm.DB, name string) (*db.ActivityType, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: name is required", ErrActivityTypeInvalid)
	}

	record := db.ActivityType{Name: trimmed}
	if err := tx.Where("name = ?", trimmed).FirstOrCreate(&record).Error; err != nil {
		return nil, fmt.Errorf("find or create activity type: %w", err)
	}
	return &record, nil
}
