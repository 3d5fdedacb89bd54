package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupActivityLogTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:activity-log-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.ActivityType{}, &db.ActivityLog{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestActivityLogCreateBumpsUsage(t *testing.T) {
	gdb, cleanup := setupActivityLogTestDB(t)
	defer cleanup()

	activityType := seedActivityType(t, gdb, "walking")
	svc := NewActivityLogService(gdb)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	record, err := svc.Log(ActivityLogInput{
		ActivityTypeID:  activityType.ID,
		DurationMinutes: 20,
		Intensity:       "Light",
		LogDate:         day,
		Note:            "饭后散步",
	})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	if record.Intensity != "light" {
		t.Fatalf("expected normalized intensity, got %s", record.Intensity)
	}

	var reloaded db.ActivityType
	if err := gdb.First(&reloaded, activityType.ID).Error; err != nil {
		t.Fatalf("failed to reload activity type: %v", err)
	}
	if reloaded.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", reloaded.UsageCount)
	}
}

func TestActivityLogFirstUseCreatesType(t *testing.T) {
	gdb, cleanup := setupActivityLogTestDB(t)
	defer cleanup()

	svc := NewActivityLogService(gdb)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	first, err := svc.Log(ActivityLogInput{
		ActivityTypeName: " 游泳 ",
		DurationMinutes:  30,
		LogDate:          day,
	})
	if err != nil {
		t.Fatalf("Log with new type name returned error: %v", err)
	}

	var created db.ActivityType
	if err := gdb.Where("name = ?", "游泳").First(&created).Error; err != nil {
		t.Fatalf("type was not registered on first use: %v", err)
	}
	if first.ActivityTypeID != created.ID {
		t.Fatalf("log references type %d, want %d", first.ActivityTypeID, created.ID)
	}

	// 同名再次记录应复用类型并继续累计热度
	if _, err := svc.Log(ActivityLogInput{
		ActivityTypeName: "游泳",
		DurationMinutes:  45,
		LogDate:          day,
	}); err != nil {
		t.Fatalf("second log returned error: %v", err)
	}

	var count int64
	if err := gdb.Model(&db.ActivityType{}).Where("name = ?", "游泳").Count(&count).Error; err != nil {
		t.Fatalf("failed to count types: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one registered type, got %d", count)
	}

	var reloaded db.ActivityType
	if err := gdb.First(&reloaded, created.ID).Error; err != nil {
		t.Fatalf("failed to reload type: %v", err)
	}
	if reloaded.UsageCount != 2 {
		t.Fatalf("expected usage count 2, got %d", reloaded.UsageCount)
	}
}

func TestActivityLogValidation(t *testing.T) {
	gdb, cleanup := setupActivityLogTestDB(t)
	defer cleanup()

	activityType := seedActivityType(t, gdb, "yoga")
	svc := NewActivityLogService(gdb)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	cases := []struct {
		name  string
		input ActivityLogInput
		want  error
	}{
		{
			name:  "missing type",
			input: ActivityLogInput{DurationMinutes: 10, LogDate: day},
			want:  ErrActivityLogInvalid,
		},
		{
			name:  "zero duration",
			input: ActivityLogInput{ActivityTypeID: activityType.ID, LogDate: day},
			want:  ErrActivityLogInvalid,
		},
		{
			name:  "missing date",
			input: ActivityLogInput{ActivityTypeID: activityType.ID, DurationMinutes: 10},
			want:  ErrActivityLogInvalid,
		},
		{
			name:  "bad intensity",
			input: ActivityLogInput{ActivityTypeID: activityType.ID, DurationMinutes: 10, LogDate: day, Intensity: "extreme"},
			want:  ErrActivityLogInvalid,
		},
		{
			name:  "unknown type",
			input: ActivityLogInput{ActivityTypeID: activityType.ID + 50, DurationMinutes: 10, LogDate: day},
			want:  ErrActivityTypeNotFound,
		},
	}

	for _, tc := range cases {
		if _, err := svc.Log(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestActivityLogDailyMinutes(t *testing.T) {
	gdb, cleanup := setupActivityLogTestDB(t)
	defer cleanup()

	activityType := seedActivityType(t, gdb, "cycling")
	svc := NewActivityLogService(gdb)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)

	for _, minutes := range []int{15, 25} {
		if _, err := svc.Log(ActivityLogInput{
			ActivityTypeID:  activityType.ID,
			DurationMinutes: minutes,
			LogDate:         day,
		}); err != nil {
			t.Fatalf("Log returned error: %v", err)
		}
	}
	// 其他日期不计入
	if _, err := svc.Log(ActivityLogInput{
		ActivityTypeID:  activityType.ID,
		DurationMinutes: 60,
		LogDate:         day.AddDate(0, 0, 1),
	}); err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	total, err := svc.DailyMinutes(day)
	if err != nil {
		t.Fatalf("DailyMinutes returned error: %v", err)
	}
	if total != 40 {
		t.Fatalf("expected 40 minutes, got %d", total)
	}

	logs, err := svc.ListByDate(day)
	if err != nil {
		t.Fatalf("ListByDate returned error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].ActivityType.Name != "cycling" {
		t.Fatalf("expected preloaded activity type, got %q", logs[0].ActivityType.Name)
	}

	between, err := svc.ListBetween(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(between) != 3 {
		t.Fatalf("expected 3 logs in range, got %d", len(between))
	}

	if _, err := svc.ListBetween(day, day.AddDate(0, 0, -1)); !errors.Is(err, ErrActivityLogInvalid) {
		t.Fatalf("expected ErrActivityLogInvalid for reversed range, got %v", err)
	}
}

func TestActivityLogDelete(t *testing.T) {
	gdb, cleanup := setupActivityLogTestDB(t)
	defer cleanup()

	activityType := seedActivityType(t, gdb, "stretching")
	svc := NewActivityLogService(gdb)

	record, err := svc.Log(ActivityLogInput{
		ActivityTypeID:  activityType.ID,
		DurationMinutes: 10,
		LogDate:         time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}

	if err := svc.Delete(record.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(record.ID); !errors.Is(err, ErrActivityLogNotFound) {
		t.Fatalf("expected ErrActivityLogNotFound, got %v", err)
	}
}
