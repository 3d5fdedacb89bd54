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

func setupActivityTypeTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:activity-type-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.ActivityType{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	gdb, cleanup := setupActivityTypeTestDB(t)
	defer cleanup()

	svc := NewActivityTypeService(gdb)

	if err := svc.EnsureDefaults(); err != nil {
		t.Fatalf("EnsureDefaults returned error: %v", err)
	}
	if err := svc.EnsureDefaults(); err != nil {
		t.Fatalf("repeat EnsureDefaults returned error: %v", err)
	}

	types, err := svc.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(types) != len(defaultActivityTypes) {
		t.Fatalf("expected %d default types, got %d", len(defaultActivityTypes), len(types))
	}

	for _, record := range types {
		if !record.IsDefault {
			t.Fatalf("expected %s to be marked default", record.Name)
		}
	}
}

func TestActivityTypeCreateRejectsDuplicates(t *testing.T) {
	gdb, cleanup := setupActivityTypeTestDB(t)
	defer cleanup()

	svc := NewActivityTypeService(gdb)

	created, err := svc.Create(ActivityTypeInput{Name: "pilates", Icon: "mat", Color: "#E91E63"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected created type to have ID")
	}

	if _, err := svc.Create(ActivityTypeInput{Name: "pilates"}); !errors.Is(err, ErrActivityTypeExists) {
		t.Fatalf("expected ErrActivityTypeExists, got %v", err)
	}

	if _, err := svc.Create(ActivityTypeInput{Name: "   "}); !errors.Is(err, ErrActivityTypeInvalid) {
		t.Fatalf("expected ErrActivityTypeInvalid, got %v", err)
	}
}

func TestActivityTypeListOrdersByUsage(t *testing.T) {
	gdb, cleanup := setupActivityTypeTestDB(t)
	defer cleanup()

	svc := NewActivityTypeService(gdb)

	quiet, err := svc.Create(ActivityTypeInput{Name: "quiet"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	popular, err := svc.Create(ActivityTypeInput{Name: "popular"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := bumpActivityTypeUsage(gdb, popular.ID); err != nil {
			t.Fatalf("bumpActivityTypeUsage returned error: %v", err)
		}
	}

	types, err := svc.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(types))
	}
	if types[0].ID != popular.ID || types[0].UsageCount != 3 {
		t.Fatalf("expected popular type first with usage 3, got %+v", types[0])
	}
	if types[1].ID != quiet.ID {
		t.Fatalf("expected quiet type second, got %+v", types[1])
	}

	if err := bumpActivityTypeUsage(gdb, popular.ID+99); !errors.Is(err, ErrActivityTypeNotFound) {
		t.Fatalf("expected ErrActivityTypeNotFound, got %v", err)
	}
}

func TestActivityTypeUpdateAndDelete(t *testing.T) {
	gdb, cleanup := setupActivityTypeTestDB(t)
	defer cleanup()

	svc := NewActivityTypeService(gdb)

	record, err := svc.Create(ActivityTypeInput{Name: "hiking", Icon: "boot", Color: "#33691E"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(record.ID, ActivityTypeInput{Name: "trail hiking", Icon: "mountain", Color: "#1B5E20"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "trail hiking" || updated.Icon != "mountain" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := svc.Delete(record.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := svc.Get(record.ID); !errors.Is(err, ErrActivityTypeNotFound) {
		t.Fatalf("expected ErrActivityTypeNotFound after delete, got %v", err)
	}
}
