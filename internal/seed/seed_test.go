package seed

import (
	"testing"

	"huntboard/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSeed(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Resume{}, &models.Application{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	opts := Options{NumUsers: 3, ApplicationsPerUser: 5, SkipBcrypt: true, MaxDays: 30}
	if err := Seed(db, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var userCount, appCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 3 {
		t.Fatalf("expected 3 users, got %d", userCount)
	}
	if err := db.Model(&models.Application{}).Count(&appCount).Error; err != nil {
		t.Fatalf("count applications: %v", err)
	}
	if appCount != 15 {
		t.Fatalf("expected 15 applications, got %d", appCount)
	}

	// Every application's history must start at Applied and end at the
	// current status.
	var apps []models.Application
	if err := db.Find(&apps).Error; err != nil {
		t.Fatalf("load applications: %v", err)
	}
	for _, app := range apps {
		if len(app.StatusHistory) == 0 {
			t.Fatalf("application %d has an empty history", app.ID)
		}
		if app.StatusHistory[0].Status != models.StatusApplied {
			t.Fatalf("application %d history starts at %s", app.ID, app.StatusHistory[0].Status)
		}
		if app.StatusHistory[len(app.StatusHistory)-1].Status != app.Status {
			t.Fatalf("application %d history tail %s does not match status %s",
				app.ID, app.StatusHistory[len(app.StatusHistory)-1].Status, app.Status)
		}
	}
}

func TestSeed_CleanIsIdempotent(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Resume{}, &models.Application{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	opts := Options{NumUsers: 2, ApplicationsPerUser: 2, SkipBcrypt: true, ShouldClean: true}
	if err := Seed(db, opts); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(db, opts); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 2 {
		t.Fatalf("expected clean re-seed to leave 2 users, got %d", userCount)
	}
}
