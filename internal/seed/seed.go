// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"huntboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers            int
	ApplicationsPerUser int
	ShouldClean         bool
	// SkipBcrypt swaps password hashing for plaintext in throwaway databases.
	SkipBcrypt bool
	// MaxDays bounds how far back application dates are spread.
	MaxDays int
}

var jobTitles = []string{
	"Backend Engineer", "Software Engineer", "Platform Engineer",
	"Site Reliability Engineer", "Staff Engineer", "DevOps Engineer",
	"Data Engineer", "Engineering Manager", "Full Stack Developer",
	"Infrastructure Engineer", "Cloud Engineer", "Security Engineer",
}

// statusWalks are plausible pipeline paths; each seeded application gets a
// random prefix of one, so the history ledger looks lived-in.
var statusWalks = [][]models.Status{
	{models.StatusApplied},
	{models.StatusApplied, models.StatusGhosted},
	{models.StatusApplied, models.StatusRejected},
	{models.StatusApplied, models.StatusScreening, models.StatusRejected},
	{models.StatusApplied, models.StatusScreening, models.StatusInterviewing},
	{models.StatusApplied, models.StatusScreening, models.StatusInterviewing, models.StatusRejected},
	{models.StatusApplied, models.StatusScreening, models.StatusInterviewing, models.StatusOffer},
	{models.StatusApplied, models.StatusScreening, models.StatusInterviewing, models.StatusOffer, models.StatusAccepted},
	{models.StatusApplied, models.StatusScreening, models.StatusInterviewing, models.StatusOffer, models.StatusWithdrawn},
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users, %d applications each...",
		opts.NumUsers, opts.ApplicationsPerUser)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users, err := createUsers(db, opts)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d test users", len(users))

	var totalApps int
	for _, user := range users {
		resumes, err := createResumes(db, user, 1+r.Intn(2))
		if err != nil {
			return fmt.Errorf("failed to create resumes for user %d: %w", user.ID, err)
		}
		apps, err := createApplications(db, r, user, resumes, opts)
		if err != nil {
			return fmt.Errorf("failed to create applications for user %d: %w", user.ID, err)
		}
		totalApps += len(apps)
	}
	log.Printf("created %d applications", totalApps)

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{&models.Application{}, &models.Resume{}, &models.User{}} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, opts Options) ([]*models.User, error) {
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Name:  gofakeit.Name(),
			Email: fmt.Sprintf("%d.%s", i, gofakeit.Email()),
		}
		if opts.SkipBcrypt {
			user.Password = "Password123!"
		} else {
			hashed, _ := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
			user.Password = string(hashed)
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createResumes(db *gorm.DB, user *models.User, n int) ([]*models.Resume, error) {
	resumes := make([]*models.Resume, 0, n)
	for i := 0; i < n; i++ {
		resume := &models.Resume{
			UserID:  user.ID,
			Title:   fmt.Sprintf("%s %d", gofakeit.JobTitle(), time.Now().Year()),
			Content: gofakeit.Paragraph(3, 5, 12, "\n"),
			FileURL: fmt.Sprintf("http://localhost:9000/huntboard-resumes/%d-%s.pdf", user.ID, gofakeit.UUID()),
		}
		if err := db.Create(resume).Error; err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, nil
}

func createApplications(db *gorm.DB, r *rand.Rand, user *models.User, resumes []*models.Resume, opts Options) ([]*models.Application, error) {
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	apps := make([]*models.Application, 0, opts.ApplicationsPerUser)
	for i := 0; i < opts.ApplicationsPerUser; i++ {
		appliedAt := time.Now().
			Add(-time.Duration(r.Intn(maxDays*24)) * time.Hour).
			Add(-time.Duration(r.Intn(60)) * time.Minute)

		walk := statusWalks[r.Intn(len(statusWalks))]
		history := make(models.StatusHistory, 0, len(walk))
		stepAt := appliedAt
		for _, status := range walk {
			history = append(history, models.StatusChange{Status: status, Date: stepAt})
			stepAt = stepAt.Add(time.Duration(1+r.Intn(7*24)) * time.Hour)
		}

		app := &models.Application{
			UserID:          user.ID,
			ResumeID:        resumes[r.Intn(len(resumes))].ID,
			Company:         gofakeit.Company(),
			JobTitle:        jobTitles[r.Intn(len(jobTitles))],
			Location:        gofakeit.City(),
			JobType:         models.AllJobTypes[r.Intn(len(models.AllJobTypes))],
			Status:          walk[len(walk)-1],
			ApplicationDate: appliedAt,
			JobDescription:  gofakeit.Paragraph(1, 3, 10, "\n"),
			Notes:           gofakeit.Sentence(8),
			IsLiked:         r.Intn(4) == 0,
			StatusHistory:   history,
		}
		if err := db.Create(app).Error; err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
