package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo accounts,
// companies, postings and swipes.
//
// Behavior:
//  1. Clears existing data.
//  2. Creates 12 jobseekers and 4 companies (each with an admin and a
//     recruiter) with hashed passwords.
//  3. Generates swipes with ~70% interest, guaranteeing some mutual pairs
//     so the match feed isn't empty.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(gdb *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{
		"matches", "match_jobs", "swipes", "company_invites",
		"company_drafts", "job_postings", "jobseeker_profiles",
		"companies", "users",
	}
	for _, table := range tables {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Jobseekers ---
	var jobseekers []User
	for i := 1; i <= 12; i++ {
		user := User{
			Email:        fmt.Sprintf("seeker%d@example.com", i),
			Name:         fmt.Sprintf("Seeker %d", i),
			PasswordHash: string(hash),
			Role:         RoleJobseeker,
			Active:       true,
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed jobseeker: %w", err)
		}
		profile := JobseekerProfile{
			UserID:   user.ID,
			Headline: fmt.Sprintf("Engineer #%d", i),
			Location: "Remote",
			Industry: "Tech",
			Sliders: SliderMap{
				"pace":      r.Intn(101),
				"structure": r.Intn(101),
			},
		}
		if err := gdb.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		jobseekers = append(jobseekers, user)
	}
	log.Printf("Seeded %d jobseekers.", len(jobseekers))

	// --- Companies with admin + recruiter and a couple of postings ---
	var companies []Company
	for i := 1; i <= 4; i++ {
		company := Company{
			Name:     fmt.Sprintf("Acme %d", i),
			Industry: "Tech",
			Size:     "11-50",
			Location: "Berlin",
			Sliders: CompanySliders{
				{ID: "pace", Value: r.Intn(101), PreferredSide: "left"},
			},
		}
		if err := gdb.Create(&company).Error; err != nil {
			return fmt.Errorf("failed to seed company: %w", err)
		}

		for j, role := range []string{CompanyRoleAdmin, CompanyRoleRecruiter} {
			companyID := company.ID
			user := User{
				Email:        fmt.Sprintf("employer%d-%d@example.com", i, j+1),
				Name:         fmt.Sprintf("Employer %d-%d", i, j+1),
				PasswordHash: string(hash),
				Role:         RoleEmployer,
				CompanyName:  company.Name,
				CompanyID:    &companyID,
				CompanyRole:  role,
				Active:       true,
			}
			if err := gdb.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed employer: %w", err)
			}

			if j == 0 {
				posting := JobPosting{
					CompanyID:    company.ID,
					CreatedBy:    user.ID,
					Title:        fmt.Sprintf("Backend Engineer (%s)", company.Name),
					Description:  "Build the things.",
					Status:       JobStatusActive,
					Requirements: StringList{"Go", "SQL"},
				}
				if err := gdb.Create(&posting).Error; err != nil {
					return fmt.Errorf("failed to seed posting: %w", err)
				}
			}
		}
		companies = append(companies, company)
	}
	log.Printf("Seeded %d companies.", len(companies))

	// --- Swipes, every 3rd pair guaranteed mutual ---
	counter := 0
	for _, seeker := range jobseekers {
		for _, company := range companies {
			if r.Intn(100) < 40 {
				continue // not every pair has decided yet
			}

			interested := r.Intn(100) < 70
			if counter%3 == 0 {
				interested = true
				recip := Swipe{
					JobseekerID: seeker.ID,
					CompanyID:   company.ID,
					Direction:   DirectionEmployer,
					ActorID:     seeker.ID,
					Interested:  true,
				}
				if err := upsertSwipe(gdb, recip); err != nil {
					return err
				}
			}

			swipe := Swipe{
				JobseekerID: seeker.ID,
				CompanyID:   company.ID,
				Direction:   DirectionJobseeker,
				ActorID:     seeker.ID,
				Interested:  interested,
			}
			if err := upsertSwipe(gdb, swipe); err != nil {
				return err
			}
			counter++
		}
	}
	log.Printf("Seeded %d swipe pairs.", counter)

	return nil
}

func upsertSwipe(gdb *gorm.DB, swipe Swipe) error {
	err := gdb.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "jobseeker_id"}, {Name: "company_id"}, {Name: "direction"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"interested", "updated_at"}),
	}).Create(&swipe).Error
	if err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return nil
}
