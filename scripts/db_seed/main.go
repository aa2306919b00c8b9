// Seeds a demo producer, a few freelancers, and a couple of jobs with
// applicants. Safe to run repeatedly: existing usernames are reused.
package main

import (
	"context"
	"fmt"
	"os"

	dbfs "github.com/giglink/giglink/db"
	"github.com/giglink/giglink/internal/config"
	"github.com/giglink/giglink/internal/db"
	"github.com/giglink/giglink/internal/repository/sqlite"
	"github.com/giglink/giglink/internal/skills"
	"github.com/giglink/giglink/pkg/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}

	repo := sqlite.New(database, nil)

	if err := seed(ctx, repo); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database seeded.")
}

func seed(ctx context.Context, repo *sqlite.SQLiteRepo) error {
	producer, err := ensureUser(ctx, repo, &models.User{
		Role:     models.RoleProducer,
		Username: "acme",
		Email:    "jobs@acme.example",
		Name:     "Acme Labs",
		Bio:      "We ship web3 products built with solidity and react.",
		Website:  "https://acme.example",
	}, "changeme")
	if err != nil {
		return err
	}

	freelancerSeeds := []struct {
		username string
		bio      string
		skillset []string
	}{
		{"dana", "Full-stack developer, React and Node.js.", []string{"react", "node", "typescript"}},
		{"lee", "Smart contract engineer, solidity and ethers.js.", []string{"solidity", "ethers.js", "javascript"}},
		{"mira", "Designer with Figma and UI/UX chops.", []string{"figma", "ui/ux"}},
	}

	var freelancers []*models.User
	for _, f := range freelancerSeeds {
		u, err := ensureUser(ctx, repo, &models.User{
			Role:     models.RoleFreelancer,
			Username: f.username,
			Email:    f.username + "@example.com",
			Bio:      f.bio,
			Skills:   f.skillset,
			AISkills: skills.Extract(f.bio),
		}, "changeme")
		if err != nil {
			return err
		}
		freelancers = append(freelancers, u)
	}

	jobSeeds := []*models.Job{
		{
			ProducerID:     producer.ID,
			Title:          "Frontend engineer",
			Description:    "Build our dashboard.",
			SkillsRequired: []string{"react", "typescript"},
			EmploymentType: models.EmploymentFullTime,
			Location:       "Remote",
			Salary:         90000,
			Type:           models.JobTypeJob,
			PaymentStatus:  models.PaymentUnpaid,
		},
		{
			ProducerID:     producer.ID,
			Title:          "Solidity auditor",
			Description:    "Review our contracts.",
			SkillsRequired: []string{"solidity", "ethers.js"},
			EmploymentType: models.EmploymentContract,
			Location:       "Remote",
			Salary:         120000,
			Type:           models.JobTypeJob,
			PaymentStatus:  models.PaymentUnpaid,
		},
	}

	existingJobs, err := repo.ListJobsByProducer(ctx, producer.ID)
	if err != nil {
		return err
	}
	existingTitles := make(map[string]int64, len(existingJobs))
	for _, j := range existingJobs {
		existingTitles[j.Title] = j.ID
	}

	for _, j := range jobSeeds {
		id, ok := existingTitles[j.Title]
		if !ok {
			id, err = repo.CreateJob(ctx, j)
			if err != nil {
				return fmt.Errorf("create job %q: %w", j.Title, err)
			}
		}
		for _, f := range freelancers {
			if err := repo.ApplyToJob(ctx, id, f.ID); err != nil {
				return fmt.Errorf("apply %s to %q: %w", f.Username, j.Title, err)
			}
		}
	}

	return nil
}

func ensureUser(ctx context.Context, repo *sqlite.SQLiteRepo, u *models.User, password string) (*models.User, error) {
	existing, err := repo.GetUserByUsername(ctx, u.Role, u.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)

	id, err := repo.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.Username, err)
	}
	u.ID = id

	return u, nil
}
