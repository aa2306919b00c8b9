// Wipes every domain table. Development helper, mirrors the admin bulk clear.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/giglink/giglink/internal/config"
	"github.com/giglink/giglink/internal/db"
	"github.com/giglink/giglink/internal/repository/sqlite"
	"github.com/joho/godotenv"
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

	repo := sqlite.New(database, nil)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"messages", repo.DeleteMessages},
		{"connection requests", repo.DeleteRequests},
		{"jobs", repo.DeleteJobs},
		{"users", repo.DeleteUsers},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Clear %s: %v\n", s.name, err)
			os.Exit(1)
		}
	}

	fmt.Println("Database cleared: users, jobs, connection requests, messages")
}
