package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

type output struct {
	Users   int      `json:"users"`
	Todos   int      `json:"todos"`
	UserIDs []string `json:"user_ids"`
}

var categories = []string{"work", "home", "errands", ""}

func main() {
	var (
		databaseURL  = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		userCount    = flag.Int("users", 3, "Number of users to create")
		todosPerUser = flag.Int("todos-per-user", 5, "Number of todos per user")
		wipe         = flag.Bool("wipe", false, "Delete existing rows first")
		format       = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *userCount < 1 || *todosPerUser < 0 {
		fmt.Fprintln(os.Stderr, "users must be >= 1 and todos-per-user >= 0")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}

	if *wipe {
		// Todos first because of the foreign key
		if _, err := db.ExecContext(ctx, "DELETE FROM todos"); err != nil {
			fmt.Fprintln(os.Stderr, "wipe todos:", err)
			os.Exit(1)
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM users"); err != nil {
			fmt.Fprintln(os.Stderr, "wipe users:", err)
			os.Exit(1)
		}
	}

	out, err := seed(ctx, db, *userCount, *todosPerUser)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("seeded %d users and %d todos\n", out.Users, out.Todos)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func seed(ctx context.Context, db *sql.DB, userCount, todosPerUser int) (*output, error) {
	out := &output{UserIDs: make([]string, 0, userCount)}
	run := time.Now().UnixNano()

	for i := 1; i <= userCount; i++ {
		userID := ulid.Make().String()
		name := fmt.Sprintf("Seed User %d", i)
		email := fmt.Sprintf("seed-%d-%d@example.com", i, run)
		now := time.Now().UTC()

		_, err := db.ExecContext(ctx, `
			INSERT INTO users (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, userID, name, email, now, now)
		if err != nil {
			return nil, fmt.Errorf("insert user %d: %w", i, err)
		}
		out.Users++
		out.UserIDs = append(out.UserIDs, userID)

		for j := 1; j <= todosPerUser; j++ {
			todoID := ulid.Make().String()
			todoName := fmt.Sprintf("Task %d for user %d", j, i)
			done := j%2 == 0
			category := categories[(j-1)%len(categories)]
			todoNow := time.Now().UTC()

			_, err := db.ExecContext(ctx, `
				INSERT INTO todos (id, user_id, name, done, category, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, todoID, userID, todoName, done, category, todoNow, todoNow)
			if err != nil {
				return nil, fmt.Errorf("insert todo %d for user %d: %w", j, i, err)
			}
			out.Todos++
		}
	}

	return out, nil
}
