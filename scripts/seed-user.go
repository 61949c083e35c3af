package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

type output struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Username for the seeded account")
		email       = flag.String("email", "admin@shelfmark.local", "User email")
		password    = flag.String("password", "", "Password (required)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "apply schema:", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			fmt.Fprintf(os.Stderr, "username %s is already taken\n", *username)
		case errors.Is(err, repository.ErrEmailExists):
			fmt.Fprintf(os.Stderr, "email %s is already registered\n", *email)
		default:
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	switch *format {
	case "plain":
		fmt.Printf("created user %s (id=%d)\n", out.Username, out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
