package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/hobbybyrox/hobbyshop/internal/config"
	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

func runInit(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configFlag(fs)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	adminUser := "admin"
	fs.StringVar(&adminUser, "user", adminUser, "")
	fs.StringVar(&adminUser, "u", adminUser, "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: hobbyshop init [flags]

Flags:
  -d, -db <path>     SQLite database path (default: hobbyshop.sqlite3)
  -u, -user <name>   admin username (default: admin)
  -c, -config <path> JSON config file
`)
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); err == nil {
		return fmt.Errorf("%s already exists", cfg.DBPath)
	}

	database, password, secret, err := initDatabase(ctx, cfg.DBPath, adminUser)
	if err != nil {
		return err
	}
	defer database.Close()

	printInitResult(cfg.DBPath, adminUser, password, secret)
	return nil
}

// initDatabase creates the database, the admin user and the admin secret.
// A failed init removes the half-created file.
func initDatabase(ctx context.Context, path, adminUsername string) (*sql.DB, string, string, error) {
	database, err := db.OpenWithSchema(path)
	if err != nil {
		return nil, "", "", err
	}
	fail := func(err error) (*sql.DB, string, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", "", err
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}
	if _, err := store.CreateUser(ctx, database, adminUsername, string(hash)); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}
	secret, err := store.GetSecret(ctx, database, store.SettingAdminSecret)
	if err != nil {
		return fail(err)
	}
	return database, password, secret, nil
}

func printInitResult(dbPath, username, password, secret string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("In secret token mode, logging in returns this admin secret:")
	fmt.Printf("  %s\n", secret)
	fmt.Println()
	fmt.Println("Save the password, it cannot be recovered.")
	fmt.Println("Change it with PUT /api/password after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
