package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/tildelab/tildes-backend/internal/config"
	"github.com/tildelab/tildes-backend/internal/database"
	"github.com/tildelab/tildes-backend/internal/logger"
	"github.com/tildelab/tildes-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Class ===")

	// Class code
	fmt.Print("Enter Class Code (max 6 chars): ")
	code, _ := reader.ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 6 {
		fmt.Println("Error: class code is required and must be at most 6 characters")
		return
	}

	// Password
	fmt.Print("Enter Teacher Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO classes (code, credential_hash, phase) VALUES ($1, $2, $3)`,
		code, string(hashedPassword), model.PhaseSetup,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create class")
	}

	fmt.Printf("\nSuccess! Class '%s' created in setup phase\n", code)
}
