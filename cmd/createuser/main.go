package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"hotel-recommender/internal/config"
	"hotel-recommender/models"
	"hotel-recommender/services"
	"hotel-recommender/utils"
)

// Creates a user account from SEED_USERNAME, SEED_EMAIL and SEED_PASSWORD.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	username := os.Getenv("SEED_USERNAME")
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if username == "" || email == "" || len(password) < 6 {
		fmt.Println("Usage: SEED_USERNAME=... SEED_EMAIL=... SEED_PASSWORD=... go run ./cmd/createuser")
		fmt.Println("The password needs at least 6 characters.")
		os.Exit(1)
	}

	client, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	hashedPassword, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	store := services.NewMongoUserStore(client.Database(cfg.DBName))
	ctx, cancel := utils.WithTimeout(context.Background())
	defer cancel()

	if err := store.Create(ctx, &user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			fmt.Printf("User %s (or email %s) already exists\n", username, email)
			os.Exit(0)
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println("User created")
	fmt.Printf("   Username: %s\n", user.Username)
	fmt.Printf("   Email: %s\n", user.Email)
	fmt.Printf("   User ID: %s\n", user.ID.Hex())
}
