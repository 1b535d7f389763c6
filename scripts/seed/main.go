// Command seed loads development data: an admin and a customer account with
// a handful of products, and prints a session token for each account.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const devPassword = "password123"

type seedUser struct {
	id      uuid.UUID
	name    string
	email   string
	isAdmin bool
}

var users = []seedUser{
	{uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), "Admin User", "admin@example.com", true},
	{uuid.MustParse("00000000-0000-0000-0000-0000000000c1"), "John Doe", "john@example.com", false},
}

var products = []struct {
	name, brand, category, image string
	price                        float64
	stock                        int
}{
	{"Airpods Wireless Bluetooth Headphones", "Apple", "Electronics", "/uploads/airpods.jpg", 89.99, 10},
	{"iPhone 13 Pro 256GB Memory", "Apple", "Electronics", "/uploads/phone.jpg", 599.99, 7},
	{"Cannon EOS 80D DSLR Camera", "Cannon", "Electronics", "/uploads/camera.jpg", 929.99, 5},
	{"Sony Playstation 5", "Sony", "Electronics", "/uploads/playstation.jpg", 399.99, 11},
	{"Logitech G-Series Gaming Mouse", "Logitech", "Electronics", "/uploads/mouse.jpg", 49.99, 7},
	{"Amazon Echo Dot 3rd Generation", "Amazon", "Electronics", "/uploads/alexa.jpg", 29.99, 0},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := seed(ctx, pool); err != nil {
		return err
	}
	fmt.Printf("Seeded %d users and %d products (password: %s)\n\n", len(users), len(products), devPassword)

	for _, u := range users {
		token, err := mintToken(cfg.Auth.JWTSecret, u.id, 30*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n  Authorization: Bearer %s\n", u.email, token)
	}

	return nil
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(devPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"order_items", "orders", "reviews", "products", "users"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, u := range users {
		_, err := tx.Exec(ctx,
			"INSERT INTO users (id, name, email, password_hash, is_admin) VALUES ($1, $2, $3, $4, $5)",
			u.id, u.name, u.email, string(hash), u.isAdmin,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.email, err)
		}
	}

	base := time.Now().UTC()
	for i, p := range products {
		createdAt := base.Add(time.Duration(i) * time.Millisecond)
		_, err := tx.Exec(ctx,
			`INSERT INTO products (id, user_id, name, description, brand, category, price,
				count_in_stock, image, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			uuid.New(), users[0].id, p.name, p.name, p.brand, p.category, p.price, p.stock, p.image, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.name, err)
		}
	}

	return tx.Commit(ctx)
}

func mintToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
