package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Seeded accounts.
var (
	AdminID    = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	CustomerID = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
)

// SeededProduct describes a product inserted by SeedProducts.
type SeededProduct struct {
	ID    uuid.UUID
	Name  string
	Price float64
	Image string
}

// SeededProducts are inserted in this order, one second apart.
var SeededProducts = []SeededProduct{
	{uuid.MustParse("10000000-0000-0000-0000-000000000001"), "Airpods Wireless Headphones", 89.99, "/uploads/airpods.jpg"},
	{uuid.MustParse("10000000-0000-0000-0000-000000000002"), "iPhone 13 Pro", 599.99, "/uploads/phone.jpg"},
	{uuid.MustParse("10000000-0000-0000-0000-000000000003"), "Cannon EOS 80D DSLR Camera", 929.99, "/uploads/camera.jpg"},
	{uuid.MustParse("10000000-0000-0000-0000-000000000004"), "Sony Playstation 5", 399.99, "/uploads/playstation.jpg"},
	{uuid.MustParse("10000000-0000-0000-0000-000000000005"), "Logitech G-Series Gaming Mouse", 49.99, "/uploads/mouse.jpg"},
}

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the
// schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedUsers inserts one admin and one customer account.
func SeedUsers(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	users := []struct {
		id      uuid.UUID
		name    string
		email   string
		isAdmin bool
	}{
		{AdminID, "Admin User", "admin@example.com", true},
		{CustomerID, "John Doe", "john@example.com", false},
	}

	for _, u := range users {
		_, err := pool.Exec(ctx,
			"INSERT INTO users (id, name, email, password_hash, is_admin) VALUES ($1, $2, $3, $4, $5)",
			u.id, u.name, u.email, "not-a-real-hash", u.isAdmin,
		)
		if err != nil {
			t.Fatalf("failed to seed user %s: %v", u.email, err)
		}
	}
}

// SeedProducts inserts SeededProducts, owned by the admin account.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, p := range SeededProducts {
		createdAt := base.Add(time.Duration(i) * time.Second)
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, user_id, name, description, brand, category, price,
				count_in_stock, image, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			p.ID, AdminID, p.Name, "Seeded product", "Brand", "Electronics", p.Price,
			10, p.Image, createdAt,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.Name, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "reviews", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
