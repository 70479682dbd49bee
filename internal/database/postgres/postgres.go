package postgres

import (
	"context"
	"fmt"
	"log"

	"advisory-service/internal/config"
	"advisory-service/internal/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func connectionString(cfg config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)
}

// Connect opens the dashboard content database, retrying while Postgres comes up.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*sqlx.DB, error) {
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBname)

	var db *sqlx.DB
	err := database.ConnectWithRetry(ctx, "postgres", 5, func() error {
		conn, err := sqlx.ConnectContext(ctx, "postgres", connectionString(cfg))
		if err != nil {
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	return db, nil
}
