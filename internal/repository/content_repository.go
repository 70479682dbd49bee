package repository

import (
	"context"
	"fmt"
	"log"

	"advisory-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// ContentRepository serves the dashboard's alerts and upcoming tasks.
type ContentRepository interface {
	GetAlerts(ctx context.Context) ([]models.Alert, error)
	GetTasks(ctx context.Context) ([]models.FarmingTask, error)
}

var DefaultAlerts = []models.Alert{
	{Type: "weather", Message: "Heavy rainfall expected in 2 days", Priority: "high"},
	{Type: "pest", Message: "Aphid activity detected in nearby areas", Priority: "medium"},
	{Type: "soil", Message: "Soil moisture levels optimal for planting", Priority: "low"},
}

var DefaultTasks = []models.FarmingTask{
	{Task: "Apply nitrogen fertilizer", Crop: "Rice", DueDate: "Tomorrow", Status: "pending"},
	{Task: "Pest inspection", Crop: "Cotton", DueDate: "3 days", Status: "pending"},
	{Task: "Harvest preparation", Crop: "Wheat", DueDate: "1 week", Status: "upcoming"},
}

type staticContentRepository struct{}

func NewStaticContentRepository() ContentRepository {
	return staticContentRepository{}
}

func (staticContentRepository) GetAlerts(context.Context) ([]models.Alert, error) {
	return append([]models.Alert(nil), DefaultAlerts...), nil
}

func (staticContentRepository) GetTasks(context.Context) ([]models.FarmingTask, error) {
	return append([]models.FarmingTask(nil), DefaultTasks...), nil
}

const contentSchema = `
CREATE TABLE IF NOT EXISTS dashboard_alerts (
	id SERIAL PRIMARY KEY,
	alert_type VARCHAR(32) NOT NULL,
	message TEXT NOT NULL,
	priority VARCHAR(16) NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS farming_tasks (
	id SERIAL PRIMARY KEY,
	task TEXT NOT NULL,
	crop VARCHAR(64) NOT NULL,
	due_date VARCHAR(64) NOT NULL,
	status VARCHAR(16) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

type postgresContentRepository struct {
	db *sqlx.DB
}

// NewPostgresContentRepository creates the content tables if needed and seeds them with the
// default rows when they are empty.
func NewPostgresContentRepository(ctx context.Context, db *sqlx.DB) (ContentRepository, error) {
	r := &postgresContentRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *postgresContentRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, contentSchema); err != nil {
		return fmt.Errorf("failed to create content tables: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var alertCount int
	if err := tx.GetContext(ctx, &alertCount, `SELECT COUNT(*) FROM dashboard_alerts`); err != nil {
		return fmt.Errorf("failed to count alerts: %w", err)
	}
	if alertCount == 0 {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO dashboard_alerts (alert_type, message, priority) VALUES (:alert_type, :message, :priority)`,
			DefaultAlerts)
		if err != nil {
			return fmt.Errorf("failed to seed alerts: %w", err)
		}
		log.Printf("Seeded %d dashboard alerts", len(DefaultAlerts))
	}

	var taskCount int
	if err := tx.GetContext(ctx, &taskCount, `SELECT COUNT(*) FROM farming_tasks`); err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if taskCount == 0 {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO farming_tasks (task, crop, due_date, status) VALUES (:task, :crop, :due_date, :status)`,
			DefaultTasks)
		if err != nil {
			return fmt.Errorf("failed to seed tasks: %w", err)
		}
		log.Printf("Seeded %d farming tasks", len(DefaultTasks))
	}

	return tx.Commit()
}

func (r *postgresContentRepository) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	query := `
		SELECT alert_type, message, priority
		FROM dashboard_alerts
		ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, id`
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return alerts, nil
}

func (r *postgresContentRepository) GetTasks(ctx context.Context) ([]models.FarmingTask, error) {
	var tasks []models.FarmingTask
	query := `SELECT task, crop, due_date, status FROM farming_tasks ORDER BY id`
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}
