package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Chat messages table
		CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			session_id UUID NOT NULL,
			role VARCHAR(20) NOT NULL,
			content TEXT NOT NULL,
			provider VARCHAR(50),
			model VARCHAR(100),
			tokens_used INTEGER DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Research papers table
		CREATE TABLE IF NOT EXISTS research_papers (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			title VARCHAR(500) NOT NULL,
			markdown TEXT NOT NULL,
			status VARCHAR(20) NOT NULL,
			summary JSONB,
			error_message TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			processed_at TIMESTAMP
		);

		-- Formula snippets table
		CREATE TABLE IF NOT EXISTS formula_snippets (
			id UUID PRIMARY KEY,
			paper_id UUID NOT NULL REFERENCES research_papers(id) ON DELETE CASCADE,
			latex TEXT NOT NULL,
			location_index INTEGER NOT NULL,
			description TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Visual media table
		CREATE TABLE IF NOT EXISTS visual_media (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			title VARCHAR(500) NOT NULL,
			media_type VARCHAR(20) NOT NULL,
			source_url TEXT NOT NULL,
			width INTEGER DEFAULT 0,
			height INTEGER DEFAULT 0,
			duration_seconds DOUBLE PRECISION DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Analysis records table
		CREATE TABLE IF NOT EXISTS analysis_records (
			id UUID PRIMARY KEY,
			media_id UUID NOT NULL REFERENCES visual_media(id) ON DELETE CASCADE,
			kind VARCHAR(50) NOT NULL,
			labels JSONB,
			description TEXT,
			confidence DOUBLE PRECISION DEFAULT 0,
			provider VARCHAR(50),
			model VARCHAR(100),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Audit logs table
		CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			user_id UUID,
			action VARCHAR(100) NOT NULL,
			resource_type VARCHAR(100) NOT NULL,
			resource_id UUID,
			details JSONB,
			request_id VARCHAR(255),
			provider VARCHAR(50),
			model VARCHAR(100),
			tokens_used INTEGER DEFAULT 0,
			latency_ms INTEGER DEFAULT 0,
			error_message TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_user_id ON chat_messages(user_id);
		CREATE INDEX IF NOT EXISTS idx_research_papers_user_id ON research_papers(user_id);
		CREATE INDEX IF NOT EXISTS idx_research_papers_status ON research_papers(status);
		CREATE INDEX IF NOT EXISTS idx_formula_snippets_paper_id ON formula_snippets(paper_id);
		CREATE INDEX IF NOT EXISTS idx_visual_media_user_id ON visual_media(user_id);
		CREATE INDEX IF NOT EXISTS idx_analysis_records_media_id ON analysis_records(media_id);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
