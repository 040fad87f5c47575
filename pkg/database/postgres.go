package database

import (
	"context"
	"database/sql"
	"fmt"

	"quiz-portal/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	db     *sql.DB
	config *config.DBConfig
}

func NewPostgresClient(cfg *config.DBConfig) (*PostgresClient, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &PostgresClient{
		db:     db,
		config: cfg,
	}, nil
}

func (c *PostgresClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.db
}

func (c *PostgresClient) InitSchema(ctx context.Context) error {
	return InitSchema(ctx, c.db)
}

var schema = []struct {
	name  string
	query string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(150) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL DEFAULT '',
			first_name VARCHAR(30) NOT NULL DEFAULT '',
			last_name VARCHAR(30) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`},
	{"questions", `
		CREATE TABLE IF NOT EXISTS questions (
			id BIGSERIAL PRIMARY KEY,
			text VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`},
	{"choices", `
		CREATE TABLE IF NOT EXISTS choices (
			id BIGSERIAL PRIMARY KEY,
			question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			text VARCHAR(255) NOT NULL,
			is_correct BOOLEAN NOT NULL DEFAULT false
		);
		CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices(question_id);
	`},
	{"quizzes", `
		CREATE TABLE IF NOT EXISTS quizzes (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			start_time TIMESTAMP NULL,
			end_time TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`},
	{"quiz_questions", `
		CREATE TABLE IF NOT EXISTS quiz_questions (
			quiz_id BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
			question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			position BIGSERIAL NOT NULL,
			PRIMARY KEY (quiz_id, question_id)
		);
		CREATE INDEX IF NOT EXISTS idx_quiz_questions_position ON quiz_questions(quiz_id, position);
	`},
	{"quiz_submissions", `
		CREATE TABLE IF NOT EXISTS quiz_submissions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			quiz_id BIGINT NOT NULL REFERENCES quizzes(id),
			started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP NULL
		);
		CREATE INDEX IF NOT EXISTS idx_quiz_submissions_user_quiz ON quiz_submissions(user_id, quiz_id);
	`},
	{"answers", `
		CREATE TABLE IF NOT EXISTS answers (
			id BIGSERIAL PRIMARY KEY,
			submission_id BIGINT NOT NULL REFERENCES quiz_submissions(id),
			question_id BIGINT NOT NULL REFERENCES questions(id),
			choice_id BIGINT NOT NULL REFERENCES choices(id),
			submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (submission_id, question_id)
		);
	`},
}

// InitSchema creates every table the application needs. Answers reference
// their submission without ON DELETE CASCADE: submissions are removed through
// SubmissionRepository.DeleteSubmission, which deletes the answers first.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range schema {
		if _, err := db.ExecContext(ctx, table.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}
