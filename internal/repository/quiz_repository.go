package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type QuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (*Quiz, error) {
	query := `
		SELECT id, name, start_time, end_time, created_at
		FROM quizzes
		WHERE id = $1
	`

	quiz := &Quiz{}
	err := r.db.QueryRowContext(ctx, query, quizID).Scan(
		&quiz.ID,
		&quiz.Name,
		&quiz.StartTime,
		&quiz.EndTime,
		&quiz.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	return quiz, nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]*Quiz, error) {
	query := `
		SELECT id, name, start_time, end_time, created_at
		FROM quizzes
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*Quiz
	for rows.Next() {
		quiz := &Quiz{}
		if err := rows.Scan(&quiz.ID, &quiz.Name, &quiz.StartTime, &quiz.EndTime, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	return quizzes, rows.Err()
}

// CountQuestions counts the quiz's questions whose ids are not in exclude.
func (r *QuizRepository) CountQuestions(ctx context.Context, quizID int64, exclude []int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM quiz_questions
		WHERE quiz_id = $1 AND question_id <> ALL($2)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, quizID, int64Array(exclude)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return count, nil
}

// ListQuestions returns one page of the quiz's questions in the order they
// were added to the quiz, each with its choices.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID int64, limit, offset int) ([]*Question, error) {
	query := `
		SELECT q.id, q.text, q.created_at
		FROM questions q
		JOIN quiz_questions qq ON qq.question_id = q.id
		WHERE qq.quiz_id = $1
		ORDER BY qq.position
		LIMIT $2 OFFSET $3
	`

	return r.queryQuestions(ctx, query, quizID, limit, offset)
}

// GetQuizQuestions returns every question of the quiz with its choices, in
// the order they were added to the quiz.
func (r *QuizRepository) GetQuizQuestions(ctx context.Context, quizID int64) ([]*Question, error) {
	query := `
		SELECT q.id, q.text, q.created_at
		FROM questions q
		JOIN quiz_questions qq ON qq.question_id = q.id
		WHERE qq.quiz_id = $1
		ORDER BY qq.position
	`

	return r.queryQuestions(ctx, query, quizID)
}

func (r *QuizRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]*Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []*Question
	byID := make(map[int64]*Question)
	var ids []int64
	for rows.Next() {
		q := &Question{}
		if err := rows.Scan(&q.ID, &q.Text, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
		byID[q.ID] = q
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	if len(ids) == 0 {
		return questions, nil
	}

	if err := r.loadChoices(ctx, byID, ids); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *QuizRepository) loadChoices(ctx context.Context, byID map[int64]*Question, ids []int64) error {
	query := `
		SELECT id, question_id, text, is_correct
		FROM choices
		WHERE question_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, int64Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &Choice{}
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.IsCorrect); err != nil {
			return fmt.Errorf("failed to scan choice: %w", err)
		}
		if q, ok := byID[c.QuestionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}

	return rows.Err()
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *Quiz) error {
	quiz.CreatedAt = time.Now()

	query := `
		INSERT INTO quizzes (name, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, quiz.Name, quiz.StartTime, quiz.EndTime, quiz.CreatedAt).Scan(&quiz.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	return nil
}

// CreateQuestion stores the question with its choices and links it to every
// quiz in quizIDs, in one transaction.
func (r *QuizRepository) CreateQuestion(ctx context.Context, question *Question, quizIDs []int64) error {
	question.CreatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO questions (text, created_at) VALUES ($1, $2) RETURNING id`,
		question.Text, question.CreatedAt,
	).Scan(&question.ID)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	for _, choice := range question.Choices {
		choice.QuestionID = question.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO choices (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
			choice.QuestionID, choice.Text, choice.IsCorrect,
		).Scan(&choice.ID)
		if err != nil {
			return fmt.Errorf("failed to create choice: %w", err)
		}
	}

	for _, quizID := range quizIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (quiz_id, question_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			quizID, question.ID,
		)
		if pqCode(err) == pqForeignKeyViolation {
			return ErrQuizNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to link question to quiz: %w", err)
		}
	}

	return tx.Commit()
}
