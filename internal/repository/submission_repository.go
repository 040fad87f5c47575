package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateSubmission records a completed attempt and all of its answers
// (question id to choice id) atomically.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, userID, quizID int64, answers map[int64]int64) (*QuizSubmission, error) {
	now := time.Now()
	submission := &QuizSubmission{
		UserID:      userID,
		QuizID:      quizID,
		StartedAt:   now,
		CompletedAt: sql.NullTime{Time: now, Valid: true},
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO quiz_submissions (user_id, quiz_id, started_at, completed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		submission.UserID,
		submission.QuizID,
		submission.StartedAt,
		submission.CompletedAt,
	).Scan(&submission.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if len(answers) > 0 {
		questionIDs := make([]int64, 0, len(answers))
		for questionID := range answers {
			questionIDs = append(questionIDs, questionID)
		}
		sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

		values := make([]string, 0, len(questionIDs))
		args := make([]any, 0, len(questionIDs)*3+2)
		args = append(args, submission.ID, now)
		for i, questionID := range questionIDs {
			values = append(values, fmt.Sprintf("($1, $%d, $%d, $2)", i*2+3, i*2+4))
			args = append(args, questionID, answers[questionID])
		}

		insertAnswers := `INSERT INTO answers (submission_id, question_id, choice_id, submitted_at) VALUES ` +
			strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, insertAnswers, args...); err != nil {
			return nil, fmt.Errorf("failed to create answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	return submission, nil
}

func (r *SubmissionRepository) GetLatestSubmission(ctx context.Context, userID, quizID int64) (*QuizSubmission, error) {
	query := `
		SELECT id, user_id, quiz_id, started_at, completed_at
		FROM quiz_submissions
		WHERE user_id = $1 AND quiz_id = $2
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	s := &QuizSubmission{}
	err := r.db.QueryRowContext(ctx, query, userID, quizID).Scan(
		&s.ID,
		&s.UserID,
		&s.QuizID,
		&s.StartedAt,
		&s.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return s, nil
}

func (r *SubmissionRepository) GetAnswers(ctx context.Context, submissionID int64) ([]*Answer, error) {
	query := `
		SELECT id, submission_id, question_id, choice_id, submitted_at
		FROM answers
		WHERE submission_id = $1
		ORDER BY question_id
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	var answers []*Answer
	for rows.Next() {
		a := &Answer{}
		if err := rows.Scan(&a.ID, &a.SubmissionID, &a.QuestionID, &a.ChoiceID, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}

	return answers, rows.Err()
}

// DeleteSubmission removes the submission's answers, then the submission.
func (r *SubmissionRepository) DeleteSubmission(ctx context.Context, submissionID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE submission_id = $1`, submissionID); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM quiz_submissions WHERE id = $1`, submissionID)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if err := requireAffected(result, ErrSubmissionNotFound); err != nil {
		return err
	}

	return tx.Commit()
}
