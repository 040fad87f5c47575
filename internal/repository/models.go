package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

type Question struct {
	ID        int64
	Text      string
	CreatedAt time.Time
	Choices   []*Choice
}

// CorrectChoice returns the first choice flagged correct, or nil.
func (q *Question) CorrectChoice() *Choice {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c
		}
	}
	return nil
}

// HasChoice reports whether choiceID is one of the question's choices.
func (q *Question) HasChoice(choiceID int64) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

type Choice struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}

type Quiz struct {
	ID        int64
	Name      string
	StartTime sql.NullTime
	EndTime   sql.NullTime
	CreatedAt time.Time
}

type QuizSubmission struct {
	ID          int64
	UserID      int64
	QuizID      int64
	StartedAt   time.Time
	CompletedAt sql.NullTime
}

type Answer struct {
	ID           int64
	SubmissionID int64
	QuestionID   int64
	ChoiceID     int64
	SubmittedAt  time.Time
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// int64Array never hands a nil slice to the driver: pq encodes nil as NULL,
// and "x <> ALL(NULL)" filters out every row.
func int64Array(ids []int64) pq.Int64Array {
	if ids == nil {
		return pq.Int64Array{}
	}
	return pq.Int64Array(ids)
}
