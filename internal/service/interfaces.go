package service

import (
	"context"
	"io"

	"quiz-portal/internal/repository"
	"quiz-portal/pkg/email"
)

// Mailer is the notification gateway. A nil error means the message was
// accepted for delivery to every recipient.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type EventPublisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type ObjectStorage interface {
	UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error
}

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*repository.User, error)
	GetUserByID(ctx context.Context, userID int64) (*repository.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, username, passwordHash, email string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID int64, firstName, lastName string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	ListEmails(ctx context.Context) ([]string, error)
}

type QuizStore interface {
	GetQuiz(ctx context.Context, quizID int64) (*repository.Quiz, error)
	ListQuizzes(ctx context.Context) ([]*repository.Quiz, error)
	CountQuestions(ctx context.Context, quizID int64, exclude []int64) (int, error)
	ListQuestions(ctx context.Context, quizID int64, limit, offset int) ([]*repository.Question, error)
	GetQuizQuestions(ctx context.Context, quizID int64) ([]*repository.Question, error)
	CreateQuiz(ctx context.Context, quiz *repository.Quiz) error
	CreateQuestion(ctx context.Context, question *repository.Question, quizIDs []int64) error
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, userID, quizID int64, answers map[int64]int64) (*repository.QuizSubmission, error)
	GetLatestSubmission(ctx context.Context, userID, quizID int64) (*repository.QuizSubmission, error)
	GetAnswers(ctx context.Context, submissionID int64) ([]*repository.Answer, error)
	DeleteSubmission(ctx context.Context, submissionID int64) error
}
