package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

type UserRegisteredEvent struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type QuestionCreatedEvent struct {
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
}

type NotificationMailer interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendNewQuestion(ctx context.Context, recipients []string, question string) error
}

// NotificationService handles the events consumed by the notification
// worker.
type NotificationService struct {
	mailer NotificationMailer
	users  UserStore
}

func NewNotificationService(mailer NotificationMailer, users UserStore) *NotificationService {
	return &NotificationService{
		mailer: mailer,
		users:  users,
	}
}

func (s *NotificationService) HandleUserRegistered(ctx context.Context, body []byte) error {
	var event UserRegisteredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal user.registered event: %w", err)
	}

	if event.Email == "" {
		return nil
	}

	if err := s.mailer.SendWelcome(ctx, event.Email, event.Username); err != nil {
		return err
	}

	log.Printf("Welcome email sent to %s", event.Email)
	return nil
}

// HandleQuestionCreated emails every user that has an address.
func (s *NotificationService) HandleQuestionCreated(ctx context.Context, body []byte) error {
	var event QuestionCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal question.created event: %w", err)
	}

	recipients, err := s.users.ListEmails(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	if err := s.mailer.SendNewQuestion(ctx, recipients, event.Text); err != nil {
		return err
	}

	log.Printf("New question %d announced to %d users", event.QuestionID, len(recipients))
	return nil
}
