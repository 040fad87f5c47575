package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"quiz-portal/internal/repository"
	"quiz-portal/internal/session"
	"quiz-portal/pkg/messaging"
	"quiz-portal/pkg/validator"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

const (
	StepEmail   = "email"
	StepDetails = "details"
)

type RegistrationInput struct {
	Username        string
	OTP             string
	Password        string
	ConfirmPassword string
}

type AuthService struct {
	users     UserStore
	otp       *OTPService
	publisher EventPublisher
}

// NewAuthService builds the login and registration flows. publisher may be
// nil, in which case no user.registered events are emitted.
func NewAuthService(users UserStore, otp *OTPService, publisher EventPublisher) *AuthService {
	return &AuthService{
		users:     users,
		otp:       otp,
		publisher: publisher,
	}
}

// Login authenticates state as username. On failure state is not modified.
func (s *AuthService) Login(ctx context.Context, state *session.State, username, password string) (*repository.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	state.Flush()
	state.UserID = user.ID
	state.Username = user.Username

	return user, nil
}

func (s *AuthService) Logout(state *session.State) {
	state.Flush()
}

// RegistrationStep names the form a visitor should see next.
func (s *AuthService) RegistrationStep(state *session.State) string {
	if registrationPending(state) {
		return StepDetails
	}
	return StepEmail
}

func registrationPending(state *session.State) bool {
	return state.EmailOTPSent && state.Email != "" && state.OTPPurpose == string(PurposeVerification)
}

func (s *AuthService) StartRegistration(ctx context.Context, state *session.State, address string) error {
	address = validator.NormalizeEmail(address)
	if err := validator.ValidateEmail(address); err != nil {
		return ErrInvalidEmail
	}

	if err := s.otp.Issue(ctx, state, address, PurposeVerification); err != nil {
		return err
	}

	state.Email = address
	return nil
}

func (s *AuthService) CompleteRegistration(ctx context.Context, state *session.State, in RegistrationInput) (*repository.User, error) {
	if !registrationPending(state) {
		return nil, ErrRegistrationNotStarted
	}

	if !s.otp.Verify(state, in.OTP, PurposeVerification, state.Email) {
		return nil, ErrInvalidOTP
	}

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" || in.Password != in.ConfirmPassword {
		return nil, ErrRegistrationFailed
	}

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, hash, state.Email)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.otp.Consume(state)
	state.ClearPending()

	log.Printf("Registered user %s", user.Username)

	publish(ctx, s.publisher, messaging.QueueUserRegistered, UserRegisteredEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})

	return user, nil
}

func publish(ctx context.Context, p EventPublisher, queueName string, event any) {
	if p == nil {
		return
	}
	if err := messaging.PublishJSON(ctx, p, queueName, event); err != nil {
		log.Printf("Failed to publish %s event: %v", queueName, err)
	}
}
