package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"quiz-portal/internal/repository"
	"quiz-portal/internal/session"

	"github.com/google/uuid"
)

const (
	MaxNameLength = 30
	MaxUploadSize = 5 << 20
	DefaultBucket = "user-files"
)

type UploadedFile struct {
	Bucket      string
	Object      string
	Filename    string
	Size        int64
	ContentType string
}

type ProfileService struct {
	users   UserStore
	otp     *OTPService
	storage ObjectStorage
	bucket  string
}

// NewProfileService wires profile editing and password reset. storage may be
// nil; uploads then fail with ErrStorageUnavailable.
func NewProfileService(users UserStore, otp *OTPService, storage ObjectStorage, bucket string) *ProfileService {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &ProfileService{
		users:   users,
		otp:     otp,
		storage: storage,
		bucket:  bucket,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*repository.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, firstName, lastName string) (*repository.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if utf8.RuneCountInString(firstName) > MaxNameLength || utf8.RuneCountInString(lastName) > MaxNameLength {
		return nil, ErrInvalidProfile
	}

	err := s.users.UpdateProfile(ctx, userID, firstName, lastName)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

// RequestPasswordReset mails a reset code to the user's registered address.
func (s *ProfileService) RequestPasswordReset(ctx context.Context, state *session.State, username string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	if user.Email == "" {
		return "", ErrOTPDeliveryFailed
	}

	if err := s.otp.Issue(ctx, state, user.Email, PurposePasswordReset); err != nil {
		return "", err
	}

	state.ResetUser = user.Username
	return user.Email, nil
}

// ConfirmPasswordReset sets the new password and ends the session.
func (s *ProfileService) ConfirmPasswordReset(ctx context.Context, state *session.State, otp, newPassword, confirmPassword string) error {
	if state.ResetUser == "" || state.OTPPurpose != string(PurposePasswordReset) {
		return ErrResetNotStarted
	}

	user, err := s.users.GetUserByUsername(ctx, state.ResetUser)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if !s.otp.Verify(state, otp, PurposePasswordReset, user.Email) {
		return ErrInvalidOTP
	}

	if newPassword == "" || newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.otp.Consume(state)
	state.Flush()
	return nil
}

func (s *ProfileService) UploadFile(ctx context.Context, userID int64, filename string, size int64, contentType string, reader io.Reader) (*UploadedFile, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file := &UploadedFile{
		Bucket:      s.bucket,
		Object:      fmt.Sprintf("%d/%s-%s", userID, uuid.New().String(), name),
		Filename:    name,
		Size:        size,
		ContentType: contentType,
	}

	if err := s.storage.UploadFile(ctx, file.Bucket, file.Object, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return file, nil
}
