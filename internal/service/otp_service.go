package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"time"

	"quiz-portal/internal/session"
	"quiz-portal/pkg/email"
)

const DefaultOTPLength = 6

type OTPPurpose string

const (
	PurposeVerification  OTPPurpose = "verification"
	PurposePasswordReset OTPPurpose = "password_reset"
)

func (p OTPPurpose) subject() string {
	if p == PurposePasswordReset {
		return "Password Reset OTP"
	}
	return "OTP for Verification"
}

func (p OTPPurpose) body(code string) string {
	if p == PurposePasswordReset {
		return fmt.Sprintf("Your OTP for password reset is: %s", code)
	}
	return fmt.Sprintf("Your OTP is: %s", code)
}

type OTPService struct {
	mailer Mailer
	length int
	expiry time.Duration
	now    func() time.Time
}

func NewOTPService(mailer Mailer, length int, expiry time.Duration) *OTPService {
	if length <= 0 {
		length = DefaultOTPLength
	}
	return &OTPService{
		mailer: mailer,
		length: length,
		expiry: expiry,
		now:    time.Now,
	}
}

// Generate returns length digits, each drawn uniformly from 0-9.
func Generate(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}

// Issue sends a fresh code to destination and records it in state, replacing
// any pending registration or reset. When delivery fails state is left
// untouched.
func (s *OTPService) Issue(ctx context.Context, state *session.State, destination string, purpose OTPPurpose) error {
	code, err := Generate(s.length)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	err = s.mailer.Send(ctx, email.Message{
		Subject:    purpose.subject(),
		Body:       purpose.body(code),
		Recipients: []string{destination},
	})
	if err != nil {
		log.Printf("Failed to send OTP to %s: %v", destination, err)
		return ErrOTPDeliveryFailed
	}

	state.ClearPending()
	state.OTP = code
	state.OTPSentAt = s.now()
	state.OTPPurpose = string(purpose)
	state.OTPDestination = destination
	state.EmailOTPSent = true
	return nil
}

// Verify accepts code only if it was issued for purpose and mailed to
// destination, and has not expired.
func (s *OTPService) Verify(state *session.State, code string, purpose OTPPurpose, destination string) bool {
	if state.OTP == "" || state.OTPSentAt.IsZero() {
		return false
	}
	if state.OTPPurpose != string(purpose) || destination == "" || state.OTPDestination != destination {
		return false
	}
	if s.now().Sub(state.OTPSentAt) > s.expiry {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(state.OTP), []byte(code)) == 1
}

// Consume invalidates the issued code so it cannot be replayed.
func (s *OTPService) Consume(state *session.State) {
	state.OTP = ""
	state.OTPSentAt = time.Time{}
	state.OTPPurpose = ""
	state.OTPDestination = ""
}
