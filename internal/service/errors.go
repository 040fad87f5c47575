package service

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrOTPDeliveryFailed      = errors.New("failed to send otp")
	ErrInvalidOTP             = errors.New("invalid otp")
	ErrRegistrationNotStarted = errors.New("registration not started")
	ErrRegistrationFailed     = errors.New("registration failed")
	ErrUsernameTaken          = errors.New("username already exists")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrResetNotStarted        = errors.New("password reset not started")
	ErrInvalidProfile         = errors.New("invalid profile")
	ErrUserNotFound           = errors.New("user not found")
	ErrQuizNotFound           = errors.New("quiz not found")
	ErrInvalidAnswer          = errors.New("invalid or missing answer data")
	ErrIncompleteSubmission   = errors.New("incomplete submission")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrInvalidQuestion        = errors.New("invalid question")
	ErrInvalidQuiz            = errors.New("invalid quiz")
	ErrFileTooLarge           = errors.New("file too large")
	ErrStorageUnavailable     = errors.New("file storage unavailable")
)

var userMessages = map[error]string{
	ErrInvalidCredentials:     "Invalid username or password.",
	ErrInvalidEmail:           "Invalid email address.",
	ErrOTPDeliveryFailed:      "Failed to send OTP.",
	ErrInvalidOTP:             "Invalid OTP.",
	ErrRegistrationNotStarted: "Please request an OTP for your email first.",
	ErrRegistrationFailed:     "Registration failed. Please check your details.",
	ErrUsernameTaken:          "Username already exists.",
	ErrPasswordMismatch:       "Passwords do not match.",
	ErrResetNotStarted:        "Please request a password reset first.",
	ErrInvalidProfile:         "Error updating profile.",
	ErrUserNotFound:           "User not found.",
	ErrQuizNotFound:           "Quiz not found.",
	ErrInvalidAnswer:          "Invalid or missing answer data.",
	ErrIncompleteSubmission:   "Please answer all questions.",
	ErrSubmissionNotFound:     "You have not completed this quiz yet.",
	ErrInvalidQuestion:        "A question needs text, at least two choices and exactly one correct choice.",
	ErrInvalidQuiz:            "A quiz needs a name.",
	ErrFileTooLarge:           "File exceeds the 5 MB limit.",
	ErrStorageUnavailable:     "File storage is not available.",
}

// UserMessage returns the text shown to the visitor for err, or "" when err
// is not one of the service errors.
func UserMessage(err error) string {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return ""
}
