// Package session holds the per-visitor state that survives between requests:
// pending OTP data, the authenticated user and the quiz answers collected so
// far. Flows receive a *State explicitly; the HTTP middleware loads it before
// the handler runs and writes it back afterwards.
package session

import "time"

type State struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`

	// OTPPurpose and OTPDestination bind OTP to the flow and address it
	// was issued for.
	OTP            string    `json:"otp,omitempty"`
	OTPSentAt      time.Time `json:"otp_sent_time,omitempty"`
	OTPPurpose     string    `json:"otp_purpose,omitempty"`
	OTPDestination string    `json:"otp_destination,omitempty"`
	EmailOTPSent   bool      `json:"email_otp_sent,omitempty"`
	Email          string    `json:"email,omitempty"`
	ResetUser      string    `json:"user,omitempty"`

	// Answers maps question id to chosen choice id for AnswersQuizID.
	Answers       map[int64]int64 `json:"answers,omitempty"`
	AnswersQuizID int64           `json:"answers_quiz_id,omitempty"`
}

func New() *State {
	return &State{}
}

func (s *State) IsAuthenticated() bool {
	return s.UserID != 0
}

// Flush clears every key, including authentication.
func (s *State) Flush() {
	*s = State{}
}

// IsEmpty reports whether the state carries nothing worth persisting.
func (s *State) IsEmpty() bool {
	return s.UserID == 0 &&
		s.Username == "" &&
		s.OTP == "" &&
		s.OTPSentAt.IsZero() &&
		s.OTPPurpose == "" &&
		s.OTPDestination == "" &&
		!s.EmailOTPSent &&
		s.Email == "" &&
		s.ResetUser == "" &&
		len(s.Answers) == 0 &&
		s.AnswersQuizID == 0
}

// ClearPending drops the OTP and the pending registration/reset keys.
func (s *State) ClearPending() {
	s.OTP = ""
	s.OTPSentAt = time.Time{}
	s.OTPPurpose = ""
	s.OTPDestination = ""
	s.EmailOTPSent = false
	s.Email = ""
	s.ResetUser = ""
}

// ResetAnswers starts an empty answer set scoped to quizID.
func (s *State) ResetAnswers(quizID int64) {
	s.Answers = map[int64]int64{}
	s.AnswersQuizID = quizID
}

func (s *State) ClearAnswers() {
	s.Answers = nil
	s.AnswersQuizID = 0
}
