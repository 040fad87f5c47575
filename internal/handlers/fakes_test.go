package handlers

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-portal/internal/repository"
	"quiz-portal/pkg/email"

	"golang.org/x/crypto/bcrypt"
)

type memMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *memMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *memMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	body := m.sent[len(m.sent)-1].Body
	return body[strings.LastIndex(body, " ")+1:]
}

type memPublisher struct {
	queues []string
}

func (p *memPublisher) Publish(_ context.Context, queueName string, _ []byte) error {
	p.queues = append(p.queues, queueName)
	return nil
}

type memStorage struct {
	object string
	data   []byte
}

func (s *memStorage) UploadFile(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.object, s.data = objectName, data
	return nil
}

type memUsers struct {
	users []*repository.User
}

func (f *memUsers) add(t *testing.T, username, password, address string) *repository.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user, err := f.CreateUser(context.Background(), username, string(hash), address)
	if err != nil {
		t.Fatal(err)
	}
	return user
}

func (f *memUsers) find(match func(*repository.User) bool) (*repository.User, error) {
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *memUsers) GetUserByUsername(_ context.Context, username string) (*repository.User, error) {
	return f.find(func(u *repository.User) bool { return u.Username == username })
}

func (f *memUsers) GetUserByID(_ context.Context, userID int64) (*repository.User, error) {
	return f.find(func(u *repository.User) bool { return u.ID == userID })
}

func (f *memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (f *memUsers) CreateUser(ctx context.Context, username, passwordHash, address string) (*repository.User, error) {
	if exists, _ := f.UsernameExists(ctx, username); exists {
		return nil, repository.ErrDuplicateUsername
	}
	u := &repository.User{
		ID:           int64(len(f.users) + 1),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        address,
		CreatedAt:    time.Now(),
	}
	f.users = append(f.users, u)
	copied := *u
	return &copied, nil
}

func (f *memUsers) UpdateProfile(_ context.Context, userID int64, firstName, lastName string) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.FirstName, u.LastName = firstName, lastName
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *memUsers) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *memUsers) ListEmails(_ context.Context) ([]string, error) {
	var emails []string
	for _, u := range f.users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

// memQuizzes numbers questions globally; question id has correct choice
// 10*id and wrong choice 10*id+1.
type memQuizzes struct {
	quizzes   []*repository.Quiz
	questions map[int64][]*repository.Question
	nextQID   int64
}

func newMemQuizzes() *memQuizzes {
	return &memQuizzes{questions: make(map[int64][]*repository.Question)}
}

func (f *memQuizzes) addQuiz(name string, n int) *repository.Quiz {
	quiz := &repository.Quiz{Name: name}
	_ = f.CreateQuiz(context.Background(), quiz)

	for i := 0; i < n; i++ {
		f.nextQID++
		id := f.nextQID
		f.questions[quiz.ID] = append(f.questions[quiz.ID], &repository.Question{
			ID:   id,
			Text: "Question " + string(rune('A'+i)),
			Choices: []*repository.Choice{
				{ID: 10 * id, QuestionID: id, Text: "right", IsCorrect: true},
				{ID: 10*id + 1, QuestionID: id, Text: "wrong"},
			},
		})
	}
	return quiz
}

func (f *memQuizzes) GetQuiz(_ context.Context, quizID int64) (*repository.Quiz, error) {
	for _, q := range f.quizzes {
		if q.ID == quizID {
			return q, nil
		}
	}
	return nil, repository.ErrQuizNotFound
}

func (f *memQuizzes) ListQuizzes(_ context.Context) ([]*repository.Quiz, error) {
	return f.quizzes, nil
}

func (f *memQuizzes) CountQuestions(_ context.Context, quizID int64, exclude []int64) (int, error) {
	count := 0
	for _, q := range f.questions[quizID] {
		skip := false
		for _, id := range exclude {
			skip = skip || id == q.ID
		}
		if !skip {
			count++
		}
	}
	return count, nil
}

func (f *memQuizzes) ListQuestions(_ context.Context, quizID int64, limit, offset int) ([]*repository.Question, error) {
	all := f.questions[quizID]
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *memQuizzes) GetQuizQuestions(_ context.Context, quizID int64) ([]*repository.Question, error) {
	return f.questions[quizID], nil
}

func (f *memQuizzes) CreateQuiz(_ context.Context, quiz *repository.Quiz) error {
	quiz.ID = int64(len(f.quizzes) + 1)
	quiz.CreatedAt = time.Now()
	f.quizzes = append(f.quizzes, quiz)
	return nil
}

func (f *memQuizzes) CreateQuestion(ctx context.Context, question *repository.Question, quizIDs []int64) error {
	for _, quizID := range quizIDs {
		if _, err := f.GetQuiz(ctx, quizID); err != nil {
			return err
		}
	}
	f.nextQID++
	question.ID = f.nextQID
	for i, c := range question.Choices {
		c.ID = 10*question.ID + int64(i)
		c.QuestionID = question.ID
	}
	for _, quizID := range quizIDs {
		f.questions[quizID] = append(f.questions[quizID], question)
	}
	return nil
}

type memSubmissions struct {
	submissions []*repository.QuizSubmission
	answers     map[int64][]*repository.Answer
}

func newMemSubmissions() *memSubmissions {
	return &memSubmissions{answers: make(map[int64][]*repository.Answer)}
}

func (f *memSubmissions) CreateSubmission(_ context.Context, userID, quizID int64, answers map[int64]int64) (*repository.QuizSubmission, error) {
	s := &repository.QuizSubmission{
		ID:        int64(len(f.submissions) + 1),
		UserID:    userID,
		QuizID:    quizID,
		StartedAt: time.Now(),
	}
	f.submissions = append(f.submissions, s)
	for questionID, choiceID := range answers {
		f.answers[s.ID] = append(f.answers[s.ID], &repository.Answer{
			SubmissionID: s.ID,
			QuestionID:   questionID,
			ChoiceID:     choiceID,
		})
	}
	return s, nil
}

func (f *memSubmissions) GetLatestSubmission(_ context.Context, userID, quizID int64) (*repository.QuizSubmission, error) {
	for i := len(f.submissions) - 1; i >= 0; i-- {
		if s := f.submissions[i]; s != nil && s.UserID == userID && s.QuizID == quizID {
			return s, nil
		}
	}
	return nil, repository.ErrSubmissionNotFound
}

func (f *memSubmissions) GetAnswers(_ context.Context, submissionID int64) ([]*repository.Answer, error) {
	return f.answers[submissionID], nil
}

// DeleteSubmission leaves a nil hole so ids stay unique.
func (f *memSubmissions) DeleteSubmission(_ context.Context, submissionID int64) error {
	for i, s := range f.submissions {
		if s != nil && s.ID == submissionID {
			f.submissions[i] = nil
			delete(f.answers, submissionID)
			return nil
		}
	}
	return repository.ErrSubmissionNotFound
}
