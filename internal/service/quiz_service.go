package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"quiz-portal/internal/repository"
	"quiz-portal/internal/session"
	"quiz-portal/pkg/messaging"
)

const DefaultPageSize = 2

type QuestionPage struct {
	QuizID         int64
	Number         int
	NumPages       int
	TotalQuestions int
	Questions      []*repository.Question
}

func (p *QuestionPage) HasNext() bool     { return p.Number < p.NumPages }
func (p *QuestionPage) HasPrevious() bool { return p.Number > 1 }

type QuestionResult struct {
	QuestionID     int64
	Question       string
	SelectedChoice string
	CorrectAnswer  string
	IsCorrect      bool
}

type QuizResult struct {
	QuizID       int64
	SubmissionID int64
	Score        float64
	Total        int
	CorrectCount int
	Results      []QuestionResult
}

type DashboardEntry struct {
	Quiz         *repository.Quiz
	Total        int
	Remaining    int
	SubmissionID int64
}

func (e DashboardEntry) Completed() bool { return e.SubmissionID != 0 }

type ChoiceInput struct {
	Text      string
	IsCorrect bool
}

type QuestionInput struct {
	Text    string
	Choices []ChoiceInput
	QuizIDs []int64
}

type QuizService struct {
	quizzes     QuizStore
	submissions SubmissionStore
	publisher   EventPublisher
	pageSize    int
}

func NewQuizService(quizzes QuizStore, submissions SubmissionStore, publisher EventPublisher, pageSize int) *QuizService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &QuizService{
		quizzes:     quizzes,
		submissions: submissions,
		publisher:   publisher,
		pageSize:    pageSize,
	}
}

func (s *QuizService) getQuiz(ctx context.Context, quizID int64) (*repository.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if errors.Is(err, repository.ErrQuizNotFound) {
		return nil, ErrQuizNotFound
	}
	return quiz, err
}

// ListPage returns the 1-based page of the quiz's questions. Out of range
// page numbers yield the last page; an empty quiz yields one empty page.
func (s *QuizService) ListPage(ctx context.Context, quizID int64, page, pageSize int) (*QuestionPage, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	total, err := s.quizzes.CountQuestions(ctx, quizID, nil)
	if err != nil {
		return nil, err
	}

	numPages := (total + pageSize - 1) / pageSize
	if numPages == 0 {
		numPages = 1
	}
	if page < 1 || page > numPages {
		page = numPages
	}

	result := &QuestionPage{
		QuizID:         quizID,
		Number:         page,
		NumPages:       numPages,
		TotalQuestions: total,
	}
	if total == 0 {
		return result, nil
	}

	result.Questions, err = s.quizzes.ListQuestions(ctx, quizID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// StartAttempt discards accumulated answers and scopes state to quizID.
func (s *QuizService) StartAttempt(state *session.State, quizID int64) {
	state.ResetAnswers(quizID)
}

// SubmitPageAnswers merges question to choice pairs into state, last write
// wins per question.
func (s *QuizService) SubmitPageAnswers(state *session.State, quizID int64, pageAnswers map[int64]int64) {
	if state.Answers == nil || state.AnswersQuizID != quizID {
		state.ResetAnswers(quizID)
	}
	for questionID, choiceID := range pageAnswers {
		state.Answers[questionID] = choiceID
	}
}

func (s *QuizService) IsComplete(ctx context.Context, state *session.State, quizID int64) (bool, error) {
	if state.AnswersQuizID != quizID || len(state.Answers) == 0 {
		return false, nil
	}

	total, err := s.quizzes.CountQuestions(ctx, quizID, nil)
	if err != nil {
		return false, err
	}

	return len(state.Answers) == total, nil
}

// Finalize persists the accumulated answers as one submission and removes
// them from state.
func (s *QuizService) Finalize(ctx context.Context, state *session.State, quizID, userID int64) (*repository.QuizSubmission, error) {
	questions, err := s.quizzes.GetQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if state.AnswersQuizID != quizID || len(questions) == 0 || len(state.Answers) != len(questions) {
		return nil, ErrIncompleteSubmission
	}

	if err := checkAnswers(questions, state.Answers); err != nil {
		return nil, err
	}

	submission, err := s.submissions.CreateSubmission(ctx, userID, quizID, state.Answers)
	if err != nil {
		return nil, err
	}

	state.ClearAnswers()
	return submission, nil
}

// checkAnswers rejects any pair whose question is not in questions or whose
// choice does not belong to that question.
func checkAnswers(questions []*repository.Question, answers map[int64]int64) error {
	byID := make(map[int64]*repository.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for questionID, choiceID := range answers {
		q, ok := byID[questionID]
		if !ok || !q.HasChoice(choiceID) {
			return ErrInvalidAnswer
		}
	}
	return nil
}

// SubmitPage merges one page of answers and finalizes once every question of
// the quiz is answered. The returned submission is nil while incomplete.
func (s *QuizService) SubmitPage(ctx context.Context, state *session.State, quizID, userID int64, pageAnswers map[int64]int64) (*repository.QuizSubmission, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	questions, err := s.quizzes.GetQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := checkAnswers(questions, pageAnswers); err != nil {
		return nil, err
	}

	s.SubmitPageAnswers(state, quizID, pageAnswers)

	complete, err := s.IsComplete(ctx, state, quizID)
	if err != nil || !complete {
		return nil, err
	}

	return s.Finalize(ctx, state, quizID, userID)
}

// Score grades the user's most recent submission for the quiz.
func (s *QuizService) Score(ctx context.Context, userID, quizID int64) (*QuizResult, error) {
	if _, err := s.getQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	questions, err := s.quizzes.GetQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	result := &QuizResult{QuizID: quizID, Total: len(questions)}
	if len(questions) == 0 {
		return result, nil
	}

	submission, err := s.submissions.GetLatestSubmission(ctx, userID, quizID)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	result.SubmissionID = submission.ID

	answers, err := s.submissions.GetAnswers(ctx, submission.ID)
	if err != nil {
		return nil, err
	}
	selected := make(map[int64]int64, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.ChoiceID
	}

	for _, q := range questions {
		choiceID, ok := selected[q.ID]
		if !ok {
			return nil, ErrIncompleteSubmission
		}

		item := QuestionResult{QuestionID: q.ID, Question: q.Text}
		for _, c := range q.Choices {
			if c.ID == choiceID {
				item.SelectedChoice = c.Text
			}
		}
		if correct := q.CorrectChoice(); correct != nil {
			item.CorrectAnswer = correct.Text
			item.IsCorrect = correct.ID == choiceID
		}
		if item.IsCorrect {
			result.CorrectCount++
		}
		result.Results = append(result.Results, item)
	}

	result.Score = math.Round(float64(result.CorrectCount)/float64(result.Total)*100*100) / 100
	return result, nil
}

// Dashboard lists every quiz with how many of its questions the user's latest
// submission leaves unanswered.
func (s *QuizService) Dashboard(ctx context.Context, userID int64) ([]DashboardEntry, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]DashboardEntry, 0, len(quizzes))
	for _, quiz := range quizzes {
		entry := DashboardEntry{Quiz: quiz}

		entry.Total, err = s.quizzes.CountQuestions(ctx, quiz.ID, nil)
		if err != nil {
			return nil, err
		}
		entry.Remaining = entry.Total

		submission, err := s.submissions.GetLatestSubmission(ctx, userID, quiz.ID)
		if err != nil && !errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, err
		}
		if submission != nil {
			entry.SubmissionID = submission.ID

			answers, err := s.submissions.GetAnswers(ctx, submission.ID)
			if err != nil {
				return nil, err
			}
			answered := make([]int64, 0, len(answers))
			for _, a := range answers {
				answered = append(answered, a.QuestionID)
			}

			entry.Remaining, err = s.quizzes.CountQuestions(ctx, quiz.ID, answered)
			if err != nil {
				return nil, err
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, name string, start, end *time.Time) (*repository.Quiz, error) {
	quiz := &repository.Quiz{Name: strings.TrimSpace(name)}
	if quiz.Name == "" {
		return nil, ErrInvalidQuiz
	}
	if start != nil {
		quiz.StartTime.Time, quiz.StartTime.Valid = *start, true
	}
	if end != nil {
		quiz.EndTime.Time, quiz.EndTime.Valid = *end, true
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, ErrInvalidQuiz
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// CreateQuestion stores a question and announces it on question.created.
func (s *QuizService) CreateQuestion(ctx context.Context, in QuestionInput) (*repository.Question, error) {
	question := &repository.Question{Text: strings.TrimSpace(in.Text)}
	if question.Text == "" || len(in.Choices) < 2 {
		return nil, ErrInvalidQuestion
	}

	correct := 0
	for _, c := range in.Choices {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return nil, ErrInvalidQuestion
		}
		if c.IsCorrect {
			correct++
		}
		question.Choices = append(question.Choices, &repository.Choice{Text: text, IsCorrect: c.IsCorrect})
	}
	if correct != 1 {
		return nil, ErrInvalidQuestion
	}

	err := s.quizzes.CreateQuestion(ctx, question, in.QuizIDs)
	if errors.Is(err, repository.ErrQuizNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, messaging.QueueQuestionCreated, QuestionCreatedEvent{
		QuestionID: question.ID,
		Text:       question.Text,
	})

	return question, nil
}

func (s *QuizService) DeleteSubmission(ctx context.Context, submissionID int64) error {
	err := s.submissions.DeleteSubmission(ctx, submissionID)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		return ErrSubmissionNotFound
	}
	return err
}
