package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quiz-portal/internal/session"
	"quiz-portal/pkg/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quizFixture struct {
	svc         *QuizService
	quizzes     *fakeQuizzes
	submissions *fakeSubmissions
	publisher   *fakePublisher
}

func newQuizFixture() *quizFixture {
	f := &quizFixture{
		quizzes:     newFakeQuizzes(),
		submissions: newFakeSubmissions(),
		publisher:   &fakePublisher{},
	}
	f.svc = NewQuizService(f.quizzes, f.submissions, f.publisher, 2)
	return f
}

func questionIDs(page *QuestionPage) []int64 {
	var ids []int64
	for _, q := range page.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

// allCorrect answers every question of the page with its correct choice.
func allCorrect(page *QuestionPage) map[int64]int64 {
	answers := make(map[int64]int64)
	for _, q := range page.Questions {
		answers[q.ID] = q.CorrectChoice().ID
	}
	return answers
}

func TestListPagePagination(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 5)
	ctx := context.Background()

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantIDs  []int64
	}{
		{"first", 1, 1, []int64{1, 2}},
		{"middle", 2, 2, []int64{3, 4}},
		{"last partial", 3, 3, []int64{5}},
		{"beyond last clamps", 9, 3, []int64{5}},
		{"below first yields last", 0, 3, []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListPage(ctx, quiz.ID, tt.page, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Number)
			assert.Equal(t, 3, page.NumPages)
			assert.Equal(t, 5, page.TotalQuestions)
			assert.Equal(t, tt.wantIDs, questionIDs(page))
		})
	}
}

func TestListPageEmptyQuiz(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Empty", 0)

	page, err := f.svc.ListPage(context.Background(), quiz.ID, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Empty(t, page.Questions)
	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrevious())
}

func TestListPageUnknownQuiz(t *testing.T) {
	f := newQuizFixture()
	_, err := f.svc.ListPage(context.Background(), 404, 1, 2)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitPageAnswersIsIdempotent(t *testing.T) {
	f := newQuizFixture()
	state := session.New()
	f.svc.StartAttempt(state, 1)

	page := map[int64]int64{1: 10, 2: 21}
	f.svc.SubmitPageAnswers(state, 1, page)
	first := map[int64]int64{}
	for k, v := range state.Answers {
		first[k] = v
	}

	f.svc.SubmitPageAnswers(state, 1, page)
	assert.Equal(t, first, state.Answers)
}

func TestSubmitPageAnswersLastWriteWins(t *testing.T) {
	f := newQuizFixture()
	state := session.New()
	f.svc.StartAttempt(state, 1)

	f.svc.SubmitPageAnswers(state, 1, map[int64]int64{1: 10, 2: 20})
	f.svc.SubmitPageAnswers(state, 1, map[int64]int64{1: 11})
	assert.Equal(t, map[int64]int64{1: 11, 2: 20}, state.Answers)
}

func TestSubmitPageAnswersDropsOtherQuiz(t *testing.T) {
	f := newQuizFixture()
	state := session.New()
	f.svc.StartAttempt(state, 1)
	f.svc.SubmitPageAnswers(state, 1, map[int64]int64{1: 10})

	f.svc.SubmitPageAnswers(state, 2, map[int64]int64{7: 70})
	assert.Equal(t, map[int64]int64{7: 70}, state.Answers)
	assert.Equal(t, int64(2), state.AnswersQuizID)
}

func TestStartAttemptResetsAnswers(t *testing.T) {
	f := newQuizFixture()
	state := session.New()
	f.svc.StartAttempt(state, 1)
	f.svc.SubmitPageAnswers(state, 1, map[int64]int64{1: 10})

	f.svc.StartAttempt(state, 1)
	assert.Empty(t, state.Answers)
}

func TestIsComplete(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 3)
	ctx := context.Background()
	state := session.New()
	f.svc.StartAttempt(state, quiz.ID)

	complete, err := f.svc.IsComplete(ctx, state, quiz.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{1: 10, 2: 20})
	complete, err = f.svc.IsComplete(ctx, state, quiz.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{3: 30})
	complete, err = f.svc.IsComplete(ctx, state, quiz.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestFinalizePersistsOneAnswerPerQuestion(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 3)
	ctx := context.Background()
	state := session.New()
	f.svc.StartAttempt(state, quiz.ID)
	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{1: 10, 2: 21, 3: 30})

	submission, err := f.svc.Finalize(ctx, state, quiz.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, state.Answers)

	answers, err := f.submissions.GetAnswers(ctx, submission.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)

	seen := map[int64]bool{}
	for _, a := range answers {
		assert.Equal(t, submission.ID, a.SubmissionID)
		assert.False(t, seen[a.QuestionID], "duplicate answer for question %d", a.QuestionID)
		seen[a.QuestionID] = true
	}
}

func TestFinalizeRejectsCrossQuizChoice(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 2)
	other := f.quizzes.addQuiz("SQL", 1)
	ctx := context.Background()
	state := session.New()

	f.svc.StartAttempt(state, quiz.ID)
	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{1: 10, 2: 30})
	_, err := f.svc.Finalize(ctx, state, quiz.ID, 7)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	f.svc.StartAttempt(state, quiz.ID)
	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{1: 10, 3: 30})
	_, err = f.svc.Finalize(ctx, state, quiz.ID, 7)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	assert.Zero(t, f.submissions.createCalls)
	_, err = f.submissions.GetLatestSubmission(ctx, 7, other.ID)
	assert.Error(t, err)
}

func TestFinalizeStorageFailureKeepsAnswers(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 1)
	f.submissions.createErr = errBoom
	state := session.New()
	f.svc.StartAttempt(state, quiz.ID)
	f.svc.SubmitPageAnswers(state, quiz.ID, map[int64]int64{1: 10})

	_, err := f.svc.Finalize(context.Background(), state, quiz.ID, 7)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, map[int64]int64{1: 10}, state.Answers)
}

func TestSubmitPageRejectsForeignAnswersWithoutMutation(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 2)
	ctx := context.Background()
	state := session.New()
	f.svc.StartAttempt(state, quiz.ID)

	for _, page := range []map[int64]int64{{1: 10, 999: 1}, {1: 10, 2: 999}} {
		submission, err := f.svc.SubmitPage(ctx, state, quiz.ID, 7, page)
		assert.ErrorIs(t, err, ErrInvalidAnswer)
		assert.Nil(t, submission)
		assert.Empty(t, state.Answers)
	}

	submission, err := f.svc.SubmitPage(ctx, state, quiz.ID, 7, map[int64]int64{2: 20})
	require.NoError(t, err)
	assert.Nil(t, submission)

	submission, err = f.svc.SubmitPage(ctx, state, quiz.ID, 7, map[int64]int64{1: 10})
	require.NoError(t, err)
	require.NotNil(t, submission)
	assert.Equal(t, 1, f.submissions.createCalls)
}

func TestFivePageQuizFinalizesOnlyAfterLastPage(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 5)
	ctx := context.Background()
	state := session.New()
	const userID = 7

	f.svc.StartAttempt(state, quiz.ID)
	for pageNumber := 1; pageNumber <= 3; pageNumber++ {
		page, err := f.svc.ListPage(ctx, quiz.ID, pageNumber, 0)
		require.NoError(t, err)

		submission, err := f.svc.SubmitPage(ctx, state, quiz.ID, userID, allCorrect(page))
		require.NoError(t, err)

		if pageNumber < 3 {
			assert.Nil(t, submission, "finalized early on page %d", pageNumber)
			assert.Zero(t, f.submissions.createCalls)
		} else {
			require.NotNil(t, submission)
		}
	}

	assert.Equal(t, 1, f.submissions.createCalls)

	result, err := f.svc.Score(ctx, userID, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, result.Total, result.CorrectCount)
}

func TestScorePartial(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 3)
	ctx := context.Background()
	_, err := f.submissions.CreateSubmission(ctx, 7, quiz.ID, map[int64]int64{1: 10, 2: 21, 3: 31})
	require.NoError(t, err)

	result, err := f.svc.Score(ctx, 7, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.33, result.Score)
	assert.Equal(t, 1, result.CorrectCount)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].IsCorrect)
	assert.Equal(t, "wrong", result.Results[1].SelectedChoice)
	assert.Equal(t, "right", result.Results[1].CorrectAnswer)
}

func TestScoreUsesLatestSubmission(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 2)
	ctx := context.Background()
	_, err := f.submissions.CreateSubmission(ctx, 7, quiz.ID, map[int64]int64{1: 11, 2: 21})
	require.NoError(t, err)
	latest, err := f.submissions.CreateSubmission(ctx, 7, quiz.ID, map[int64]int64{1: 10, 2: 20})
	require.NoError(t, err)

	result, err := f.svc.Score(ctx, 7, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, result.SubmissionID)
	assert.Equal(t, 100.0, result.Score)
}

func TestScoreZeroQuestions(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Empty", 0)

	result, err := f.svc.Score(context.Background(), 7, quiz.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Zero(t, result.Total)
}

func TestScoreMissingAnswerFails(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 3)
	ctx := context.Background()
	_, err := f.submissions.CreateSubmission(ctx, 7, quiz.ID, map[int64]int64{1: 10, 2: 20})
	require.NoError(t, err)

	_, err = f.svc.Score(ctx, 7, quiz.ID)
	assert.ErrorIs(t, err, ErrIncompleteSubmission)
}

func TestScoreWithoutSubmission(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 1)

	_, err := f.svc.Score(context.Background(), 7, quiz.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = f.svc.Score(context.Background(), 7, 404)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestDashboard(t *testing.T) {
	f := newQuizFixture()
	done := f.quizzes.addQuiz("Done", 2)
	f.quizzes.addQuiz("Fresh", 3)
	ctx := context.Background()
	submission, err := f.submissions.CreateSubmission(ctx, 7, done.ID, map[int64]int64{1: 10, 2: 20})
	require.NoError(t, err)

	entries, err := f.svc.Dashboard(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Done", entries[0].Quiz.Name)
	assert.True(t, entries[0].Completed())
	assert.Equal(t, submission.ID, entries[0].SubmissionID)
	assert.Equal(t, 2, entries[0].Total)
	assert.Zero(t, entries[0].Remaining)

	assert.False(t, entries[1].Completed())
	assert.Equal(t, 3, entries[1].Remaining)
}

func TestCreateQuiz(t *testing.T) {
	f := newQuizFixture()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	quiz, err := f.svc.CreateQuiz(context.Background(), " Go ", &start, &end)
	require.NoError(t, err)
	assert.Equal(t, "Go", quiz.Name)
	assert.True(t, quiz.StartTime.Valid)
	assert.NotZero(t, quiz.ID)

	_, err = f.svc.CreateQuiz(context.Background(), "  ", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuiz)

	_, err = f.svc.CreateQuiz(context.Background(), "Backwards", &end, &start)
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}

func TestCreateQuestionPublishesEvent(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 0)

	question, err := f.svc.CreateQuestion(context.Background(), QuestionInput{
		Text:    "What does defer do?",
		Choices: []ChoiceInput{{Text: "Delays a call", IsCorrect: true}, {Text: "Nothing"}},
		QuizIDs: []int64{quiz.ID},
	})
	require.NoError(t, err)
	assert.NotZero(t, question.ID)
	assert.Len(t, f.quizzes.questions[quiz.ID], 1)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, messaging.QueueQuestionCreated, f.publisher.events[0].queue)
	var event QuestionCreatedEvent
	require.NoError(t, json.Unmarshal(f.publisher.events[0].body, &event))
	assert.Equal(t, question.ID, event.QuestionID)
	assert.Equal(t, "What does defer do?", event.Text)
}

func TestCreateQuestionValidation(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 0)
	ctx := context.Background()

	invalid := []QuestionInput{
		{Text: "", Choices: []ChoiceInput{{Text: "a", IsCorrect: true}, {Text: "b"}}},
		{Text: "one choice", Choices: []ChoiceInput{{Text: "a", IsCorrect: true}}},
		{Text: "no correct", Choices: []ChoiceInput{{Text: "a"}, {Text: "b"}}},
		{Text: "two correct", Choices: []ChoiceInput{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}},
		{Text: "blank choice", Choices: []ChoiceInput{{Text: "a", IsCorrect: true}, {Text: " "}}},
	}
	for _, in := range invalid {
		in.QuizIDs = []int64{quiz.ID}
		_, err := f.svc.CreateQuestion(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidQuestion, in.Text)
	}

	_, err := f.svc.CreateQuestion(ctx, QuestionInput{
		Text:    "orphan",
		Choices: []ChoiceInput{{Text: "a", IsCorrect: true}, {Text: "b"}},
		QuizIDs: []int64{404},
	})
	assert.ErrorIs(t, err, ErrQuizNotFound)
	assert.Empty(t, f.publisher.events)
}

func TestDeleteSubmission(t *testing.T) {
	f := newQuizFixture()
	quiz := f.quizzes.addQuiz("Go", 1)
	ctx := context.Background()
	submission, err := f.submissions.CreateSubmission(ctx, 7, quiz.ID, map[int64]int64{1: 10})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSubmission(ctx, submission.ID))
	answers, err := f.submissions.GetAnswers(ctx, submission.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)

	assert.ErrorIs(t, f.svc.DeleteSubmission(ctx, submission.ID), ErrSubmissionNotFound)
}
