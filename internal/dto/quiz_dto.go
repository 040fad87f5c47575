package dto

import (
	"time"

	"quiz-portal/internal/repository"
	"quiz-portal/internal/service"
)

type ChoiceDTO struct {
	ID   int64  `json:"id" example:"10"`
	Text string `json:"text" example:"A compiled language"`
}

// QuestionDTO never exposes which choice is correct.
type QuestionDTO struct {
	ID      int64       `json:"id" example:"1"`
	Text    string      `json:"text" example:"What is Go?"`
	Choices []ChoiceDTO `json:"choices"`
}

type QuestionPageDTO struct {
	QuizID         int64         `json:"quiz_id" example:"1"`
	Page           int           `json:"page" example:"1"`
	NumPages       int           `json:"num_pages" example:"3"`
	TotalQuestions int           `json:"total_questions" example:"5"`
	HasNext        bool          `json:"has_next" example:"true"`
	HasPrevious    bool          `json:"has_previous" example:"false"`
	Questions      []QuestionDTO `json:"questions"`
}

func NewQuestionPageDTO(p *service.QuestionPage) *QuestionPageDTO {
	out := &QuestionPageDTO{
		QuizID:         p.QuizID,
		Page:           p.Number,
		NumPages:       p.NumPages,
		TotalQuestions: p.TotalQuestions,
		HasNext:        p.HasNext(),
		HasPrevious:    p.HasPrevious(),
		Questions:      make([]QuestionDTO, 0, len(p.Questions)),
	}
	for _, q := range p.Questions {
		item := QuestionDTO{ID: q.ID, Text: q.Text, Choices: make([]ChoiceDTO, 0, len(q.Choices))}
		for _, c := range q.Choices {
			item.Choices = append(item.Choices, ChoiceDTO{ID: c.ID, Text: c.Text})
		}
		out.Questions = append(out.Questions, item)
	}
	return out
}

// SubmitAnswersRequest carries the answers of one page keyed by question id,
// plus the page to show next when the quiz is not yet complete.
type SubmitAnswersRequest struct {
	Page    int             `json:"page" example:"2"`
	Answers map[int64]int64 `json:"answers" binding:"required"`
}

type SubmitAnswersResponse struct {
	Completed    bool             `json:"completed" example:"false"`
	SubmissionID int64            `json:"submission_id,omitempty" example:"11"`
	Answered     int              `json:"answered,omitempty" example:"2"`
	Page         *QuestionPageDTO `json:"page,omitempty"`
}

type QuestionResultDTO struct {
	QuestionID     int64  `json:"question_id" example:"1"`
	Question       string `json:"question" example:"What is Go?"`
	SelectedChoice string `json:"selected_choice" example:"A compiled language"`
	CorrectAnswer  string `json:"correct_answer" example:"A compiled language"`
	IsCorrect      bool   `json:"is_correct" example:"true"`
}

type QuizResultDTO struct {
	QuizID       int64               `json:"quiz_id" example:"1"`
	SubmissionID int64               `json:"submission_id,omitempty" example:"11"`
	Score        float64             `json:"score" example:"66.67"`
	Total        int                 `json:"total" example:"3"`
	CorrectCount int                 `json:"correct_count" example:"2"`
	Results      []QuestionResultDTO `json:"results"`
}

func NewQuizResultDTO(r *service.QuizResult) *QuizResultDTO {
	out := &QuizResultDTO{
		QuizID:       r.QuizID,
		SubmissionID: r.SubmissionID,
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		Results:      make([]QuestionResultDTO, 0, len(r.Results)),
	}
	for _, item := range r.Results {
		out.Results = append(out.Results, QuestionResultDTO(item))
	}
	return out
}

type QuizDTO struct {
	ID        int64      `json:"id" example:"1"`
	Name      string     `json:"name" example:"Go basics"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewQuizDTO(q *repository.Quiz) *QuizDTO {
	out := &QuizDTO{ID: q.ID, Name: q.Name, CreatedAt: q.CreatedAt}
	if q.StartTime.Valid {
		t := q.StartTime.Time
		out.StartTime = &t
	}
	if q.EndTime.Valid {
		t := q.EndTime.Time
		out.EndTime = &t
	}
	return out
}

type DashboardQuizDTO struct {
	Quiz         *QuizDTO `json:"quiz"`
	Total        int      `json:"total_questions" example:"5"`
	Remaining    int      `json:"remaining" example:"0"`
	Completed    bool     `json:"completed" example:"true"`
	SubmissionID int64    `json:"submission_id,omitempty" example:"11"`
}

type DashboardResponse struct {
	Username string             `json:"username" example:"newuser"`
	Quizzes  []DashboardQuizDTO `json:"quizzes"`
}

type CreateQuizRequest struct {
	Name      string     `json:"name" binding:"required,max=255" example:"Go basics"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type ChoiceInputDTO struct {
	Text      string `json:"text" binding:"required,max=255" example:"A compiled language"`
	IsCorrect bool   `json:"is_correct" example:"true"`
}

type CreateQuestionRequest struct {
	Text    string           `json:"text" binding:"required,max=255" example:"What is Go?"`
	Choices []ChoiceInputDTO `json:"choices" binding:"required,dive"`
	QuizIDs []int64          `json:"quiz_ids" example:"1"`
}

type CreateQuestionResponse struct {
	ID      int64       `json:"id" example:"7"`
	Text    string      `json:"text" example:"What is Go?"`
	QuizIDs []int64     `json:"quiz_ids"`
	Choices []ChoiceDTO `json:"choices"`
}
