package handlers

import (
	"net/http"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler manages quiz content. Routes are guarded by middleware.AdminKey.
type AdminHandler struct {
	quiz *service.QuizService
}

func NewAdminHandler(quiz *service.QuizService) *AdminHandler {
	return &AdminHandler{
		quiz: quiz,
	}
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body dto.CreateQuizRequest true "Quiz"
// @Success 201 {object} dto.QuizDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/quizzes [post]
func (h *AdminHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidQuiz)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	quiz, err := h.quiz.CreateQuiz(ctx, req.Name, req.StartTime, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizDTO(quiz))
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Stores the question with its choices and emails every user about it
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body dto.CreateQuestionRequest true "Question"
// @Success 201 {object} dto.CreateQuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions [post]
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidQuestion)
		return
	}

	in := service.QuestionInput{Text: req.Text, QuizIDs: req.QuizIDs}
	for _, choice := range req.Choices {
		in.Choices = append(in.Choices, service.ChoiceInput{Text: choice.Text, IsCorrect: choice.IsCorrect})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	question, err := h.quiz.CreateQuestion(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.CreateQuestionResponse{
		ID:      question.ID,
		Text:    question.Text,
		QuizIDs: req.QuizIDs,
		Choices: make([]dto.ChoiceDTO, 0, len(question.Choices)),
	}
	for _, choice := range question.Choices {
		resp.Choices = append(resp.Choices, dto.ChoiceDTO{ID: choice.ID, Text: choice.Text})
	}

	c.JSON(http.StatusCreated, resp)
}

// DeleteSubmission godoc
// @Summary Delete a submission and its answers
// @Tags admin
// @Produce json
// @Security AdminKey
// @Param id path int true "Submission ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/submissions/{id} [delete]
func (h *AdminHandler) DeleteSubmission(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrSubmissionNotFound)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.quiz.DeleteSubmission(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Submission deleted.",
	})
}
