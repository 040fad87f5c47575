package handlers

import (
	"net/http"
	"strconv"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/middleware"
	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quiz *service.QuizService
}

func NewQuizHandler(quiz *service.QuizService) *QuizHandler {
	return &QuizHandler{
		quiz: quiz,
	}
}

// Dashboard godoc
// @Summary Quizzes and progress
// @Tags quizzes
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *QuizHandler) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	entries, err := h.quiz.Dashboard(ctx, c.GetInt64("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.DashboardResponse{
		Username: c.GetString("username"),
		Quizzes:  make([]dto.DashboardQuizDTO, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Quizzes = append(resp.Quizzes, dto.DashboardQuizDTO{
			Quiz:         dto.NewQuizDTO(e.Quiz),
			Total:        e.Total,
			Remaining:    e.Remaining,
			Completed:    e.Completed(),
			SubmissionID: e.SubmissionID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// pageNumber parses the page query parameter; anything that is not an
// integer means the first page.
func pageNumber(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}

// ListQuestions godoc
// @Summary Start an attempt and show a page of questions
// @Description Discards answers collected so far for this session
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Param page query int false "Page number"
// @Success 200 {object} dto.QuestionPageDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{id}/questions [get]
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	quizID, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrQuizNotFound)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.quiz.ListPage(ctx, quizID, pageNumber(c.DefaultQuery("page", "1")), 0)
	if err != nil {
		respondError(c, err)
		return
	}

	h.quiz.StartAttempt(middleware.State(c), quizID)

	c.JSON(http.StatusOK, dto.NewQuestionPageDTO(page))
}

// SubmitAnswers godoc
// @Summary Submit one page of answers
// @Description Finalizes the attempt once every question has an answer; otherwise returns the requested page
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.SubmitAnswersRequest true "Answers keyed by question id"
// @Success 200 {object} dto.SubmitAnswersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{id}/questions [post]
func (h *QuizHandler) SubmitAnswers(c *gin.Context) {
	quizID, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrQuizNotFound)
		return
	}

	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidAnswer)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	state := middleware.State(c)
	submission, err := h.quiz.SubmitPage(ctx, state, quizID, c.GetInt64("user_id"), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	if submission != nil {
		c.JSON(http.StatusOK, dto.SubmitAnswersResponse{
			Completed:    true,
			SubmissionID: submission.ID,
		})
		return
	}

	if req.Page == 0 {
		req.Page = 1
	}
	page, err := h.quiz.ListPage(ctx, quizID, req.Page, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitAnswersResponse{
		Answered: len(state.Answers),
		Page:     dto.NewQuestionPageDTO(page),
	})
}

// Result godoc
// @Summary Score of the latest submission
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResultDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *QuizHandler) Result(c *gin.Context) {
	quizID, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrQuizNotFound)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.quiz.Score(ctx, c.GetInt64("user_id"), quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResultDTO(result))
}
