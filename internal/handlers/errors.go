package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrRegistrationNotStarted),
		errors.Is(err, service.ErrRegistrationFailed),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrResetNotStarted),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidQuestion),
		errors.Is(err, service.ErrInvalidQuiz):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrQuizNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrInvalidAnswer):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrIncompleteSubmission):
		return http.StatusConflict
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrOTPDeliveryFailed):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := service.UserMessage(err)
	if status == http.StatusInternalServerError || msg == "" {
		log.Printf("Request failed: %v", err)
		dto.JsonError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	dto.JsonError(c, status, msg)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
