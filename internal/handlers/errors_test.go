package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		service.ErrInvalidOTP:         http.StatusBadRequest,
		service.ErrInvalidCredentials: http.StatusUnauthorized,
		service.ErrQuizNotFound:       http.StatusNotFound,
		service.ErrInvalidAnswer:      http.StatusNotFound,
		service.ErrUsernameTaken:      http.StatusConflict,
		service.ErrFileTooLarge:       http.StatusRequestEntityTooLarge,
		service.ErrOTPDeliveryFailed:  http.StatusBadGateway,
		service.ErrStorageUnavailable: http.StatusServiceUnavailable,
	}
	for err, want := range cases {
		assert.Equal(t, want, errorStatus(err), err.Error())
	}

	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("connection refused")))

	wrapped := fmt.Errorf("finalize: %w", service.ErrIncompleteSubmission)
	assert.Equal(t, http.StatusConflict, errorStatus(wrapped))
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, errors.New("pq: relation \"users\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]int64{"12": 12, "0": 0, "-3": 0, "x": 0, "": 0} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}

		id, ok := parseID(c)
		assert.Equal(t, want, id, raw)
		assert.Equal(t, want != 0, ok, raw)
	}
}
