package handlers

import (
	"log"
	"net/http"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/middleware"
	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

// LoginPage godoc
// @Summary Start a fresh session
// @Description Clears any session state before the login form is shown
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	middleware.State(c).Flush()

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Please log in.",
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Login(ctx, middleware.State(c), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := middleware.RenewSession(c); err != nil {
		log.Printf("Failed to renew session: %v", err)
		dto.JsonError(c, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		Success: true,
		Message: "Login successful.",
		User:    dto.NewUserDTO(user),
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears all session state
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(middleware.State(c))

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Logged out successfully.",
	})
}

// RegistrationStep godoc
// @Summary Current registration step
// @Description "email" until an OTP was sent, then "details"
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RegistrationStepResponse
// @Router /register [get]
func (h *AuthHandler) RegistrationStep(c *gin.Context) {
	state := middleware.State(c)
	resp := dto.RegistrationStepResponse{Step: h.auth.RegistrationStep(state)}
	if resp.Step == service.StepDetails {
		resp.Email = state.Email
	}

	c.JSON(http.StatusOK, resp)
}

// StartRegistration godoc
// @Summary Send a verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterEmailRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /register/email [post]
func (h *AuthHandler) StartRegistration(c *gin.Context) {
	var req dto.RegisterEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid email address.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.auth.StartRegistration(ctx, middleware.State(c), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "OTP sent to your email.",
	})
}

// CompleteRegistration godoc
// @Summary Create the account
// @Description Verifies the OTP and creates the user with the pending email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterCompleteRequest true "Registration details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /register/complete [post]
func (h *AuthHandler) CompleteRegistration(c *gin.Context) {
	var req dto.RegisterCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, service.UserMessage(service.ErrRegistrationFailed))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.CompleteRegistration(ctx, middleware.State(c), service.RegistrationInput{
		Username:        req.Username,
		OTP:             req.OTP,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AccountResponse{
		Success: true,
		Message: "Registration successful. You can now log in.",
		User:    dto.NewUserDTO(user),
	})
}
