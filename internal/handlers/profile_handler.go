package handlers

import (
	"fmt"
	"net/http"

	"quiz-portal/internal/dto"
	"quiz-portal/internal/middleware"
	"quiz-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profile *service.ProfileService
}

func NewProfileHandler(profile *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profile: profile,
	}
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Success 200 {object} dto.UserDTO
// @Failure 401 {object} dto.ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.profile.GetProfile(ctx, c.GetInt64("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserDTO(user))
}

// UpdateProfile godoc
// @Summary Update first and last name
// @Tags profile
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Names"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, service.UserMessage(service.ErrInvalidProfile))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.profile.UpdateProfile(ctx, c.GetInt64("user_id"), req.FirstName, req.LastName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		Success: true,
		Message: "Profile updated successfully.",
		User:    dto.NewUserDTO(user),
	})
}

// RequestPasswordReset godoc
// @Summary Mail a password reset OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Username"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /password-reset [post]
func (h *ProfileHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sentTo, err := h.profile.RequestPasswordReset(ctx, middleware.State(c), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("OTP sent to %s.", sentTo),
	})
}

// ConfirmPasswordReset godoc
// @Summary Set a new password
// @Description Verifies the reset OTP, sets the password and ends the session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetVerifyRequest true "OTP and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /password-reset/verify [post]
func (h *ProfileHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.profile.ConfirmPasswordReset(ctx, middleware.State(c), req.OTP, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Password reset successful. You can now log in.",
	})
}

// UploadFile godoc
// @Summary Upload a file
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File, at most 5 MB"
// @Success 201 {object} dto.UploadedFileDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /profile/files [post]
func (h *ProfileHandler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid form submission. Try again.")
		return
	}
	if header.Size > service.MaxUploadSize {
		respondError(c, service.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid form submission. Try again.")
		return
	}
	defer file.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	uploaded, err := h.profile.UploadFile(ctx, c.GetInt64("user_id"), header.Filename, header.Size, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadedFileDTO{
		Bucket:      uploaded.Bucket,
		Object:      uploaded.Object,
		Filename:    uploaded.Filename,
		Size:        uploaded.Size,
		ContentType: uploaded.ContentType,
	})
}
