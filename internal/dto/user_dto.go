package dto

import (
	"time"

	"quiz-portal/internal/repository"
)

type UserDTO struct {
	ID        int64  `json:"id" example:"1"`
	Username  string `json:"username" example:"newuser"`
	Email     string `json:"email" example:"new@user.com"`
	FirstName string `json:"first_name" example:"Ada"`
	LastName  string `json:"last_name" example:"Lovelace"`
	CreatedAt string `json:"created_at" example:"2026-01-02T15:04:05Z"`
}

func NewUserDTO(u *repository.User) *UserDTO {
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" example:"Ada"`
	LastName  string `json:"last_name" example:"Lovelace"`
}

type UploadedFileDTO struct {
	Bucket      string `json:"bucket" example:"user-files"`
	Object      string `json:"object" example:"1/0b7c...-notes.txt"`
	Filename    string `json:"filename" example:"notes.txt"`
	Size        int64  `json:"size" example:"1024"`
	ContentType string `json:"content_type" example:"text/plain"`
}
