package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement
// Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// CreateUserRequest is the DTO for user registration.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Name     string `json:"name" validate:"required,min=1,max=128"`
}

// CreateGroupRequest is the DTO for group creation.
type CreateGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=64"`
	CreatedBy string   `json:"created_by" validate:"required"`
	Members   []string `json:"members"`
}
