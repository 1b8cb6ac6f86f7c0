package handlers

import (
	"time"

	"github.com/raj-sankey/chat-st/internal/directory"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserResponse is the DTO for a single user.
type UserResponse struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a directory user onto its DTO.
func NewUserResponse(user *directory.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

// GroupResponse is the DTO for a single group.
type GroupResponse struct {
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	Admins    []string  `json:"admins"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGroupResponse maps a directory group onto its DTO.
func NewGroupResponse(group *directory.Group) *GroupResponse {
	return &GroupResponse{
		Name:      group.Name,
		Members:   group.Members,
		Admins:    group.Admins,
		CreatedBy: group.CreatedBy,
		CreatedAt: group.CreatedAt,
	}
}

// UploadResponse tells the client where its attachment landed. The URL is
// what goes into an envelope's fileUrl field.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
