package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/raj-sankey/chat-st/internal/directory"
)

// Directory is the subset of the directory store the HTTP surface needs.
type Directory interface {
	CreateUser(ctx context.Context, username, name string) (*directory.User, error)
	ListUsers(ctx context.Context) ([]directory.User, error)
	CreateGroup(ctx context.Context, name, createdBy string, members []string) (*directory.Group, error)
	ListGroupsForUser(ctx context.Context, username string) ([]directory.Group, error)
}

// DirectoryHandler serves the user and group registry endpoints.
type DirectoryHandler struct {
	dir Directory
}

// NewDirectoryHandler creates a DirectoryHandler.
func NewDirectoryHandler(dir Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// CreateUser handles POST /api/users.
func (h *DirectoryHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.dir.CreateUser(c.Request().Context(), req.Username, req.Name)
	if err != nil {
		if errors.Is(err, directory.ErrUserExists) {
			return c.JSON(http.StatusConflict, ErrorResponse{
				Code:    "user_exists",
				Message: "That username is already taken.",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, NewUserResponse(user))
}

// ListUsers handles GET /api/users.
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	users, err := h.dir.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}

	response := make([]*UserResponse, len(users))
	for i := range users {
		response[i] = NewUserResponse(&users[i])
	}
	return c.JSON(http.StatusOK, response)
}

// CreateGroup handles POST /api/groups.
func (h *DirectoryHandler) CreateGroup(c echo.Context) error {
	var req CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := h.dir.CreateGroup(c.Request().Context(), req.Name, req.CreatedBy, req.Members)
	if err != nil {
		if errors.Is(err, directory.ErrGroupExists) {
			return c.JSON(http.StatusConflict, ErrorResponse{
				Code:    "group_exists",
				Message: "That group name is already taken.",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create group")
	}

	return c.JSON(http.StatusCreated, NewGroupResponse(group))
}

// ListUserGroups handles GET /api/users/:username/groups. Clients join
// each returned group as a room after announcing themselves.
func (h *DirectoryHandler) ListUserGroups(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username is required")
	}

	groups, err := h.dir.ListGroupsForUser(c.Request().Context(), username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list groups")
	}

	response := make([]*GroupResponse, len(groups))
	for i := range groups {
		response[i] = NewGroupResponse(&groups[i])
	}
	return c.JSON(http.StatusOK, response)
}
