// Package directory persists the user and group records behind the chat
// surface. Presence is deliberately not stored here: who is online lives
// only in the server's in-memory session registry, while the directory
// answers who exists and which groups they belong to.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raj-sankey/chat-st/internal/database"
)

var (
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("directory: user already exists")
	// ErrGroupExists is returned when a group name is already taken.
	ErrGroupExists = errors.New("directory: group already exists")
)

// User is a registered chat identity. Usernames are the routing handles
// clients announce on join.
type User struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Username  string                  `json:"username"`
	Name      string                  `json:"name"`
	CreatedAt time.Time               `json:"created_at"`
}

// Group is a named room with a persistent member list. The creator is
// always a member and the sole initial admin.
type Group struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Name      string                  `json:"name"`
	Members   []string                `json:"members"`
	Admins    []string                `json:"admins"`
	CreatedBy string                  `json:"created_by"`
	CreatedAt time.Time               `json:"created_at"`
}

// Store runs directory queries against SurrealDB.
type Store struct {
	db *surrealdb.DB
}

// NewStore creates a directory store over an established connection.
func NewStore(db *surrealdb.DB) *Store {
	return &Store{db: db}
}

// CreateUser registers a username with a display name. Registering a
// taken username returns ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, username, name string) (*User, error) {
	existing, err := s.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	user := User{Username: username, Name: name, CreatedAt: time.Now().UTC()}
	created, err := database.QueryOne[User](ctx, s.db, "CREATE user CONTENT $data", map[string]any{"data": user})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindUser returns the user with the given username, or nil, nil.
func (s *Store) FindUser(ctx context.Context, username string) (*User, error) {
	user, err := database.QueryOne[User](ctx, s.db,
		"SELECT * FROM user WHERE username = $username",
		map[string]any{"username": username})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListUsers returns registered users, username-ascending, capped at 100.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	users, err := database.Query[User](ctx, s.db, "SELECT * FROM user ORDER BY username LIMIT 100", nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateGroup creates a named group. The creator is added to members and
// admins whether or not the caller listed them.
func (s *Store) CreateGroup(ctx context.Context, name, createdBy string, members []string) (*Group, error) {
	existing, err := s.FindGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrGroupExists
	}

	group := Group{
		Name:      name,
		Members:   ensureMember(members, createdBy),
		Admins:    []string{createdBy},
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	created, err := database.QueryOne[Group](ctx, s.db, "CREATE group CONTENT $data", map[string]any{"data": group})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return created, nil
}

// FindGroup returns the group with the given name, or nil, nil.
func (s *Store) FindGroup(ctx context.Context, name string) (*Group, error) {
	group, err := database.QueryOne[Group](ctx, s.db,
		"SELECT * FROM group WHERE name = $name",
		map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

// ListGroupsForUser returns every group the username is a member of. A
// client joins each of these as rooms after announcing itself.
func (s *Store) ListGroupsForUser(ctx context.Context, username string) ([]Group, error) {
	groups, err := database.Query[Group](ctx, s.db,
		"SELECT * FROM group WHERE $username IN members ORDER BY name",
		map[string]any{"username": username})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func ensureMember(members []string, member string) []string {
	for _, m := range members {
		if m == member {
			return members
		}
	}
	return append(members, member)
}
