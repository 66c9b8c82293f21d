package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxUserNameLength is the longest accepted user name.
const MaxUserNameLength = 100

// User is an actor that may be assigned zero or more tasks.
// Tasks holds task IDs in the order they were linked.
type User struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Tasks     []uuid.UUID `json:"tasks"`
	IsDeleted bool        `json:"isDeleted"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUser creates a new User with the given name.
// It generates a new UUID for the user ID and sets the creation/update timestamps.
func NewUser(name string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Tasks:     []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}

	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", "is required")
	}

	if utf8.RuneCountInString(u.Name) > MaxUserNameLength {
		return NewValidationError("name", fmt.Sprintf("must be at most %d characters", MaxUserNameLength))
	}

	return nil
}
