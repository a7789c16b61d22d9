// social/user.go
package social

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 5

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewUser builds an account record with a fresh ID. The password is set
// separately so the hash never travels through constructors.
func NewUser(name, username, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) PasswordMatches(input string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(input))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// Sanitize strips the password hash before the record leaves the service.
func (u *User) Sanitize() {
	u.Password = ""
}

func validateRegistration(name, username, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return NewError(CodeNameEmpty, "name is required")
	}
	if strings.TrimSpace(username) == "" {
		return NewError(CodeUsernameEmpty, "username is required")
	}
	if !emailPattern.MatchString(email) {
		return NewError(CodeEmailInvalid, "invalid email format")
	}
	if len(password) < minPasswordLength {
		return NewError(CodePasswordTooShort, "password must be at least 5 characters long")
	}
	return nil
}
