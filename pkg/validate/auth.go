package validate

import (
	"strings"

	"github.com/modelgov/modelgov/pkg/model"
)

// Registration is a signup form payload.
type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	Role            string `json:"role"`
}

// Login validates a credential payload.
func Login(email, password string) Errors {
	var errs Errors
	if !emailPattern.MatchString(email) {
		errs.add("email", "please enter a valid email address")
	}
	errs.checkPassword("password", password)
	return errs
}

// Register validates a signup payload, including the password-confirmation
// cross-field rule.
func Register(r Registration) Errors {
	errs := Login(r.Email, r.Password)

	switch {
	case len(r.FullName) < 2:
		errs.add("fullName", "full name must be at least 2 characters")
	case len(r.FullName) > 50:
		errs.add("fullName", "full name must not exceed 50 characters")
	}

	if r.Role != "" && !model.Role(r.Role).Valid() {
		errs.add("role", "role must be one of admin, editor, viewer")
	}

	if r.ConfirmPassword != r.Password {
		errs.add("confirmPassword", "passwords do not match")
	}

	return errs
}

// Password validates a password on its own, for change and reset flows.
func Password(password string) Errors {
	var errs Errors
	errs.checkPassword("newPassword", password)
	return errs
}

func (e *Errors) checkPassword(field, password string) {
	if len(password) < 8 {
		e.add(field, "password must be at least 8 characters")
		return
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		e.add(field, "password must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	}
}
