// Package usecase implements the business logic for the auth feature.
package usecase

import "shop_backend/internal/shared/apperr"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = apperr.NotFound("User not found.")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = &apperr.Error{
		Kind:    apperr.KindConflict,
		Message: "User with this email already exists.",
		Fields:  map[string][]string{"email": {"User with this email already exists."}},
	}

	// ErrInvalidCredentials is returned for an unknown email, a wrong password or an inactive account.
	ErrInvalidCredentials = apperr.Validation("Invalid credentials")

	// ErrOldPasswordIncorrect is returned when the current password does not match.
	ErrOldPasswordIncorrect = apperr.Validation("Old password is incorrect")

	// ErrPasswordTooShort is returned when a password is shorter than minPasswordLength.
	ErrPasswordTooShort = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "Invalid input.",
		Fields:  map[string][]string{"password": {"Ensure this field has at least 6 characters."}},
	}
)
