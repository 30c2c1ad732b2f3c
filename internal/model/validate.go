package model

import (
	"net/mail"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	minNicknameLength = 2
	maxNicknameLength = 50
)

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (r RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	if !validEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 6 characters long"})
	}
	if r.Nickname != "" {
		if n := utf8.RuneCountInString(r.Nickname); n < minNicknameLength || n > maxNicknameLength {
			errs = append(errs, FieldError{Field: "nickname", Message: "must be between 2 and 50 characters long"})
		}
	}
	return errs
}

func (r LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if !validEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "is required"})
	}
	return errs
}

func (r GoogleAuthRequest) Validate() []FieldError {
	if r.Credential == "" && r.Code == "" {
		return []FieldError{{Field: "credential", Message: "credential or code is required"}}
	}
	return nil
}

func (r RefreshRequest) Validate() []FieldError {
	if r.RefreshToken == "" {
		return []FieldError{{Field: "refresh_token", Message: "is required"}}
	}
	return nil
}

func (r LogoutRequest) Validate() []FieldError {
	if r.RefreshToken == "" {
		return []FieldError{{Field: "refresh_token", Message: "is required"}}
	}
	return nil
}

func (r SendPasswordResetRequest) Validate() []FieldError {
	if !validEmail(r.Email) {
		return []FieldError{{Field: "email", Message: "must be a valid email address"}}
	}
	return nil
}

func (r ChangePasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "is required"})
	}
	if utf8.RuneCountInString(r.NewPassword) < minPasswordLength {
		errs = append(errs, FieldError{Field: "newPassword", Message: "must be at least 6 characters long"})
	}
	return errs
}
