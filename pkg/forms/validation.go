// Package forms validates user input from live view forms.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

// Validator validates a field value.
type Validator interface {
	// Validate checks if the value is valid.
	Validate(value string) error

	// Message returns the error message shown to the user.
	Message() string
}

// FieldError is a failed validation of one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Validate runs the validators in order and returns the first failure.
func Validate(field, value string, validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(value); err != nil {
			return &FieldError{Field: field, Message: v.Message()}
		}
	}
	return nil
}

// RequiredValidator validates that a field is not blank.
type RequiredValidator struct{}

func (v RequiredValidator) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	return nil
}

func (v RequiredValidator) Message() string {
	return "This field is required"
}

// URLValidator accepts anything that becomes an http(s) URL once a scheme
// is prepended. Empty values pass; combine with Required.
type URLValidator struct{}

func (v URLValidator) Validate(value string) error {
	if value == "" {
		return nil
	}
	if _, ok := NormalizeURL(value); !ok {
		return errors.New("invalid URL")
	}
	return nil
}

func (v URLValidator) Message() string {
	return "Please enter a valid URL"
}

// MaxLengthValidator validates maximum string length in runes.
type MaxLengthValidator struct {
	Max int
}

func (v MaxLengthValidator) Validate(value string) error {
	if utf8.RuneCountInString(value) > v.Max {
		return fmt.Errorf("too long (max %d)", v.Max)
	}
	return nil
}

func (v MaxLengthValidator) Message() string {
	return fmt.Sprintf("Must be at most %d characters", v.Max)
}

// Required returns a required validator.
func Required() Validator {
	return RequiredValidator{}
}

// URL returns a URL validator.
func URL() Validator {
	return URLValidator{}
}

// MaxLength returns a maximum length validator.
func MaxLength(n int) Validator {
	return MaxLengthValidator{Max: n}
}
