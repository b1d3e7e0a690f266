package envname

import (
	"errors"
	"fmt"
)

// ErrInvalidName matches every name validation error through errors.Is.
var ErrInvalidName = errors.New("invalid environment name")

type EmptyNameError struct{}

func (err EmptyNameError) Error() string {
	return "Environment name must not be empty."
}

func (err EmptyNameError) Is(target error) bool {
	return target == ErrInvalidName
}

type NameTooLongError struct {
	Name   string
	Length int
}

func (err NameTooLongError) Error() string {
	return fmt.Sprintf("Environment name too long: %d characters. Limit: %d.", err.Length, MaxLength)
}

func (err NameTooLongError) Is(target error) bool {
	return target == ErrInvalidName
}

type TooManyTokensError struct {
	Name  string
	Count int
}

func (err TooManyTokensError) Error() string {
	return fmt.Sprintf("Incorrect number of tokens in environment name %q. Should be 1 or 2 tokens, not %d.", err.Name, err.Count)
}

func (err TooManyTokensError) Is(target error) bool {
	return target == ErrInvalidName
}

type InvalidVersionTokenError struct {
	Name  string
	Token string
}

func (err InvalidVersionTokenError) Error() string {
	return fmt.Sprintf("Environment version is limited to a single letter: %q", err.Token)
}

func (err InvalidVersionTokenError) Is(target error) bool {
	return target == ErrInvalidName
}
