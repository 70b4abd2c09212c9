package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request the caller has to fix before retrying.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDependencyUnavailable marks a service built without a collaborator it needs.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrCredentialsRequired = fmt.Errorf("%w: credentials are required unless manual login is enabled or cookies are given", ErrInvalidInput)
)
