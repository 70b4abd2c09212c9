package session

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInit                        = crerr.New("browser session init failed")
	ErrLoginFieldNotFound          = crerr.New("login field not found")
	ErrLoginRejected               = crerr.New("login rejected")
	ErrManualLoginTimeout          = crerr.New("manual login timeout")
	ErrSessionLostDuringNavigation = crerr.New("session lost during navigation")
	ErrNotAuthenticated            = crerr.New("session not authenticated")
	ErrSessionClosed               = crerr.New("browser session closed")
)

// IsAuthError reports whether err belongs to the authentication phase.
func IsAuthError(err error) bool {
	return crerr.IsAny(err,
		ErrLoginFieldNotFound,
		ErrLoginRejected,
		ErrManualLoginTimeout,
		ErrNotAuthenticated,
	)
}

// GuardError is the per page kind failure of a guarded navigation.
type GuardError struct {
	Kind     string
	URL      string
	Attempts int
	Err      error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("guarded navigation kind=%s url=%s attempts=%d: %v", e.Kind, e.URL, e.Attempts, e.Err)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}
