package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrPeriodClosed rejects writes dated into an already-closed month.
	ErrPeriodClosed = errors.New("periode sudah ditutup")
)

// UserSafeMessage returns an error message suitable for end users. Wrapped
// infrastructure errors keep their text; a nil error yields an empty string.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
