// errors.go - Error kinds shared by every layer
//
// Layers wrap a kind together with the underlying cause:
//
//	fmt.Errorf("move upload: %w: %w", apperr.ErrStorage, err)
//
// and handlers decide the response with errors.Is.

package apperr

import "errors"

var (
	// ErrValidation is bad form input; the form is shown again with a flash.
	ErrValidation = errors.New("validation failed")
	// ErrAuthFailure is a bad email/password pair.
	ErrAuthFailure = errors.New("invalid email or password")
	// ErrNotFoundOrExpired is an unknown or expired password reset token.
	ErrNotFoundOrExpired = errors.New("password reset token is invalid or has expired")
	// ErrNotFound is a missing record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is a signup or profile change onto a taken email.
	ErrDuplicateEmail = errors.New("account with that email address already exists")
	// ErrStorage is a failed filesystem or object store operation.
	ErrStorage = errors.New("storage error")
	// ErrPersistence is a failed database operation.
	ErrPersistence = errors.New("persistence error")
	// ErrCSRFMismatch is a missing or invalid CSRF token.
	ErrCSRFMismatch = errors.New("form tampered with")
	// ErrDataUnavailable is a candidate list that could not be loaded.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrPricing is a price that could not be resolved.
	ErrPricing = errors.New("pricing error")
)

// Kind returns the first known kind found in err's chain, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrAuthFailure,
		ErrNotFoundOrExpired,
		ErrNotFound,
		ErrDuplicateEmail,
		ErrStorage,
		ErrPersistence,
		ErrCSRFMismatch,
		ErrDataUnavailable,
		ErrPricing,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
