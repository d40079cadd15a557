package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthenticationInvalid matches responses whose credential was missing,
	// expired or rejected (401).
	ErrAuthenticationInvalid = errors.New("authentication invalid")
	// ErrAuthorizationDenied matches responses for a valid credential with
	// insufficient privilege (403).
	ErrAuthorizationDenied   = errors.New("authorization denied")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderCancelled   = errors.New("sign-in cancelled")
	ErrAddressInUse        = errors.New("address already in use")
	ErrWeakSecret          = errors.New("password too weak")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// HTTPError is returned for every non-2xx backend response. 401 and 403
// unwrap to ErrAuthenticationInvalid and ErrAuthorizationDenied; all other
// statuses are left for the caller to interpret.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthenticationInvalid
	case http.StatusForbidden:
		return ErrAuthorizationDenied
	default:
		return nil
	}
}

// ProviderErrorKind classifies identity-provider failures.
type ProviderErrorKind string

const (
	ProviderInvalidCredentials ProviderErrorKind = "invalid_credentials"
	ProviderCancelled          ProviderErrorKind = "cancelled"
	ProviderAddressInUse       ProviderErrorKind = "address_in_use"
	ProviderWeakSecret         ProviderErrorKind = "weak_secret"
	ProviderUnavailable        ProviderErrorKind = "unavailable"
)

// ProviderError reports a failed identity-provider operation. It is surfaced
// to the initiating command or page and never retried automatically.
type ProviderError struct {
	Op   string
	Kind ProviderErrorKind
	Err  error
}

// NewProviderError wraps err for operation op.
func NewProviderError(op string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Op: op, Kind: kind, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	errs := []error{e.kindSentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *ProviderError) kindSentinel() error {
	switch e.Kind {
	case ProviderInvalidCredentials:
		return ErrInvalidCredentials
	case ProviderCancelled:
		return ErrProviderCancelled
	case ProviderAddressInUse:
		return ErrAddressInUse
	case ProviderWeakSecret:
		return ErrWeakSecret
	default:
		return ErrProviderUnavailable
	}
}

// UserMessage is the inline message shown where the action was taken.
func (e *ProviderError) UserMessage() string {
	switch e.Kind {
	case ProviderInvalidCredentials:
		return "Email or password is incorrect."
	case ProviderCancelled:
		return "Sign-in was cancelled."
	case ProviderAddressInUse:
		return "An account with this email already exists."
	case ProviderWeakSecret:
		return "Password must be at least 6 characters and mix upper case, lower case and digits."
	default:
		return "The sign-in service is unavailable. Please try again."
	}
}
