package entity

import (
	"errors"
	"fmt"
)

// Error kinds reported by the wallet session. Match them with errors.Is.
var (
	ErrProviderUnavailable = errors.New("wallet provider not detected")
	ErrNoAccountAuthorized = errors.New("no account authorized")
	ErrConnectionFailed    = errors.New("failed to connect wallet")
	ErrNotConnected        = errors.New("connect a wallet first")
	ErrFetchFailed         = errors.New("failed to fetch token balances")
)

// SessionError is a session-level failure of one of the kinds above,
// optionally carrying the lower-level cause.
type SessionError struct {
	Kind error
	Err  error
}

// NewSessionError wraps cause (may be nil) into an error of the given kind.
func NewSessionError(kind, cause error) *SessionError {
	return &SessionError{Kind: kind, Err: cause}
}

func (e *SessionError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *SessionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TokenFetchError is a failure contained to a single token.
type TokenFetchError struct {
	TokenName       string
	ContractAddress string
	Err             error
}

func (e *TokenFetchError) Error() string {
	return fmt.Sprintf("failed to fetch token %s (%s): %v", e.TokenName, e.ContractAddress, e.Err)
}

func (e *TokenFetchError) Unwrap() error {
	return e.Err
}

var kinds = []error{
	ErrProviderUnavailable,
	ErrNoAccountAuthorized,
	ErrConnectionFailed,
	ErrNotConnected,
	ErrFetchFailed,
}

// KindOf returns the session error kind of err, or nil when err is not one of them.
// The outermost SessionError decides, so a fetch failure caused by a missing
// provider is still a fetch failure.
func KindOf(err error) error {
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// UserMessage maps an error to the single line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case ErrProviderUnavailable:
		return "Wallet provider not detected!"
	case ErrNoAccountAuthorized:
		return "No account authorized in the wallet."
	case ErrConnectionFailed:
		var sessionErr *SessionError
		if errors.As(err, &sessionErr) && sessionErr.Err != nil {
			return fmt.Sprintf("Failed to connect wallet: %v", sessionErr.Err)
		}
		return "Failed to connect wallet."
	case ErrNotConnected:
		return "Connect a wallet first!"
	case ErrFetchFailed:
		return "Failed to fetch token balances."
	default:
		return err.Error()
	}
}
