package purchase

import (
	"errors"
	"fmt"
	"strings"
)

// Reason is the machine-readable classification of a failed attempt.
type Reason string

const (
	ReasonWalletAbsent Reason = "wallet_absent"
	ReasonAlreadyOwned Reason = "already_owned"
	// ReasonStale: the token left the sale contract between selection and
	// confirmation. The caller must re-synchronize before retrying.
	ReasonStale        Reason = "stale"
	ReasonUserRejected Reason = "user_rejected"
	ReasonChainError   Reason = "chain_error"
)

// errReverted marks a transaction that was mined but failed.
var errReverted = errors.New("purchase: transaction reverted")

// Error is a terminal purchase failure with a human-readable message.
// No failure is retried automatically; a fresh Buy call starts a new
// attempt from idle.
type Error struct {
	Reason  Reason
	State   State
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("purchase %s at %s: %s: %v", e.Reason, e.State, e.Message, e.Err)
	}
	return fmt.Sprintf("purchase %s at %s: %s", e.Reason, e.State, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a purchase *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var perr *Error
	ok := errors.As(err, &perr)
	return perr, ok
}

// classify maps a transaction submission or confirmation error onto a
// reason, distinguishing user cancellation from chain rejection.
func classify(err error) Reason {
	if errors.Is(err, ErrUserRejected) {
		return ReasonUserRejected
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "user denied") || strings.Contains(msg, "user rejected") {
		return ReasonUserRejected
	}
	return ReasonChainError
}
