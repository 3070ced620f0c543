// Package gate implements the single shared-password access gate and the
// per-viewer sessions it remembers its decision in.
package gate

import (
	"crypto/subtle"
)

// State is the gate state of one viewer session.
type State int

const (
	// Unset means no password has been submitted yet.
	Unset State = iota
	// Denied means the last submitted password was wrong.
	Denied
	// Granted is terminal for the session.
	Granted
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Denied:
		return "denied"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// Prompt labels for the password input.
const (
	PromptEnter     = "Enter password"
	PromptIncorrect = "Password incorrect"
)

// Session is the gate state of one viewer. The entered password is never kept.
type Session struct {
	ID    string
	State State
}

// Verifier decides whether a submitted password opens the gate.
type Verifier interface {
	Verify(password string) bool
}

// DefaultSecret is the shared dashboard password. It is a placeholder until
// the gate is backed by a real credential mechanism.
const DefaultSecret = "admin123"

// FixedSecret verifies against a single literal secret.
type FixedSecret string

// Verify compares in constant time.
func (s FixedSecret) Verify(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(s)) == 1
}

// Gate applies password submissions to sessions.
type Gate struct {
	verifier Verifier
}

// New returns a gate using v, or the fixed default secret when v is nil.
func New(v Verifier) *Gate {
	if v == nil {
		v = FixedSecret(DefaultSecret)
	}
	return &Gate{verifier: v}
}

// Submit returns the session after a password submission. A granted session
// stays granted; otherwise the result depends only on this password.
func (g *Gate) Submit(s Session, password string) Session {
	if s.State == Granted {
		return s
	}
	if g.verifier.Verify(password) {
		s.State = Granted
	} else {
		s.State = Denied
	}
	return s
}

// IsAuthorized reports whether the session may see the dashboard.
func IsAuthorized(s Session) bool {
	return s.State == Granted
}

// Prompt returns the label for the password input of an unauthorized session.
func Prompt(s Session) string {
	if s.State == Denied {
		return PromptIncorrect
	}
	return PromptEnter
}
