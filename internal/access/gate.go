package access

import (
	"crypto/subtle"
	"errors"

	"github.com/stemsi/acequiz-backend/internal/model"
)

// ErrDenied is returned for a wrong secret. It deliberately carries no detail.
var ErrDenied = errors.New("access denied")

// Decision is the outcome of an authentication attempt.
type Decision int

const (
	Denied Decision = iota
	Granted
)

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}

// Gate holds the secret configured for each protected set. Secrets are
// compared verbatim and a denial never locks the set.
type Gate struct {
	secrets map[model.SetID]string
}

// NewGate builds a gate from the catalog's question sets. Sets without a
// secret are unprotected.
func NewGate(sets []model.QuestionSet) *Gate {
	g := &Gate{secrets: make(map[model.SetID]string)}
	for _, s := range sets {
		if s.Protected() {
			g.secrets[s.ID] = s.Secret
		}
	}
	return g
}

// RequiresSecret reports whether entry to the set needs a secret.
func (g *Gate) RequiresSecret(id model.SetID) bool {
	_, ok := g.secrets[id]
	return ok
}

// Authenticate compares the supplied secret with the one bound to the set.
// Unprotected sets are always granted.
func (g *Gate) Authenticate(id model.SetID, supplied string) Decision {
	want, ok := g.secrets[id]
	if !ok {
		return Granted
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(supplied)) == 1 {
		return Granted
	}
	return Denied
}
