package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPIN = errors.New("invalid parent PIN")

// PINGate checks the shared parent PIN against a bcrypt hash. A gate built
// from an empty hash is disabled and lets every request through as a parent.
type PINGate struct {
	hash []byte
}

func NewPINGate(hash string) *PINGate {
	return &PINGate{hash: []byte(hash)}
}

func (g *PINGate) Enabled() bool {
	return len(g.hash) > 0
}

func (g *PINGate) Check(pin string) error {
	if !g.Enabled() {
		return nil
	}
	if pin == "" {
		return ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPIN
		}
		return fmt.Errorf("compare pin: %w", err)
	}
	return nil
}

// HashPIN produces a hash suitable for QUESTBOARD_PARENT_PIN_HASH.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 {
		return "", errors.New("pin must be at least 4 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(h), nil
}
