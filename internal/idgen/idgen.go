// Package idgen produces room codes and player identifiers.
package idgen

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/google/uuid"
)

// ErrCodeSpaceExhausted is returned when no free room code was found.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique room code")

const maxCodeAttempts = 50

// Generator issues numeric room codes of a fixed length.
type Generator struct {
	codeLength int
}

// New creates a generator for codes of the given length.
func New(codeLength int) *Generator {
	return &Generator{codeLength: codeLength}
}

// RoomCode returns a code for which taken reports false. The first digit is
// never zero so codes keep their length when treated as numbers by clients.
func (g *Generator) RoomCode(taken func(string) bool) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := g.randomCode()
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (g *Generator) randomCode() (string, error) {
	b := make([]byte, g.codeLength)
	for i := range b {
		lo, span := int64(0), int64(10)
		if i == 0 {
			lo, span = 1, 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(span))
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + lo + n.Int64())
	}
	return string(b), nil
}

// PlayerID returns a new random player identifier.
func PlayerID() string {
	return uuid.NewString()
}
