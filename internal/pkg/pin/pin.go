package pin

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	Length = 6
	lowest = 100000
	span   = 900000 // codes are drawn from [lowest, lowest+span)
)

// Generate returns a 6-digit code drawn uniformly from [100000, 999999] using crypto/rand.
func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom is Generate with an explicit entropy source.
func GenerateFrom(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+lowest), nil
}

// Valid reports whether s has the shape of a PIN: exactly six ASCII digits.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
