package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomCode returns a secure random numeric code of the given number of
// digits, left-padded with zeros.  It is used for one-time passcodes.
func RandomCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid code length: %d", digits)
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
