package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordAlphabet deliberately avoids characters that need quoting in
// connection strings or shell here-documents.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random password of the given length drawn
// from a URL- and shell-safe alphabet.
func GeneratePassword(length int) (string, error) {
	if length < 16 {
		return "", fmt.Errorf("password length %d is below the 16 character minimum", length)
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read randomness: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
