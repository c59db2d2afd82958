package utils

import "crypto/rand"

const (
	shortIDLength   = 10
	shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var randRead = rand.Read

// NewShortID returns a 10-character random identifier for records created
// through the generic gateway. Collisions are accepted as negligible; there
// is no uniqueness check against existing records.
func NewShortID() (string, error) {
	buffer := make([]byte, shortIDLength)
	if _, err := randRead(buffer); err != nil {
		return "", err
	}
	for i, b := range buffer {
		buffer[i] = shortIDAlphabet[int(b)%len(shortIDAlphabet)]
	}
	return string(buffer), nil
}
