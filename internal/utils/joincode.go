package utils

import (
	"crypto/rand"
	"fmt"
)

// joinCodeAlphabet omits ambiguous characters (0/O, 1/I) so codes survive
// being read aloud or copied by hand.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the fixed length of session join codes.
const JoinCodeLength = 6

// GenerateJoinCode returns a random shareable join code.
func GenerateJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
