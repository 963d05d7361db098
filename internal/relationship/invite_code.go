package relationship

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	inviteCodeLength   = 10
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var inviteAlphabetSize = big.NewInt(int64(len(inviteCodeAlphabet)))

// NewInviteCode returns a random upper-case alphanumeric code. 36^10 codes keep
// collisions negligible without a regenerate loop.
func NewInviteCode() (string, error) {
	var b strings.Builder
	b.Grow(inviteCodeLength)
	for range inviteCodeLength {
		n, err := rand.Int(rand.Reader, inviteAlphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInviteCode canonicalizes user input before lookup.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
