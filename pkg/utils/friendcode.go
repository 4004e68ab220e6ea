package utils

import (
	"crypto/rand"
	"math/big"
)

const friendCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// FriendCodeLength is the fixed length of user friend codes.
const FriendCodeLength = 7

// NewFriendCode generates a random friend code of FriendCodeLength
// characters drawn from uppercase letters and digits. Uniqueness is
// enforced by the database constraint, not here.
func NewFriendCode() string {
	b := make([]byte, FriendCodeLength)
	max := big.NewInt(int64(len(friendCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		b[i] = friendCodeAlphabet[n.Int64()]
	}
	return string(b)
}
