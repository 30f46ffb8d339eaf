package domain

import "math/rand/v2"

// IDLength is the length of locally generated plant ids.
const IDLength = 9

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewID returns a random lowercase alphanumeric id of IDLength characters.
// It is not cryptographically unique; collisions are accepted as negligible.
func NewID() string {
	b := make([]byte, IDLength)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b)
}
