package sync

import (
	"errors"
)

// KeyLength is the number of leading characters that identify a logical
// item across renames. Two files sharing this prefix are treated as
// revisions of the same document.
const KeyLength = 5

var ErrNameTooShort = errors.New("sync: name too short for key derivation")

// DeriveKey returns the partial key for a file name: its first KeyLength
// characters, case-sensitive, no normalization. Names shorter than
// KeyLength cannot participate in prefix matching.
func DeriveKey(name string) (string, error) {
	runes := []rune(name)
	if len(runes) < KeyLength {
		return "", ErrNameTooShort
	}
	return string(runes[:KeyLength]), nil
}
