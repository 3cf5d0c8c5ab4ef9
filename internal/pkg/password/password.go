// Package password generates temporary passwords for accounts created by an
// administrator. Hashing is done by the auth service.
package password

import (
	"crypto/rand"
	"math/big"
)

// MinLength is the shortest password Generate returns.
const MinLength = 12

const (
	lower   = "abcdefghijkmnopqrstuvwxyz"
	upper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digits  = "23456789"
	symbols = "!@#$%&*?"
)

var classes = []string{lower, upper, digits, symbols}

// Generate returns a random password of n characters, at least MinLength,
// containing at least one lower case letter, upper case letter, digit and
// symbol. Look-alike characters (l, I, O, 0, 1) are never used.
func Generate(n int) (string, error) {
	if n < MinLength {
		n = MinLength
	}

	all := lower + upper + digits + symbols
	buf := make([]byte, n)
	for i := range buf {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	// Fisher-Yates so the guaranteed classes are not always in front.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return string(buf), nil
}

func pick(set string) (byte, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[i.Int64()], nil
}
