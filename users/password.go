package users

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const (
	temporaryPasswordLength = 12
	passwordSymbols         = "!@#$%^&*"
	passwordAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" + passwordSymbols
)

// GenerateTemporaryPassword returns a random password with at least one
// lowercase letter, uppercase letter, digit and symbol
func GenerateTemporaryPassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	for {
		var b strings.Builder
		for i := 0; i < temporaryPasswordLength; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			b.WriteByte(passwordAlphabet[n.Int64()])
		}

		if password := b.String(); IsStrongPassword(password) {
			return password, nil
		}
	}
}

func IsStrongPassword(password string) bool {
	var lower, upper, digit, symbol bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
