package services

import (
	"crypto/rand"
	"math/big"
)

const (
	temporaryPasswordLength = 12
	otpDigits               = "0123456789"
)

func generateTemporaryPassword(length int) (string, error) {
	const upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const lower = "abcdefghijklmnopqrstuvwxyz"
	const all = upper + lower + otpDigits

	if length < 8 {
		length = 8
	}

	password := make([]byte, length)

	sets := []string{upper, lower, otpDigits}
	for i := 0; i < len(sets); i++ {
		char, err := randomChar(sets[i])
		if err != nil {
			return "", err
		}
		password[i] = char
	}

	for i := len(sets); i < length; i++ {
		char, err := randomChar(all)
		if err != nil {
			return "", err
		}
		password[i] = char
	}

	for i := len(password) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(jBig.Int64())
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

// generateOTP returns a numeric one-time password of the given length.
func generateOTP(length int) (string, error) {
	if length < 4 {
		length = 4
	}
	code := make([]byte, length)
	for i := range code {
		char, err := randomChar(otpDigits)
		if err != nil {
			return "", err
		}
		code[i] = char
	}
	return string(code), nil
}

func randomChar(source string) (byte, error) {
	max := big.NewInt(int64(len(source)))
	index, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return source[index.Int64()], nil
}
