// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"math/rand/v2"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	accessCodeCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	AccessCodeMinLength = 6
	AccessCodeMaxLength = 8
)

// GenerateAccessCode returns a random alphanumeric code between 6 and 8
// characters long, the length itself chosen uniformly. Codes are not
// guaranteed to be unique, the metadata store rejects duplicates
func GenerateAccessCode() (string, error) {
	n := AccessCodeMinLength + rand.IntN(AccessCodeMaxLength-AccessCodeMinLength+1)
	return gonanoid.Generate(accessCodeCharset, n)
}

// IsAccessCode reports whether s has the shape of a code produced by GenerateAccessCode
func IsAccessCode(s string) bool {
	if len(s) < AccessCodeMinLength || len(s) > AccessCodeMaxLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}

	return true
}
