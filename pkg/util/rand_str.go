package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandStr returns a random string of letters of length n. Used for request IDs
func RandStr(n int) string {
	s, err := gonanoid.Generate(charset, n)
	if err != nil {
		// crypto/rand failing means the system is in a really bad state
		panic(err)
	}

	return s
}
