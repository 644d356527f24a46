// Package digest implements the truncated-SHA-512 content digest and the
// CURIE identifier scheme used to name variation objects by their canonical
// content.
package digest

import (
	"crypto/sha512"
	"encoding/base64"
)

// Size is the number of bytes of the SHA-512 digest that are retained.
const Size = 24

// Length is the length of an encoded digest string.
// 24 bytes encode to 32 base64url characters.
const Length = 32

// SHA512t24u computes the truncated digest of data: SHA-512, truncated at
// 24 bytes, encoded with unpadded base64url. The result is always 32
// characters over the alphabet [A-Za-z0-9_-].
func SHA512t24u(data []byte) string {
	sum := sha512.Sum512(data)
	return base64.RawURLEncoding.EncodeToString(sum[:Size])
}

// SHA512t24uString computes the truncated digest of a string.
func SHA512t24uString(s string) string {
	return SHA512t24u([]byte(s))
}
