package vector

import (
	"crypto/sha256"
	"encoding/hex"
)

// idLength is the number of hex characters kept from the content digest.
const idLength = 16

// DeriveID computes a content-addressed id for text: the sha256 of its
// UTF-8 bytes, truncated to 16 hex characters. Identical text always
// maps to the same id, so re-ingesting unchanged text overwrites
// instead of duplicating.
func DeriveID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:idLength]
}

// ResolveID returns the caller-supplied id verbatim when non-empty,
// otherwise derives one from the text.
func ResolveID(id, text string) string {
	if id != "" {
		return id
	}
	return DeriveID(text)
}
