package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
)

// Hash represents a content hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// SourceFingerprint hashes a set of named inputs independent of their order.
// Two runs over byte-identical sources produce the same fingerprint.
func SourceFingerprint(inputs map[string][]byte) Hash {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		io.WriteString(h, name)
		h.Write([]byte{0})
		sum := sha256.Sum256(inputs[name])
		h.Write(sum[:])
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
