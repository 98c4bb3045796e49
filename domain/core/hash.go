package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
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

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DataFingerprint is the hash of an observation matrix, used to tie
// extraction outputs back to the exact data that produced them.
type DataFingerprint Hash

// String returns the string representation
func (h DataFingerprint) String() string { return Hash(h).String() }

// ComputeDataFingerprint hashes variable keys and column data deterministically.
// Variable keys are sorted so column order does not affect the fingerprint.
func ComputeDataFingerprint(columns map[string][]float64) DataFingerprint {
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		for _, v := range columns[key] {
			data.WriteString(fmt.Sprintf("%.12g,", v))
		}
		data.WriteString(";")
	}

	return DataFingerprint(NewHash([]byte(data.String())))
}
