package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// Package checksum computes content digests used for deduplication keys
// and integrity metadata. SHA-256 is the canonical dedup key; MD5 is
// informational only.

// Sums holds lowercase hex digests of a byte payload.
type Sums struct {
	MD5    string
	SHA256 string
}

// Compute returns the MD5 and SHA-256 digests of content.
func Compute(content []byte) Sums {
	md5Sum := md5.Sum(content)
	shaSum := sha256.Sum256(content)
	return Sums{
		MD5:    hex.EncodeToString(md5Sum[:]),
		SHA256: hex.EncodeToString(shaSum[:]),
	}
}
