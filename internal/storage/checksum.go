package storage

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// ChecksumPrefix is the prefix for xxHash64 checksums.
const ChecksumPrefix = "xxh64:"

// Checksum is a hex-encoded xxHash64 digest with the "xxh64:" prefix.
type Checksum string

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidChecksum  = errors.New("invalid checksum format")
)

// ComputeChecksum computes xxHash64 over a byte slice.
func ComputeChecksum(data []byte) Checksum {
	return Checksum(fmt.Sprintf("%s%016x", ChecksumPrefix, xxhash.Sum64(data)))
}

// VerifyChecksum reports ErrChecksumMismatch if data does not hash to expected.
func VerifyChecksum(data []byte, expected Checksum) error {
	if actual := ComputeChecksum(data); actual != expected {
		return errors.Wrapf(ErrChecksumMismatch, "expected %s got %s", expected, actual)
	}
	return nil
}

// ParseChecksum strips the prefix and returns the raw hex digest.
func ParseChecksum(c Checksum) (string, error) {
	s := string(c)
	if !strings.HasPrefix(s, ChecksumPrefix) {
		return "", errors.Wrapf(ErrInvalidChecksum, "missing prefix %q", ChecksumPrefix)
	}
	hexStr := s[len(ChecksumPrefix):]
	if len(hexStr) != 16 {
		return "", errors.Wrapf(ErrInvalidChecksum, "expected 16 hex chars, got %d", len(hexStr))
	}
	if _, err := hex.DecodeString(hexStr); err != nil {
		return "", errors.Wrapf(ErrInvalidChecksum, "invalid hex: %v", err)
	}
	return hexStr, nil
}
