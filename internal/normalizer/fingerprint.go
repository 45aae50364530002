package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// TimestampPlaceholder replaces every timestamp before hashing.
const TimestampPlaceholder = "<TIMESTAMP>"

// DefaultFingerprintWidth is the number of hex characters kept from the digest.
const DefaultFingerprintWidth = 16

// Matches 2024-01-01T10:00, 2024-01-01 10:00:00.123Z, 2024-01-01T10:00:00+07:00 and similar.
var timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?`)

// Matches a bare date only when it follows an update label: "Last updated: 2024-06-02",
// "Updated June 2, 2024". Other dates are content.
var updatedStampPattern = regexp.MustCompile(`(?i)\b((?:last\s+)?(?:updated|modified|revised)(?:\s+(?:on|at))?\s*:?\s*)(\d{4}-\d{2}-\d{2}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})\b`)

// Canonicalize applies the fingerprint normalization: timestamps and labeled update
// dates become a fixed placeholder and whitespace runs collapse to a single space.
func Canonicalize(raw []byte) string {
	text := timestampPattern.ReplaceAllString(string(raw), TimestampPlaceholder)
	text = updatedStampPattern.ReplaceAllString(text, "${1}"+TimestampPlaceholder)
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint returns a lowercase hex SHA-256 digest of the canonicalized content,
// truncated to width characters. A width of zero or above 64 keeps the full digest.
func Fingerprint(raw []byte, width int) string {
	sum := sha256.Sum256([]byte(Canonicalize(raw)))
	digest := hex.EncodeToString(sum[:])
	if width <= 0 || width >= len(digest) {
		return digest
	}
	return digest[:width]
}
