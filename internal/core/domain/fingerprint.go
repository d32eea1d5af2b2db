package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	digitPattern = regexp.MustCompile(`\d+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Fingerprint derives a stable content hash for pattern matching.
// URLs and digit runs are replaced with placeholders so the same scam
// template fingerprints identically across different links, phone
// numbers, and amounts.
func Fingerprint(text string) string {
	normalized := strings.ToLower(text)
	normalized = urlPattern.ReplaceAllString(normalized, "<url>")
	normalized = digitPattern.ReplaceAllString(normalized, "<n>")
	normalized = spacePattern.ReplaceAllString(strings.TrimSpace(normalized), " ")

	hash := sha256.Sum256([]byte(normalized))

	return hex.EncodeToString(hash[:])
}
