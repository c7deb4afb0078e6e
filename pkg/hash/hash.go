package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// AnswerKey derives the cache key for a (video URL, question) pair.
// The question text goes in verbatim, no trimming or case folding, so
// textually distinct questions always map to distinct keys.
func AnswerKey(videoURL, question string) string {
	return SHA256Hex(videoURL + "\n" + question)
}

// ShortHash returns the first prefixLen characters of SHA256(input).
// Used to correlate user IDs and IPs in logs without storing raw PII.
func ShortHash(input string, prefixLen int) string {
	full := SHA256Hex(input)
	if prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}
