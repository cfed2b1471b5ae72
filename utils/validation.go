package utils

import (
	"crypto/rand"
	"math/big"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionIDPrefix   = "session_"
	sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	sessionIDLength   = 16
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	sessionIDPattern = regexp.MustCompile(`^session_[a-z0-9]{16}$`)
	unsafeFilename   = regexp.MustCompile(`[^a-zA-Z0-9._\s-]`)
)

// SanitizeFilename cleans filename for safe forwarding by removing dangerous characters
// and limiting length. It trims spaces and dots, removes parent directory references,
// and filters out non-alphanumeric characters except for safe punctuation.
func SanitizeFilename(filename string) string {
	sanitized := filepath.Base(filepath.ToSlash(strings.TrimSpace(filename)))
	sanitized = strings.Trim(sanitized, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeFilename.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		ext := filepath.Ext(sanitized)
		if len(ext) < 255 {
			sanitized = sanitized[:255-len(ext)] + ext
		} else {
			sanitized = sanitized[:255]
		}
	}
	return sanitized
}

// ValidEmail reports whether address looks like name@domain.tld after trimming.
func ValidEmail(address string) bool {
	return emailPattern.MatchString(strings.TrimSpace(address))
}

// GenerateSessionID returns "session_" followed by 16 random lowercase alphanumerics.
func GenerateSessionID() string {
	var b strings.Builder
	b.Grow(len(sessionIDPrefix) + sessionIDLength)
	b.WriteString(sessionIDPrefix)
	max := big.NewInt(int64(len(sessionIDAlphabet)))
	for i := 0; i < sessionIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to uuid entropy
			return sessionIDPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:sessionIDLength]
		}
		b.WriteByte(sessionIDAlphabet[n.Int64()])
	}
	return b.String()
}

// ValidSessionID reports whether id has the shape produced by GenerateSessionID.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// GenerateMessageID creates a unique message identifier using UUID v4.
func GenerateMessageID() string {
	return uuid.New().String()
}
