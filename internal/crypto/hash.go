package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// IntegrityPrefix prefixes every integrity value produced by this package.
const IntegrityPrefix = "sha256-"

// Integrity returns the CSP/SRI integrity value of inline script code,
// in the form "sha256-<base64>".
func Integrity(code string) string {
	return IntegrityBytes([]byte(code))
}

// IntegrityBytes returns the integrity value of b.
func IntegrityBytes(b []byte) string {
	h := sha256.Sum256(b)
	return IntegrityPrefix + base64.StdEncoding.EncodeToString(h[:])
}

// IntegrityFile returns the integrity value of a file, for scripts served
// from disk and referenced by src.
func IntegrityFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return IntegrityPrefix + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// VerifyIntegrity checks that code hashes to want.
func VerifyIntegrity(code, want string) bool {
	got := Integrity(code)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Source returns hash as a quoted CSP source expression, e.g. 'sha256-...'.
func Source(hash string) string {
	return "'" + hash + "'"
}

// IsIntegrity reports whether s looks like a value produced by Integrity.
func IsIntegrity(s string) bool {
	rest, ok := strings.CutPrefix(s, IntegrityPrefix)
	if !ok {
		return false
	}
	b, err := base64.StdEncoding.DecodeString(rest)
	return err == nil && len(b) == sha256.Size
}
