// Package security guards the names the command line tool writes to.
package security

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBasename is returned for output basenames that are not a plain
// file name.
var ErrInvalidBasename = errors.New("invalid output basename")

const maxNameLen = 128

// SanitizeFilename maps s to a file name made of ASCII letters, digits, dot,
// underscore and dash. Runs of other characters become one underscore, and
// leading or trailing dots and underscores are dropped. The empty result is
// "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if b.Len() >= maxNameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			underscore = false
		case !underscore:
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

// ValidateBasename checks that base can be used as the stem of the output
// files without naming another directory.
func ValidateBasename(base string) error {
	if base == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBasename)
	}
	if s := SanitizeFilename(base); s != base {
		return fmt.Errorf("%w: %q (try %q)", ErrInvalidBasename, base, s)
	}
	return nil
}
