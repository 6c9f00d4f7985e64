package pathutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// IllegalCharacters are characters not allowed in filenames on most filesystems.
var IllegalCharacters = []rune{'\\', '/', ':', '*', '?', '"', '<', '>', '|'}

// NormalizePath converts all path separators to forward slashes.
// Go's os.Open/os.Stat accept forward slashes on all platforms.
func NormalizePath(p string) string {
	return filepath.ToSlash(p)
}

// SanitizeName turns an arbitrary title or person name into a single safe
// path segment. Returns fallback when nothing usable is left.
func SanitizeName(s, fallback string) string {
	var result strings.Builder
	result.Grow(len(s))

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ':':
			result.WriteString(colonReplacement(runes, i))
		case isIllegalChar(r):
			result.WriteRune(getReplacement(r))
		case unicode.IsControl(r):
			continue
		default:
			result.WriteRune(r)
		}
	}

	out := strings.Trim(cleanupSpaces(result.String()), " .")
	if out == "" {
		return fallback
	}
	return avoidReservedNames(out)
}

// colonReplacement uses " - " between words and "-" next to punctuation.
func colonReplacement(runes []rune, pos int) string {
	var prevIsSpace, prevIsWord bool
	if pos > 0 {
		prev := runes[pos-1]
		prevIsSpace = unicode.IsSpace(prev)
		prevIsWord = unicode.IsLetter(prev) || unicode.IsDigit(prev)
	}

	var nextIsSpace, nextIsWord bool
	if pos < len(runes)-1 {
		next := runes[pos+1]
		nextIsSpace = unicode.IsSpace(next)
		nextIsWord = unicode.IsLetter(next) || unicode.IsDigit(next)
	}

	if prevIsWord && (nextIsWord || nextIsSpace) {
		if nextIsSpace {
			return " -"
		}
		return " - "
	}
	if prevIsSpace {
		return "- "
	}
	return "-"
}

func isIllegalChar(r rune) bool {
	for _, illegal := range IllegalCharacters {
		if r == illegal {
			return true
		}
	}
	return false
}

// getReplacement returns a safe replacement for an illegal character.
func getReplacement(r rune) rune {
	switch r {
	case '\\', '/', '*', '|':
		return '-'
	case '"':
		return '\''
	case '<':
		return '('
	case '>':
		return ')'
	default:
		return ' '
	}
}

// cleanupSpaces removes double spaces and trims the string.
func cleanupSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// avoidReservedNames handles Windows reserved device names.
func avoidReservedNames(s string) string {
	reserved := []string{
		"CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	}

	upper := strings.ToUpper(s)
	for _, r := range reserved {
		if upper == r {
			return s + "_"
		}
		if strings.HasPrefix(upper, r+".") {
			return s[:len(r)] + "_" + s[len(r):]
		}
	}
	return s
}
