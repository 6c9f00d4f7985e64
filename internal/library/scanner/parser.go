package scanner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedName is returned when a file name carries no "(year)" marker.
var ErrMalformedName = errors.New("malformed movie file name")

// titleTrimSet is stripped from both ends of an extracted title.
const titleTrimSet = " ._-"

// Candidate is a movie identified purely from its file path.
// Every field is lower-cased so the path can be used as a dedup key.
type Candidate struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Year     string `json:"year,omitempty"`
	ExtraTag string `json:"extraTag,omitempty"`
}

// HasYear reports whether a year was found between the parentheses.
func (c Candidate) HasYear() bool {
	return c.Year != ""
}

// ParseMoviePath extracts a Candidate from the trailing segment of path.
// The name must look like "Title (Year) [Extra].ext"; the extra tag is optional.
func ParseMoviePath(path string) (Candidate, error) {
	name := baseName(path)

	open := strings.IndexByte(name, '(')
	if open < 0 {
		return Candidate{}, fmt.Errorf("%w: %s", ErrMalformedName, path)
	}
	closing := strings.IndexByte(name[open+1:], ')')
	if closing < 0 {
		return Candidate{}, fmt.Errorf("%w: %s", ErrMalformedName, path)
	}
	closing += open + 1

	c := Candidate{
		Path:  strings.ToLower(strings.TrimSpace(path)),
		Title: strings.ToLower(strings.Trim(name[:open], titleTrimSet)),
		Year:  strings.ToLower(strings.TrimSpace(name[open+1 : closing])),
	}

	if lb := strings.IndexByte(name, '['); lb >= 0 {
		if rb := strings.IndexByte(name[lb+1:], ']'); rb >= 0 {
			c.ExtraTag = strings.ToLower(strings.TrimSpace(name[lb+1 : lb+1+rb]))
		}
	}

	return c, nil
}

// baseName returns the last segment of a path using either separator,
// since share paths may arrive with Windows-style backslashes.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
