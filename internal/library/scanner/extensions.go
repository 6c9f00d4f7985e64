package scanner

import (
	"path/filepath"
	"strings"
)

// VideoExtensions contains supported video file extensions.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
	".wmv":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".m2ts": true,
	".vob":  true,
	".iso":  true,
}

// ExtraDirectories are folder names whose whole subtree is bonus material.
var ExtraDirectories = map[string]bool{
	"featurettes": true,
	"featurette":  true,
	"feat":        true,
}

// IsVideoFile checks if a filename has a video extension.
func IsVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return VideoExtensions[ext]
}

// IsExtraDirectory reports whether a directory should be skipped entirely.
func IsExtraDirectory(name string) bool {
	return ExtraDirectories[strings.ToLower(name)]
}
