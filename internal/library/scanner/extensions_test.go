package scanner

import (
	"testing"
)

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		// Valid video extensions
		{"movie.mkv", true},
		{"movie.MKV", true},
		{"movie.mp4", true},
		{"movie.MP4", true},
		{"movie.avi", true},
		{"movie.mov", true},
		{"movie.flv", true},
		{"movie.wmv", true},
		{"movie.webm", true},
		{"movie.m4v", true},
		{"movie.m2ts", true},

		// Invalid extensions
		{"movie.txt", false},
		{"movie.srt", false},
		{"movie.nfo", false},
		{"movie.jpg", false},
		{"movie", false},
		{"", false},

		// Edge cases
		{"Movie.With.Dots.In.Name.mkv", true},
		{"movie.mkv.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := IsVideoFile(tt.filename)
			if got != tt.want {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsExtraDirectory(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"featurettes", true},
		{"Featurette", true},
		{"FEAT", true},
		{"features", false},
		{"Extras", false},
		{"Alien (1979)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExtraDirectory(tt.name); got != tt.want {
				t.Errorf("IsExtraDirectory(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
