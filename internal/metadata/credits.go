package metadata

import (
	"strings"

	"github.com/reelindex/reelindex/internal/metadata/tmdb"
)

// uncreditedMarker in a cast character name marks an uncredited appearance.
const uncreditedMarker = "uncredited"

// principalRoles lists, per department, the crew jobs worth keeping.
var principalRoles = map[string]map[string]struct{}{
	"Directing":         set("Director", "Co-Director"),
	"Production":        set("Producer"),
	"Camera":            set("Director of Photography"),
	"Sound":             set("Original Music Composer", "Sound Designer"),
	"Visual Effects":    set("VFX Supervisor", "Visual Effects Supervisor", "Visual Effects Art Director"),
	"Writing":           set("Writer", "Original Film Writer", "Co-Writer", "Scenario Writer", "Teleplay", "Screenplay"),
	"Art":               set("Art Direction", "Co-Art Director", "Production Design", "Art Designer", "Set Designer", "Property Master"),
	"Costume & Make-Up": set("Costume Designer", "Makeup Designer"),
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// IsPrincipal reports whether a crew job in a department is kept.
// Unknown departments are never principal.
func IsPrincipal(department, job string) bool {
	jobs, ok := principalRoles[department]
	if !ok {
		return false
	}
	_, ok = jobs[job]
	return ok
}

// IsUncredited reports whether a cast character is an uncredited appearance.
func IsUncredited(character string) bool {
	return strings.Contains(character, uncreditedMarker)
}

// FilterCast converts cast members, dropping uncredited appearances.
func FilterCast(members []tmdb.CastMember) []CreditedPerson {
	people := make([]CreditedPerson, 0, len(members))
	for _, m := range members {
		if IsUncredited(m.Character) {
			continue
		}
		people = append(people, CreditedPerson{
			ProviderID: int64(m.ID),
			Name:       strings.TrimSpace(m.Name),
			Kind:       CreditCast,
			Character:  strings.TrimSpace(m.Character),
			ImageRef:   deref(m.ProfilePath),
		})
	}
	return people
}

// FilterCrew converts crew members, keeping only principal jobs.
func FilterCrew(members []tmdb.CrewMember) []CreditedPerson {
	people := make([]CreditedPerson, 0, len(members))
	for _, m := range members {
		if !IsPrincipal(m.Department, m.Job) {
			continue
		}
		people = append(people, CreditedPerson{
			ProviderID: int64(m.ID),
			Name:       strings.TrimSpace(m.Name),
			Kind:       CreditCrew,
			Department: m.Department,
			Job:        m.Job,
			ImageRef:   deref(m.ProfilePath),
		})
	}
	return people
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
