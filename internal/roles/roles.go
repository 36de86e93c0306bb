// Package roles assigns Narrator/Speaker roles to project members from
// injected alias tables. Classification is a pure function of one
// project's member list and the tables; the same person may hold
// different roles on different projects.
package roles

import (
	"strings"

	"dubline/internal/domain"
	"dubline/internal/identity"
)

// Table holds the alias sets used for classification. Narrators is an
// ordered precedence list: when several members carry narrator aliases,
// the member matching the earliest alias claims the narrator role for
// the project and the rest fall back to the male speaker rate.
type Table struct {
	narrators []string
	female    map[string]bool
	male      map[string]bool
	narrSet   map[string]bool
}

// NewTable builds a Table from raw alias lists. Entries are normalized
// on the way in so callers can pass them as written in config.
func NewTable(narrators, female, male []string) Table {
	t := Table{
		female:  make(map[string]bool, len(female)),
		male:    make(map[string]bool, len(male)),
		narrSet: make(map[string]bool, len(narrators)),
	}
	for _, a := range narrators {
		n := identity.Normalize(a)
		if n == "" || t.narrSet[n] {
			continue
		}
		t.narrators = append(t.narrators, n)
		t.narrSet[n] = true
	}
	for _, a := range female {
		if n := identity.Normalize(a); n != "" {
			t.female[n] = true
		}
	}
	for _, a := range male {
		if n := identity.Normalize(a); n != "" {
			t.male[n] = true
		}
	}
	return t
}

// Classify maps each member's display name to a role. A project with no
// members yields an empty map. At most one member becomes the narrator.
func (t Table) Classify(members []domain.Member) map[string]domain.Role {
	out := make(map[string]domain.Role, len(members))
	narrator := t.pickNarrator(members)
	for i, m := range members {
		if i == narrator {
			out[m.Name] = domain.RoleNarrator
			continue
		}
		out[m.Name] = t.speakerRole(m)
	}
	return out
}

// pickNarrator scans the narrator precedence list and returns the index
// of the first member matching the earliest alias, or -1. The index is
// used rather than the display name because the API hands back members
// with an empty name for deleted accounts.
func (t Table) pickNarrator(members []domain.Member) int {
	for _, alias := range t.narrators {
		for i, m := range members {
			if memberMatches(m, alias) {
				return i
			}
		}
	}
	return -1
}

func (t Table) speakerRole(m domain.Member) domain.Role {
	if t.matchesSet(m, t.female) {
		return domain.RoleSpeakerFemale
	}
	if t.matchesSet(m, t.male) {
		return domain.RoleSpeakerMale
	}
	// A narrator-alias member who lost the precedence race is billed at
	// the male speaker rate rather than the unknown fallback.
	if t.matchesSet(m, t.narrSet) {
		return domain.RoleSpeakerMale
	}
	return domain.RoleSpeaker
}

func (t Table) matchesSet(m domain.Member, set map[string]bool) bool {
	for alias := range set {
		if memberMatches(m, alias) {
			return true
		}
	}
	return false
}

// memberMatches tests a normalized alias against the member's handle,
// full name, and the individual words of the name, so that the alias
// "lucas" matches the display name "Lucas Jacobs" without resorting to
// fuzzy substring matching.
func memberMatches(m domain.Member, alias string) bool {
	for _, key := range identity.Keys(m.Name, m.Username) {
		if key == alias {
			return true
		}
		for _, word := range strings.Split(key, " ") {
			if word == alias {
				return true
			}
		}
	}
	return false
}
