// Package rates computes per-role, per-minute payment rates under the
// project's label modifiers. The policy is stateless and re-derivable
// for the same inputs.
package rates

import (
	"strings"

	"dubline/internal/domain"
)

// Policy holds the base rates in currency units per minute and the
// label markers that trigger modifiers. Values are business constants
// loaded from config, not algorithmic fixtures.
type Policy struct {
	Narrator      float64
	SpeakerMale   float64
	SpeakerFemale float64
	Owner         float64
	OwnerExpress  float64
	ExpressBump   float64
	ExpressLabel  string
	SwapLabel     string
}

// Default returns the documented production rates.
func Default() Policy {
	return Policy{
		Narrator:      3.00,
		SpeakerMale:   2.25,
		SpeakerFemale: 1.25,
		Owner:         2.25,
		OwnerExpress:  2.90,
		ExpressBump:   0.25,
		ExpressLabel:  "express",
		SwapLabel:     "budgettausch",
	}
}

// Context captures the label-derived modifiers of one project.
type Context struct {
	Swap    bool
	Express bool
}

// ContextFor inspects the project's labels with case-insensitive
// substring matching, as label names vary in casing on the board.
func (p Policy) ContextFor(labels []string) Context {
	var ctx Context
	for _, l := range labels {
		lower := strings.ToLower(l)
		if p.SwapLabel != "" && strings.Contains(lower, strings.ToLower(p.SwapLabel)) {
			ctx.Swap = true
		}
		if p.ExpressLabel != "" && strings.Contains(lower, strings.ToLower(p.ExpressLabel)) {
			ctx.Express = true
		}
	}
	return ctx
}

// Rate returns the per-minute rate for role under ctx. The swap modifier
// exchanges the male and female base rates before the express bump is
// added; narrator and owner are unaffected by the swap. The owner's
// express rate is a distinct fixed value rather than a bump.
func (p Policy) Rate(role domain.Role, ctx Context) float64 {
	male, female := p.SpeakerMale, p.SpeakerFemale
	if ctx.Swap {
		male, female = female, male
	}
	bump := 0.0
	if ctx.Express {
		bump = p.ExpressBump
	}
	switch role {
	case domain.RoleNarrator:
		return p.Narrator + bump
	case domain.RoleSpeakerFemale:
		return female + bump
	case domain.RoleProjectOwner:
		if ctx.Express {
			return p.OwnerExpress
		}
		return p.Owner
	default:
		// SpeakerMale and the unclassified fallback share a rate.
		return male + bump
	}
}
