package rates_test

import (
	"testing"

	"dubline/internal/domain"
	"dubline/internal/rates"
)

func TestBaseRates(t *testing.T) {
	p := rates.Default()
	ctx := p.ContextFor(nil)
	cases := []struct {
		role domain.Role
		want float64
	}{
		{domain.RoleNarrator, 3.00},
		{domain.RoleSpeakerMale, 2.25},
		{domain.RoleSpeakerFemale, 1.25},
		{domain.RoleSpeaker, 2.25},
		{domain.RoleProjectOwner, 2.25},
	}
	for _, c := range cases {
		if got := p.Rate(c.role, ctx); got != c.want {
			t.Errorf("Rate(%s) = %.2f, want %.2f", c.role, got, c.want)
		}
	}
}

func TestExpressRates(t *testing.T) {
	p := rates.Default()
	ctx := p.ContextFor([]string{"EXPRESS"})
	if !ctx.Express || ctx.Swap {
		t.Fatalf("context = %+v", ctx)
	}
	cases := []struct {
		role domain.Role
		want float64
	}{
		{domain.RoleNarrator, 3.25},
		{domain.RoleSpeakerMale, 2.50},
		{domain.RoleSpeakerFemale, 1.50},
		{domain.RoleProjectOwner, 2.90},
	}
	for _, c := range cases {
		if got := p.Rate(c.role, ctx); got != c.want {
			t.Errorf("express Rate(%s) = %.2f, want %.2f", c.role, got, c.want)
		}
	}
}

func TestSwapExchangesSpeakerRates(t *testing.T) {
	p := rates.Default()
	ctx := p.ContextFor([]string{"Budgettausch"})
	if got := p.Rate(domain.RoleSpeakerMale, ctx); got != 1.25 {
		t.Errorf("swapped male rate = %.2f, want 1.25", got)
	}
	if got := p.Rate(domain.RoleSpeakerFemale, ctx); got != 2.25 {
		t.Errorf("swapped female rate = %.2f, want 2.25", got)
	}
	// Narrator and owner are untouched by the swap.
	if got := p.Rate(domain.RoleNarrator, ctx); got != 3.00 {
		t.Errorf("narrator under swap = %.2f, want 3.00", got)
	}
	if got := p.Rate(domain.RoleProjectOwner, ctx); got != 2.25 {
		t.Errorf("owner under swap = %.2f, want 2.25", got)
	}
}

func TestSwapThenExpress(t *testing.T) {
	p := rates.Default()
	ctx := p.ContextFor([]string{"Budgettausch", "EXPRESS"})
	// Swap first, bump after.
	if got := p.Rate(domain.RoleSpeakerMale, ctx); got != 1.50 {
		t.Errorf("male swap+express = %.2f, want 1.50", got)
	}
	if got := p.Rate(domain.RoleSpeakerFemale, ctx); got != 2.50 {
		t.Errorf("female swap+express = %.2f, want 2.50", got)
	}
}

func TestSwapSelfInverse(t *testing.T) {
	p := rates.Default()
	plain := p.ContextFor(nil)
	swapped := p.ContextFor([]string{"budgettausch"})
	if p.Rate(domain.RoleSpeakerMale, plain) != p.Rate(domain.RoleSpeakerFemale, swapped) {
		t.Error("swap is not an exchange of the two speaker rates")
	}
	if p.Rate(domain.RoleSpeakerFemale, plain) != p.Rate(domain.RoleSpeakerMale, swapped) {
		t.Error("swap is not an exchange of the two speaker rates")
	}
}

func TestContextForMatchesSubstringsCaseInsensitive(t *testing.T) {
	p := rates.Default()
	ctx := p.ContextFor([]string{"express lieferung", "BUDGETTAUSCH aktiv"})
	if !ctx.Express || !ctx.Swap {
		t.Fatalf("context = %+v, want both modifiers", ctx)
	}
	if got := p.ContextFor([]string{"Priorität", "Wichtig"}); got.Express || got.Swap {
		t.Fatalf("unrelated labels produced modifiers: %+v", got)
	}
}
