// Package payment turns classified projects into per-person payment
// entries, per-project totals, and monthly roll-ups. The amounts are
// suggestions for human review, not authoritative payroll.
package payment

import (
	"context"
	"sort"
	"time"

	"dubline/internal/domain"
	"dubline/internal/duration"
	"dubline/internal/identity"
	"dubline/internal/rates"
	"dubline/internal/roles"
)

// Engine combines role classification, the rate policy, and duration
// resolution. Projects due on or before Cutoff are outside payment scope
// entirely; StartMonth bounds the monthly roll-up.
type Engine struct {
	Roles      roles.Table
	Rates      rates.Policy
	Resolver   *duration.Resolver
	Cutoff     time.Time
	StartMonth time.Time
}

// Eligible reports whether p can be paid: the due date must parse and
// fall strictly after the cutoff. Due exactly on the cutoff is not
// eligible.
func (e Engine) Eligible(p domain.Project) bool {
	return p.Due != nil && p.Due.After(e.Cutoff)
}

// Compute produces the payment breakdown for every eligible project, in
// input order. Projects whose duration stays unresolved still get one
// entry per member with role and rate populated and the amount absent.
func (e Engine) Compute(ctx context.Context, projects []domain.Project) []domain.ProjectPayment {
	var out []domain.ProjectPayment
	for _, p := range projects {
		if !e.Eligible(p) {
			continue
		}
		out = append(out, e.computeProject(ctx, p))
	}
	return out
}

func (e Engine) computeProject(ctx context.Context, p domain.Project) domain.ProjectPayment {
	labelCtx := e.Rates.ContextFor(p.Labels)

	var minutes *int
	if e.Resolver != nil {
		if m, ok := e.Resolver.Resolve(ctx, p); ok {
			minutes = &m
		}
	}

	roleOf := e.Roles.Classify(p.Members)
	pay := domain.ProjectPayment{Project: p, Minutes: minutes}
	for _, m := range p.Members {
		pay.Entries = append(pay.Entries, e.entry(p.Name, m.Name, roleOf[m.Name], labelCtx, minutes))
	}
	if owner := p.Owner; owner != "" && !isMember(p.Members, owner) {
		pay.Entries = append(pay.Entries, e.entry(p.Name, owner, domain.RoleProjectOwner, labelCtx, minutes))
	}

	total := 0.0
	complete := true
	for _, entry := range pay.Entries {
		if entry.Amount == nil {
			complete = false
			break
		}
		total += *entry.Amount
	}
	if complete {
		pay.Total = &total
	}
	return pay
}

func (e Engine) entry(project, person string, role domain.Role, labelCtx rates.Context, minutes *int) domain.PaymentEntry {
	entry := domain.PaymentEntry{
		Person:  person,
		Project: project,
		Role:    role,
		Minutes: minutes,
		Rate:    e.Rates.Rate(role, labelCtx),
	}
	if minutes != nil {
		amount := float64(*minutes) * entry.Rate
		entry.Amount = &amount
	}
	return entry
}

func isMember(members []domain.Member, name string) bool {
	key := identity.Normalize(name)
	for _, m := range members {
		for _, k := range identity.Keys(m.Name, m.Username) {
			if k == key {
				return true
			}
		}
	}
	return false
}

// Rollup groups payments by the calendar month of the project due date
// and sums each person's present amounts. Months before StartMonth are
// dropped. Absent amounts are excluded rather than poisoning the sum:
// a person's monthly total is best-effort even when a project total is
// marked incomplete.
func (e Engine) Rollup(payments []domain.ProjectPayment) []domain.MonthlySummary {
	start := monthKey(e.StartMonth)
	byMonth := map[string]*domain.MonthlySummary{}
	for _, pay := range payments {
		if pay.Project.Due == nil {
			continue
		}
		month := monthKey(*pay.Project.Due)
		if month < start {
			continue
		}
		summary, ok := byMonth[month]
		if !ok {
			summary = &domain.MonthlySummary{Month: month, Totals: map[string]float64{}}
			byMonth[month] = summary
		}
		summary.Projects = append(summary.Projects, pay.Project.Name)
		for _, entry := range pay.Entries {
			if entry.Amount != nil {
				summary.Totals[entry.Person] += *entry.Amount
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]domain.MonthlySummary, 0, len(months))
	for _, m := range months {
		out = append(out, *byMonth[m])
	}
	return out
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
