package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"dubline/internal/domain"
)

const unresolvedMark = "UNRESOLVED"

// Payment renders the payment breakdown as Markdown and CSV. Rows whose
// duration could not be resolved carry an UNRESOLVED marker instead of an
// amount so nobody pays against a guess.
func (g *Generator) Payment(payments []domain.ProjectPayment, months []domain.MonthlySummary) ([]string, error) {
	md, err := g.write("payment_report.md", paymentMarkdown(payments, months, fmtTimestamp(g.now())))
	if err != nil {
		return nil, err
	}
	csvPath, err := g.write("payment_report.csv", paymentCSV(payments))
	if err != nil {
		return nil, err
	}
	return []string{md, csvPath}, nil
}

func paymentMarkdown(payments []domain.ProjectPayment, months []domain.MonthlySummary, generated string) []byte {
	var b strings.Builder
	b.WriteString("# Payment Report\n\n")
	fmt.Fprintf(&b, "**Generated on:** %s\n", generated)
	fmt.Fprintf(&b, "**Eligible Projects:** %d\n\n", len(payments))

	complete := 0
	for _, p := range payments {
		if p.Complete() {
			complete++
		}
	}
	if complete < len(payments) {
		fmt.Fprintf(&b, "> %d of %d projects have unresolved durations; their totals are withheld.\n\n", len(payments)-complete, len(payments))
	}

	b.WriteString("## Projects\n\n")
	for _, p := range payments {
		fmt.Fprintf(&b, "### %s\n\n", p.Project.Name)
		if p.Project.Due != nil {
			fmt.Fprintf(&b, "**Due Date:** %s\n", fmtDate(p.Project.Due))
		}
		if p.Minutes != nil {
			fmt.Fprintf(&b, "**Duration:** %d min\n", *p.Minutes)
		} else {
			fmt.Fprintf(&b, "**Duration:** %s\n", unresolvedMark)
		}
		if len(p.Project.Labels) > 0 {
			fmt.Fprintf(&b, "**Labels:** %s\n", strings.Join(p.Project.Labels, ", "))
		}
		b.WriteString("\n| Person | Role | Rate | Amount |\n")
		b.WriteString("|--------|------|------|--------|\n")
		for _, e := range p.Entries {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s |\n", e.Person, e.Role.Label(), e.Rate, fmtAmount(e.Amount))
		}
		fmt.Fprintf(&b, "\n**Project Total:** %s\n", fmtAmount(p.Total))
		if p.Project.URL != "" {
			fmt.Fprintf(&b, "\n**Card:** [%s](%s)\n", p.Project.Name, p.Project.URL)
		}
		b.WriteString("\n---\n\n")
	}

	if len(months) > 0 {
		b.WriteString("## Monthly Totals\n\n")
		for _, m := range months {
			fmt.Fprintf(&b, "### %s\n\n", m.Month)
			b.WriteString("| Person | Amount |\n")
			b.WriteString("|--------|--------|\n")
			for _, person := range sortedPersons(m.Totals) {
				fmt.Fprintf(&b, "| %s | %.2f |\n", person, m.Totals[person])
			}
			if len(m.Projects) > 0 {
				fmt.Fprintf(&b, "\nProjects: %s\n", strings.Join(m.Projects, ", "))
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func paymentCSV(payments []domain.ProjectPayment) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Project", "Due Date", "Minutes", "Person", "Role", "Rate", "Amount", "Card URL"})
	for _, p := range payments {
		minutes := unresolvedMark
		if p.Minutes != nil {
			minutes = fmt.Sprintf("%d", *p.Minutes)
		}
		for _, e := range p.Entries {
			_ = w.Write([]string{
				p.Project.Name,
				fmtDate(p.Project.Due),
				minutes,
				e.Person,
				e.Role.Label(),
				fmt.Sprintf("%.2f", e.Rate),
				fmtAmount(e.Amount),
				p.Project.URL,
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}

func fmtAmount(a *float64) string {
	if a == nil {
		return unresolvedMark
	}
	return fmt.Sprintf("%.2f", *a)
}

func sortedPersons(totals map[string]float64) []string {
	persons := make([]string, 0, len(totals))
	for p := range totals {
		persons = append(persons, p)
	}
	sort.Strings(persons)
	return persons
}
