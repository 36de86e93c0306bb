package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dubline/internal/domain"
)

// Completed renders the finished-projects report as Markdown, HTML, and
// CSV, newest activity first.
func (g *Generator) Completed(projects []domain.Project) ([]string, error) {
	sorted := make([]domain.Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].LastActivity, sorted[j].LastActivity
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	md, err := g.write("completed_projects_report.md", completedMarkdown(sorted, fmtTimestamp(g.now())))
	if err != nil {
		return nil, err
	}
	html, err := completedHTML(sorted, fmtTimestamp(g.now()))
	if err != nil {
		return nil, err
	}
	htmlPath, err := g.write("completed_projects_report.html", html)
	if err != nil {
		return nil, err
	}
	csvPath, err := g.write("completed_projects.csv", completedCSV(sorted))
	if err != nil {
		return nil, err
	}
	return []string{md, htmlPath, csvPath}, nil
}

func completedMarkdown(projects []domain.Project, generated string) []byte {
	var b strings.Builder
	b.WriteString("# Completed Projects Report\n\n")
	fmt.Fprintf(&b, "**Generated on:** %s\n", generated)
	fmt.Fprintf(&b, "**Total Projects:** %d\n\n", len(projects))

	counts := speakerCounts(projects)
	b.WriteString("## Projects by Speaker\n\n")
	b.WriteString("| Speaker | Projects Completed |\n")
	b.WriteString("|---------|--------------------|\n")
	for _, sc := range counts {
		fmt.Fprintf(&b, "| %s | %d |\n", sc.name, sc.count)
	}

	b.WriteString("\n## Detailed Project List\n\n")
	for i, p := range projects {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, p.Name)
		if p.Due != nil {
			fmt.Fprintf(&b, "**Due Date:** %s\n", fmtDate(p.Due))
		}
		if p.LastActivity != nil {
			fmt.Fprintf(&b, "**Last Activity:** %s\n", fmtDate(p.LastActivity))
		}
		if len(p.Members) > 0 {
			var names []string
			for _, m := range p.Members {
				names = append(names, memberLabel(m))
			}
			fmt.Fprintf(&b, "**Team Members:** %s\n", strings.Join(names, ", "))
		}
		if len(p.Labels) > 0 {
			fmt.Fprintf(&b, "**Labels:** %s\n", strings.Join(p.Labels, ", "))
		}
		if len(p.DocLinks) > 0 {
			b.WriteString("\n**Documents:**\n")
			for _, link := range p.DocLinks {
				fmt.Fprintf(&b, "- [%s](%s)\n", link, link)
			}
		}
		if p.URL != "" {
			fmt.Fprintf(&b, "\n**Card:** [%s](%s)\n", p.Name, p.URL)
		}
		b.WriteString("\n---\n\n")
	}

	withDocs := 0
	for _, p := range projects {
		if len(p.DocLinks) > 0 {
			withDocs++
		}
	}
	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- **Total Completed Projects:** %d\n", len(projects))
	fmt.Fprintf(&b, "- **Active Speakers:** %d\n", len(counts))
	if len(projects) > 0 {
		fmt.Fprintf(&b, "- **Projects with Documentation:** %d/%d (%.1f%%)\n",
			withDocs, len(projects), float64(withDocs)/float64(len(projects))*100)
	}
	return []byte(b.String())
}

func completedCSV(projects []domain.Project) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Project Name", "Card URL", "Due Date", "Last Activity", "Team Members", "Labels", "Document Links", "Member Count"})
	for _, p := range projects {
		var names []string
		for _, m := range p.Members {
			names = append(names, memberLabel(m))
		}
		_ = w.Write([]string{
			p.Name,
			p.URL,
			fmtDate(p.Due),
			fmtDate(p.LastActivity),
			strings.Join(names, "; "),
			strings.Join(p.Labels, "; "),
			strings.Join(p.DocLinks, "; "),
			strconv.Itoa(len(p.Members)),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func memberLabel(m domain.Member) string {
	if m.Username != "" {
		return fmt.Sprintf("%s(@%s)", m.Name, m.Username)
	}
	return m.Name
}

type speakerCount struct {
	name  string
	count int
}

// speakerCounts tallies completed projects by first name, busiest first.
func speakerCounts(projects []domain.Project) []speakerCount {
	tally := map[string]int{}
	for _, p := range projects {
		for _, m := range p.Members {
			first := strings.SplitN(strings.TrimSpace(m.Name), " ", 2)[0]
			if first != "" {
				tally[first]++
			}
		}
	}
	out := make([]speakerCount, 0, len(tally))
	for name, count := range tally {
		out = append(out, speakerCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
