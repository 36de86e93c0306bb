package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"dubline/internal/config"
	"dubline/internal/workload"
)

// Workload renders the speaker workload analysis as Markdown, HTML, and
// CSV. Profiles add voice and availability details; speakers whose
// availability is restricted are marked in the usage table.
func (g *Generator) Workload(a workload.Analysis, profiles map[string]config.SpeakerProfile) ([]string, error) {
	md, err := g.write("speaker_workload_report.md", workloadMarkdown(a, profiles))
	if err != nil {
		return nil, err
	}
	html, err := workloadHTML(a, profiles)
	if err != nil {
		return nil, err
	}
	htmlPath, err := g.write("speaker_workload_report.html", html)
	if err != nil {
		return nil, err
	}
	csvPath, err := g.write("speaker_workload.csv", workloadCSV(a))
	if err != nil {
		return nil, err
	}
	return []string{md, htmlPath, csvPath}, nil
}

func workloadMarkdown(a workload.Analysis, profiles map[string]config.SpeakerProfile) []byte {
	var b strings.Builder
	b.WriteString("# Speaker Workload Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated on:** %s\n\n", fmtTimestamp(a.GeneratedAt))

	b.WriteString("## Warnings\n\n")
	if len(a.Warnings) == 0 {
		b.WriteString("No critical warnings at this time.\n")
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	b.WriteString("\n## Speaker Usage Overview\n\n")
	b.WriteString("| Speaker | Total Tasks | Completed | Pending | Completion Rate | Rating | % of Total Workload |\n")
	b.WriteString("|---------|-------------|-----------|---------|-----------------|--------|---------------------|\n")
	for _, s := range a.Speakers {
		share := 0.0
		if a.TotalTasks > 0 {
			share = float64(s.Total()) / float64(a.TotalTasks) * 100
		}
		label := s.Name
		if p, ok := profiles[s.Name]; ok && restricted(p) {
			label += " (limited availability)"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %.1f%% | %s | %.1f%% |\n",
			label, s.Total(), s.Completed, s.Pending, s.CompletionRate(), s.Rating(), share)
	}

	b.WriteString("\n## Detailed Speaker Analysis\n\n")
	for _, s := range a.Speakers {
		if s.Total() == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", s.Name)
		if p, ok := profiles[s.Name]; ok {
			if p.Voice != "" {
				fmt.Fprintf(&b, "- **Voice:** %s\n", p.Voice)
			}
			if p.Availability != "" {
				fmt.Fprintf(&b, "- **Availability:** %s\n", p.Availability)
			}
		}
		fmt.Fprintf(&b, "- **Total Tasks:** %d\n", s.Total())
		fmt.Fprintf(&b, "- **Completion Rate:** %.1f%%\n", s.CompletionRate())
		fmt.Fprintf(&b, "- **Completed:** %d\n", s.Completed)
		fmt.Fprintf(&b, "- **Pending:** %d\n", s.Pending)
		if next := s.NextDue(); next != nil {
			fmt.Fprintf(&b, "- **Next Due:** %s\n", next.Format("2006-01-02"))
		}
		pending := 0
		for _, t := range s.Tasks {
			if t.Complete || pending >= 3 {
				continue
			}
			if pending == 0 {
				b.WriteString("- **Pending Cards:**\n")
			}
			due := ""
			if t.Due != nil {
				due = fmt.Sprintf(" (Due: %s)", t.Due.Format("2006-01-02"))
			}
			fmt.Fprintf(&b, "  - [%s](%s)%s\n", t.Card, t.URL, due)
			pending++
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, r := range a.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return []byte(b.String())
}

func workloadCSV(a workload.Analysis) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Card Name", "Card URL", "Due Date", "Speaker", "Task Status", "Checklist Name", "Item Name"})
	for _, s := range a.Speakers {
		for _, t := range s.Tasks {
			status := "incomplete"
			if t.Complete {
				status = "complete"
			}
			_ = w.Write([]string{t.Card, t.URL, fmtDate(t.Due), s.Name, status, t.Checklist, t.Item})
		}
	}
	w.Flush()
	return buf.Bytes()
}

func restricted(p config.SpeakerProfile) bool {
	avail := strings.ToLower(strings.TrimSpace(p.Availability))
	return avail != "" && avail != "available" && avail != "flexibel" && avail != "flexible"
}
