package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dubline/internal/config"
	"dubline/internal/domain"
	"dubline/internal/report"
	"dubline/internal/workload"
)

var generated = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newGenerator(t *testing.T) (*report.Generator, string) {
	t.Helper()
	dir := t.TempDir()
	g := report.NewGenerator(dir, nil)
	g.Now = func() time.Time { return generated }
	return g, dir
}

func readReport(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func ptr[T any](v T) *T { return &v }

func TestPaymentReport(t *testing.T) {
	g, dir := newGenerator(t)
	due := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	payments := []domain.ProjectPayment{
		{
			Project: domain.Project{Name: "IB36", Due: &due, Labels: []string{"EXPRESS"}, URL: "https://trello.com/c/ib36"},
			Minutes: ptr(60),
			Entries: []domain.PaymentEntry{
				{Person: "Lucas", Role: domain.RoleNarrator, Rate: 3.25, Amount: ptr(195.0)},
			},
			Total: ptr(195.0),
		},
		{
			Project: domain.Project{Name: "IB37", Due: &due},
			Entries: []domain.PaymentEntry{
				{Person: "Nils", Role: domain.RoleSpeakerMale, Rate: 2.25},
			},
		},
	}
	months := []domain.MonthlySummary{
		{Month: "2026-02", Totals: map[string]float64{"Lucas": 195.0}, Projects: []string{"IB36", "IB37"}},
	}

	files, err := g.Payment(payments, months)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}

	md := readReport(t, filepath.Join(dir, "payment_report.md"))
	for _, want := range []string{
		"**Generated on:** 2026-03-01 09:30:00",
		"1 of 2 projects have unresolved durations",
		"| Lucas | Narrator | 3.25 | 195.00 |",
		"**Project Total:** 195.00",
		"| Nils | Speaker (Male) | 2.25 | UNRESOLVED |",
		"**Project Total:** UNRESOLVED",
		"### 2026-02",
		"Projects: IB36, IB37",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	csvOut := readReport(t, filepath.Join(dir, "payment_report.csv"))
	if !strings.Contains(csvOut, "IB37,2026-02-10,UNRESOLVED,Nils,Speaker (Male),2.25,UNRESOLVED,") {
		t.Errorf("csv missing unresolved row:\n%s", csvOut)
	}
}

func TestWorkloadReportFiles(t *testing.T) {
	g, dir := newGenerator(t)
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	a := workload.Analysis{
		GeneratedAt: generated,
		Speakers: []workload.SpeakerStats{
			{
				Name:      "Nils",
				Completed: 1,
				Pending:   1,
				Tasks: []workload.Task{
					{Card: "IB36", Checklist: "Sprecher", Item: "Nils - Intro", Complete: true, URL: "https://trello.com/c/ib36"},
					{Card: "IB37", Checklist: "Sprecher", Item: "Nils - Outro", Due: &due, URL: "https://trello.com/c/ib37"},
				},
				UpcomingDue: []time.Time{due},
			},
		},
		TotalTasks:      2,
		Warnings:        []string{"Nils has a task due in 4 days"},
		Recommendations: []string{"Workload is well distributed"},
	}
	profiles := map[string]config.SpeakerProfile{
		"Nils": {Voice: "deep male", Availability: "weekends only"},
	}

	files, err := g.Workload(a, profiles)
	if err != nil {
		t.Fatalf("workload: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v", files)
	}

	md := readReport(t, filepath.Join(dir, "speaker_workload_report.md"))
	for _, want := range []string{
		"Nils (limited availability)",
		"| 2 | 1 | 1 | 50.0% | Fair | 100.0% |",
		"- **Voice:** deep male",
		"- [IB37](https://trello.com/c/ib37) (Due: 2026-03-05)",
		"- Workload is well distributed",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	html := readReport(t, filepath.Join(dir, "speaker_workload_report.html"))
	if !strings.Contains(html, "Nils") {
		t.Error("html missing speaker name")
	}

	csvOut := readReport(t, filepath.Join(dir, "speaker_workload.csv"))
	if !strings.Contains(csvOut, "IB37,https://trello.com/c/ib37,2026-03-05,Nils,incomplete,Sprecher,Nils - Outro") {
		t.Errorf("csv missing pending row:\n%s", csvOut)
	}
}

func TestCompletedReportSortsByActivity(t *testing.T) {
	g, dir := newGenerator(t)
	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	projects := []domain.Project{
		{Name: "IB30", LastActivity: &older, Members: []domain.Member{{Name: "Nils Becker", Username: "nils"}}},
		{Name: "IB31"},
		{Name: "IB32", LastActivity: &newer, DocLinks: []string{"https://docs.google.com/spreadsheets/d/abc"}},
	}

	files, err := g.Completed(projects)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v", files)
	}

	md := readReport(t, filepath.Join(dir, "completed_projects_report.md"))
	if !strings.Contains(md, "### 1. IB32") || !strings.Contains(md, "### 3. IB31") {
		t.Error("projects not sorted newest activity first, nil last")
	}
	for _, want := range []string{
		"| Nils | 1 |",
		"**Team Members:** Nils Becker(@nils)",
		"- **Projects with Documentation:** 1/3 (33.3%)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteManifest(t *testing.T) {
	g, dir := newGenerator(t)
	path, err := g.WriteManifest([]string{"payment_report.md", "payment_report.csv"})
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}

	var m report.Manifest
	if err := json.Unmarshal([]byte(readReport(t, path)), &m); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if m.RunID == "" {
		t.Error("manifest run id empty")
	}
	if m.GeneratedAt != generated.Format(time.RFC3339) {
		t.Errorf("generated_at = %q", m.GeneratedAt)
	}
	if len(m.Files) != 2 {
		t.Errorf("files = %v", m.Files)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("manifest written outside reports dir: %s", path)
	}
}
