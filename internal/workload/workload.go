// Package workload analyzes checklist assignments on the recording list
// and flags speakers who need attention.
package workload

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dubline/internal/board"
)

// Task is one checklist item attributed to a speaker.
type Task struct {
	Card      string
	Checklist string
	Item      string
	Complete  bool
	Due       *time.Time
	URL       string
}

// SpeakerStats accumulates checklist work for one speaker.
type SpeakerStats struct {
	Name      string
	Completed int
	Pending   int
	Tasks     []Task
	// Due dates of pending tasks, unsorted.
	UpcomingDue []time.Time
}

// Total returns completed plus pending tasks.
func (s SpeakerStats) Total() int { return s.Completed + s.Pending }

// CompletionRate returns the percentage of completed tasks, 0 when empty.
func (s SpeakerStats) CompletionRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total()) * 100
}

// Rating buckets the completion rate for report tables.
func (s SpeakerStats) Rating() string {
	switch rate := s.CompletionRate(); {
	case s.Total() == 0:
		return "-"
	case rate == 100:
		return "Excellent"
	case rate >= 70:
		return "Good"
	case rate >= 40:
		return "Fair"
	default:
		return "Low"
	}
}

// NextDue returns the earliest pending due date, or nil.
func (s SpeakerStats) NextDue() *time.Time {
	var next *time.Time
	for i := range s.UpcomingDue {
		d := s.UpcomingDue[i]
		if next == nil || d.Before(*next) {
			next = &d
		}
	}
	return next
}

// Analysis is the workload picture for one snapshot.
type Analysis struct {
	GeneratedAt     time.Time
	Speakers        []SpeakerStats
	Mentioned       []string
	TotalTasks      int
	Warnings        []string
	Recommendations []string
}

// Analyzer scans the recording list for speaker assignments. Roster order
// decides which speaker wins when an item names more than one.
type Analyzer struct {
	Roster []string
	Now    func() time.Time
}

// NewAnalyzer builds an analyzer for the given speaker roster.
func NewAnalyzer(roster []string) *Analyzer {
	return &Analyzer{Roster: roster, Now: time.Now}
}

// Analyze walks the source list's checklists and attributes every item to
// the first roster speaker it names. Speakers only mentioned on review or
// done cards still appear with zero tasks.
func (a *Analyzer) Analyze(snap *board.Snapshot, sourceList, reviewList, doneList string) Analysis {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	stats := map[string]*SpeakerStats{}
	ensure := func(name string) *SpeakerStats {
		s, ok := stats[name]
		if !ok {
			s = &SpeakerStats{Name: name}
			stats[name] = s
		}
		return s
	}

	for _, card := range snap.Cards(sourceList) {
		due := card.DueTime()
		for _, cl := range card.Checklists {
			for _, item := range cl.CheckItems {
				speaker := a.matchSpeaker(item.Name)
				if speaker == "" {
					continue
				}
				s := ensure(speaker)
				complete := item.State == "complete"
				if complete {
					s.Completed++
				} else {
					s.Pending++
					if due != nil {
						s.UpcomingDue = append(s.UpcomingDue, *due)
					}
				}
				s.Tasks = append(s.Tasks, Task{
					Card:      card.Name,
					Checklist: cl.Name,
					Item:      item.Name,
					Complete:  complete,
					Due:       due,
					URL:       card.ShortURL,
				})
			}
		}
	}

	mentioned := a.mentionedSpeakers(snap, reviewList, doneList)
	for _, name := range mentioned {
		ensure(name)
	}

	out := Analysis{GeneratedAt: now, Mentioned: mentioned}
	for _, s := range stats {
		out.Speakers = append(out.Speakers, *s)
		out.TotalTasks += s.Total()
	}
	sort.Slice(out.Speakers, func(i, j int) bool {
		if out.Speakers[i].Total() != out.Speakers[j].Total() {
			return out.Speakers[i].Total() > out.Speakers[j].Total()
		}
		return out.Speakers[i].Name < out.Speakers[j].Name
	})
	out.Warnings = a.warnings(out.Speakers, now)
	out.Recommendations = a.recommendations(out.Speakers, now)
	return out
}

func (a *Analyzer) matchSpeaker(item string) string {
	lower := strings.ToLower(item)
	for _, name := range a.Roster {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func (a *Analyzer) mentionedSpeakers(snap *board.Snapshot, lists ...string) []string {
	seen := map[string]bool{}
	for _, card := range snap.Cards(lists...) {
		haystack := strings.ToLower(card.Name + " " + card.Desc)
		for _, name := range a.Roster {
			if strings.Contains(haystack, strings.ToLower(name)) {
				seen[name] = true
			}
		}
	}
	var out []string
	for _, name := range a.Roster {
		if seen[name] {
			out = append(out, name)
		}
	}
	return out
}

func (a *Analyzer) warnings(speakers []SpeakerStats, now time.Time) []string {
	var out []string
	for _, s := range speakers {
		if s.Total() == 0 {
			continue
		}
		if s.Pending >= 5 {
			out = append(out, fmt.Sprintf("%s has %d pending tasks and %d completed", s.Name, s.Pending, s.Completed))
		} else if s.CompletionRate() < 30 && s.Total() >= 3 {
			out = append(out, fmt.Sprintf("%s has a low completion rate of %.1f%% (%d/%d tasks)", s.Name, s.CompletionRate(), s.Completed, s.Total()))
		}
		if next := s.NextDue(); next != nil {
			days := daysUntil(now, *next)
			if days >= 0 && days <= 3 {
				out = append(out, fmt.Sprintf("%s has a task due in %d days (%s)", s.Name, days, next.Format("2006-01-02")))
			}
		}
	}
	return out
}

func (a *Analyzer) recommendations(speakers []SpeakerStats, now time.Time) []string {
	var out []string
	var active []SpeakerStats
	for _, s := range speakers {
		if s.Total() > 0 {
			active = append(active, s)
		}
	}
	if len(active) > 0 {
		maxTasks := active[0].Total()
		minTasks := maxTasks
		for _, s := range active {
			if s.Total() < minTasks {
				minTasks = s.Total()
			}
		}
		if maxTasks-minTasks > 3 {
			out = append(out, fmt.Sprintf("Consider redistributing tasks from %s (%d tasks) to speakers with lighter workloads", active[0].Name, maxTasks))
		}
	}

	var urgent []string
	for _, s := range speakers {
		if next := s.NextDue(); next != nil && daysUntil(now, *next) <= 2 {
			urgent = append(urgent, s.Name)
		}
	}
	if len(urgent) > 0 {
		out = append(out, fmt.Sprintf("Urgent: follow up with %s about tasks due in the next 2 days", strings.Join(urgent, ", ")))
	}

	var low []string
	for _, s := range speakers {
		if s.Total() >= 3 && s.CompletionRate() < 40 {
			low = append(low, s.Name)
		}
	}
	if len(low) > 0 {
		out = append(out, fmt.Sprintf("Consider providing additional support to %s (completion rate below 40%%)", strings.Join(low, ", ")))
	}

	if len(out) == 0 {
		out = append(out, "Workload is well distributed")
	}
	return out
}

func daysUntil(now, due time.Time) int {
	return int(due.Sub(now).Hours() / 24)
}
