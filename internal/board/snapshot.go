package board

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"dubline/internal/domain"
	"dubline/internal/identity"
)

// ownerFieldName is the board custom field naming the project owner.
const ownerFieldName = "p.o."

var docLinkRe = regexp.MustCompile(`https://(?:docs|drive)\.google\.com/[^\s)\]>]+`)

// LoadSnapshot reads a board snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// SaveSnapshot writes the snapshot atomically next to its final path.
func SaveSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Cards returns the cards of the named lists, in list order.
func (s Snapshot) Cards(lists ...string) []Card {
	var out []Card
	for _, name := range lists {
		out = append(out, s.CardsByList[name]...)
	}
	return out
}

// FindCards returns cards whose name contains query (case-insensitive),
// with the list each was found in. Used by the manual-minutes override.
type CardMatch struct {
	List string
	Card Card
}

func (s Snapshot) FindCards(query string) []CardMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	var matches []CardMatch
	for list, cards := range s.CardsByList {
		for _, c := range cards {
			if c.ID == "" || c.Name == "" {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), q) {
				matches = append(matches, CardMatch{List: list, Card: c})
			}
		}
	}
	// Map iteration order is random; pin a stable presentation order.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].List != matches[j].List {
			return matches[i].List < matches[j].List
		}
		return matches[i].Card.Name < matches[j].Card.Name
	})
	return matches
}

// Projects converts the cards of the named lists into domain projects:
// due dates parsed, doc links pulled from description and comments, and
// the project owner read from the board's owner custom field.
func (s Snapshot) Projects(lists ...string) []domain.Project {
	ownerFieldID := s.ownerFieldID()
	var out []domain.Project
	for _, name := range lists {
		for _, c := range s.CardsByList[name] {
			out = append(out, cardToProject(c, name, ownerFieldID))
		}
	}
	return out
}

func (s Snapshot) ownerFieldID() string {
	for _, f := range s.CustomFields {
		if identity.Normalize(f.Name) == ownerFieldName {
			return f.ID
		}
	}
	return ""
}

func cardToProject(c Card, list, ownerFieldID string) domain.Project {
	p := domain.Project{
		ID:           c.ID,
		Name:         c.Name,
		URL:          c.ShortURL,
		List:         list,
		Description:  c.Desc,
		Due:          parseTimestamp(c.Due),
		LastActivity: parseTimestamp(c.DateLastActivity),
	}
	for _, l := range c.Labels {
		if l.Name != "" {
			p.Labels = append(p.Labels, l.Name)
		}
	}
	for _, m := range c.Members {
		p.Members = append(p.Members, domain.Member{Name: m.FullName, Username: m.Username})
	}
	if ownerFieldID != "" {
		for _, item := range c.CustomFieldItems {
			if item.IDCustomField == ownerFieldID && item.Value != nil {
				if owner := strings.TrimSpace(item.Value.Text); owner != "" {
					p.Owner = owner
				}
			}
		}
	}
	p.DocLinks = ExtractDocLinks(c)
	return p
}

// ExtractDocLinks collects Google Docs/Drive links from the card
// description and its comments, trailing punctuation stripped and
// duplicates dropped while preserving first-seen order.
func ExtractDocLinks(c Card) []string {
	var texts []string
	if c.Desc != "" {
		texts = append(texts, c.Desc)
	}
	for _, a := range c.Actions {
		if a.Type == "commentCard" && a.Data.Text != "" {
			texts = append(texts, a.Data.Text)
		}
	}

	seen := map[string]bool{}
	var links []string
	for _, text := range texts {
		for _, raw := range docLinkRe.FindAllString(text, -1) {
			link := strings.TrimRight(raw, ".,;:)]}")
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			links = append(links, link)
		}
	}
	return links
}

// DueTime returns the card's due date, or nil when absent or malformed.
func (c Card) DueTime() *time.Time {
	return parseTimestamp(c.Due)
}

// parseTimestamp handles the board API's ISO-8601 timestamps; anything
// unparseable reads as absent, which downstream treats as "not eligible"
// rather than an error.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
