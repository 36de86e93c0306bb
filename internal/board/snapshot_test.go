package board_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dubline/internal/board"
)

func fixtureSnapshot() board.Snapshot {
	return board.Snapshot{
		Board: board.BoardInfo{ID: "b1", Name: "True Crime Video Dubs"},
		CustomFields: []board.CustomField{
			{ID: "cf-other", Name: "Priority"},
			{ID: "cf-owner", Name: "P.O."},
		},
		CardsByList: map[string][]board.Card{
			"Fertig": {
				{
					ID:       "card-1",
					Name:     "IB36 Mord im Wald",
					Desc:     "Skript: https://docs.google.com/spreadsheets/d/abc123/edit#gid=5.",
					Due:      "2026-02-10T12:00:00.000Z",
					ShortURL: "https://trello.com/c/xyz",
					Labels:   []board.Label{{Name: "EXPRESS"}},
					Members: []board.CardMember{
						{FullName: "Lucas Jacobs", Username: "lucki"},
					},
					Actions: []board.Action{
						{Type: "commentCard", Data: board.ActionData{Text: "Audio hier: https://drive.google.com/file/d/xyz)"}},
						{Type: "updateCard", Data: board.ActionData{Text: "https://docs.google.com/spreadsheets/d/ignored"}},
					},
					CustomFieldItems: []board.CustomFieldItem{
						{IDCustomField: "cf-other", Value: &board.CustomFieldValue{Text: "hoch"}},
						{IDCustomField: "cf-owner", Value: &board.CustomFieldValue{Text: " Holger Irrmisch "}},
					},
				},
			},
			"Skripte zur Aufnahme": {
				{ID: "card-2", Name: "IB37 Entführung", Due: "not-a-date"},
			},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trello_cards_detailed.json")
	if err := board.SaveSnapshot(path, fixtureSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	snap, err := board.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Board.Name != "True Crime Video Dubs" {
		t.Errorf("board name = %q", snap.Board.Name)
	}
	if len(snap.CardsByList["Fertig"]) != 1 {
		t.Fatalf("Fertig cards = %d", len(snap.CardsByList["Fertig"]))
	}
}

func TestProjects(t *testing.T) {
	snap := fixtureSnapshot()
	projects := snap.Projects("Fertig", "Skripte zur Aufnahme")
	if len(projects) != 2 {
		t.Fatalf("got %d projects", len(projects))
	}

	p := projects[0]
	if p.Name != "IB36 Mord im Wald" || p.List != "Fertig" {
		t.Fatalf("project = %+v", p)
	}
	want := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	if p.Due == nil || !p.Due.Equal(want) {
		t.Errorf("due = %v, want %v", p.Due, want)
	}
	if p.Owner != "Holger Irrmisch" {
		t.Errorf("owner = %q, want trimmed custom field value", p.Owner)
	}
	if len(p.Labels) != 1 || p.Labels[0] != "EXPRESS" {
		t.Errorf("labels = %v", p.Labels)
	}
	if len(p.Members) != 1 || p.Members[0].Username != "lucki" {
		t.Errorf("members = %v", p.Members)
	}

	// Description link loses trailing punctuation, the drive comment link
	// loses the stray bracket, the non-comment action is ignored.
	wantLinks := []string{
		"https://docs.google.com/spreadsheets/d/abc123/edit#gid=5",
		"https://drive.google.com/file/d/xyz",
	}
	if len(p.DocLinks) != len(wantLinks) {
		t.Fatalf("doc links = %v", p.DocLinks)
	}
	for i, l := range wantLinks {
		if p.DocLinks[i] != l {
			t.Errorf("doc link %d = %q, want %q", i, p.DocLinks[i], l)
		}
	}

	// Unparseable due dates read as absent.
	if projects[1].Due != nil {
		t.Errorf("invalid due parsed to %v", projects[1].Due)
	}
}

func TestExtractDocLinksDedupes(t *testing.T) {
	card := board.Card{
		Desc: "https://docs.google.com/spreadsheets/d/same/edit",
		Actions: []board.Action{
			{Type: "commentCard", Data: board.ActionData{Text: "https://docs.google.com/spreadsheets/d/same/edit"}},
			{Type: "commentCard", Data: board.ActionData{Text: "https://docs.google.com/spreadsheets/d/other/edit"}},
		},
	}
	links := board.ExtractDocLinks(card)
	if len(links) != 2 {
		t.Fatalf("links = %v, want deduped pair", links)
	}
	if links[0] != "https://docs.google.com/spreadsheets/d/same/edit" {
		t.Errorf("first-seen order not preserved: %v", links)
	}
}

func TestFindCards(t *testing.T) {
	snap := fixtureSnapshot()
	matches := snap.FindCards("ib3")
	if len(matches) != 2 {
		t.Fatalf("got %d matches", len(matches))
	}
	// Stable order: by list name, then card name.
	if matches[0].List != "Fertig" || matches[1].List != "Skripte zur Aufnahme" {
		t.Fatalf("order = %s, %s", matches[0].List, matches[1].List)
	}
	if got := snap.FindCards("nichts dergleichen"); len(got) != 0 {
		t.Fatalf("unexpected matches: %v", got)
	}
}

func TestCardsConcatenatesListsInOrder(t *testing.T) {
	snap := fixtureSnapshot()
	cards := snap.Cards("Skripte zur Aufnahme", "Fertig")
	if len(cards) != 2 || cards[0].ID != "card-2" || cards[1].ID != "card-1" {
		t.Fatalf("cards = %v", cards)
	}
	if got := snap.Cards("Unbekannt"); len(got) != 0 {
		t.Fatalf("unknown list returned cards: %v", got)
	}
}
