package duration

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTimecode(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"01:23:45", 84, true},
		{"01:23:15", 83, true},
		{"00:05:10", 5, true},
		{"00:05:30", 6, true},
		{"00:00:29", 0, true},
		{"00:00:30", 1, true},
		{"02:00:00", 120, true},
		{"1:2:3", 62, true},
		{"01:23:45:12", 84, true},
		{"120:00:00", 7200, true},
		{"  01:00:00  ", 60, true},
		{"not a time", 0, false},
		{"01:75:00", 0, false},
		{"01:00", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseTimecode(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseTimecode(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestMinutesFromCSVKeepsLastNonEmpty(t *testing.T) {
	csv := strings.Join([]string{
		`Titel,Skript,Schnitt,Status,Laufzeit`,
		`IB01,x,y,done,00:10:00`,
		`IB02,x,y,done,`,
		`IB03,x,y,done,01:23:45`,
		`Summe,,,,`,
	}, "\n")
	got, err := minutesFromCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("minutesFromCSV: %v", err)
	}
	if got != 84 {
		t.Fatalf("got %d, want 84", got)
	}
}

func TestMinutesFromCSVShortRows(t *testing.T) {
	csv := "a,b\nc,d,e\nx,y,z,w,00:30:00\n"
	got, err := minutesFromCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("minutesFromCSV: %v", err)
	}
	if got != 30 {
		t.Fatalf("got %d, want 30", got)
	}
}

func TestMinutesFromCSVNoTimecode(t *testing.T) {
	if _, err := minutesFromCSV(strings.NewReader("a,b,c\n")); !errors.Is(err, errNoTimecode) {
		t.Fatalf("expected errNoTimecode, got %v", err)
	}
	if _, err := minutesFromCSV(strings.NewReader("a,b,c,d,garbage\n")); err == nil {
		t.Fatal("expected error for non-timecode value")
	}
}

func TestParseSheetLink(t *testing.T) {
	link, ok := ParseSheetLink("https://docs.google.com/spreadsheets/d/abc_DEF-123/edit#gid=42")
	if !ok || link.SpreadsheetID != "abc_DEF-123" || link.GID != "42" {
		t.Fatalf("ParseSheetLink = %+v, %v", link, ok)
	}
	link, ok = ParseSheetLink("https://docs.google.com/spreadsheets/d/xyz/edit")
	if !ok || link.SpreadsheetID != "xyz" || link.GID != "" {
		t.Fatalf("ParseSheetLink without gid = %+v, %v", link, ok)
	}
	if _, ok := ParseSheetLink("https://docs.google.com/document/d/xyz/edit"); ok {
		t.Fatal("document link should not parse as a sheet")
	}
}

func TestExportURLs(t *testing.T) {
	urls := SheetLink{SpreadsheetID: "abc", GID: "7"}.exportURLs()
	if len(urls) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(urls))
	}
	if urls[0] != "https://docs.google.com/spreadsheets/d/abc/gviz/tq?tqx=out:csv&gid=7" {
		t.Errorf("gviz endpoint = %s", urls[0])
	}
	if urls[1] != "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=7" {
		t.Errorf("export endpoint = %s", urls[1])
	}
}
