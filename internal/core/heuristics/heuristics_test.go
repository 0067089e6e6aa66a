package heuristics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/markdave123-py/newsprint/internal/core"
)

func TestFileMetadata_KnownFilename(t *testing.T) {
	e := New(nil)
	md := e.FileMetadata("HT_Delhi_2025-06-14.pdf", "")

	if md.Newspaper != "Hindustan Times" {
		t.Errorf("Newspaper = %q, want Hindustan Times", md.Newspaper)
	}
	if md.Edition != "Delhi Edition" {
		t.Errorf("Edition = %q, want Delhi Edition", md.Edition)
	}
	if md.Date != "June 14, 2025" {
		t.Errorf("Date = %q, want June 14, 2025", md.Date)
	}
}

func TestFileMetadata_NoHints(t *testing.T) {
	e := New(nil)
	text := "THE DAILY PAPER\nNo city here\nJust words\n"
	md := e.FileMetadata("random_file_no_hints.pdf", text)

	if md.Newspaper != UnknownNewspaper {
		t.Errorf("Newspaper = %q, want %q", md.Newspaper, UnknownNewspaper)
	}
	if md.Edition != EditionNotFound {
		t.Errorf("Edition = %q, want %q", md.Edition, EditionNotFound)
	}
	if md.Date != DateNotFound {
		t.Errorf("Date = %q, want %q", md.Date, DateNotFound)
	}
}

func TestNewspaperFromFilename_TableOrder(t *testing.T) {
	e := New(nil)
	tests := []struct {
		filename string
		want     string
	}{
		{"TOI-Mumbai-14-06-2025.pdf", "Times of India"},
		{"Deccan_Chronicle_Hyderabad.pdf", "Deccan Chronicle"},
		// substring match: "the" contains "th"
		{"THE HINDU HD International Editable Full Edition 14~06~2025.pdf", "The Hindu"},
		{"mint•daily.pdf", "Mint"},
	}
	for _, tt := range tests {
		if got := e.NewspaperFromFilename(tt.filename); got != tt.want {
			t.Errorf("NewspaperFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestEdition_Precedence(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name     string
		filename string
		text     string
		want     string
	}{
		{"city in filename", "paper_new-york.pdf", "", "New York Edition"},
		{"special keyword", "paper_upsc_special.pdf", "Mumbai", "UPSC IAS Edition"},
		{"ad free with hyphen normalized", "paper_ad-free.pdf", "", "Ad-Free Edition"},
		{"text fallback", "paper.pdf", "MASTHEAD\nprinted in chennai\n", "Chennai Edition"},
		{"city past line ten ignored", "paper.pdf", "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\nKolkata\n", EditionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Edition(tt.filename, tt.text); got != tt.want {
				t.Errorf("Edition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"HT_Delhi_2025-06-14.pdf", "June 14, 2025"},
		{"paper 14~06~2025.pdf", "June 14, 2025"},
		{"paper_05.06.2025.pdf", "June 05, 2025"},
		{"paper_05_06_25.pdf", "June 05, 2025"},
		{"paper_2025_13_45.pdf", DateNotFound},
		{"no date.pdf", DateNotFound},
	}
	for _, tt := range tests {
		if got := DateFromFilename(tt.filename); got != tt.want {
			t.Errorf("DateFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestDateFromText(t *testing.T) {
	got := DateFromText("CHENNAI\nMonday, June 16, 2025\nPrice 10")
	if got == nil || *got != "2025-06-16" {
		t.Fatalf("DateFromText = %v, want 2025-06-16", got)
	}

	if got := DateFromText("Monday,\n  June   16,  2025"); got == nil || *got != "2025-06-16" {
		t.Errorf("DateFromText with wrapped whitespace = %v, want 2025-06-16", got)
	}
	if got := DateFromText("Monday, Junuary 16, 2025"); got != nil {
		t.Errorf("DateFromText with bad month = %q, want nil", *got)
	}
	if got := DateFromText("no date at all"); got != nil {
		t.Errorf("DateFromText = %q, want nil", *got)
	}
}

func TestContentMetadata(t *testing.T) {
	e := New(nil)
	newspaper, date, city := e.ContentMetadata("Reporting from Kochi and Chennai on Tuesday, July 1, 2025.")

	if newspaper != "The Hindu" {
		t.Errorf("newspaper = %q", newspaper)
	}
	if date == nil || *date != "2025-07-01" {
		t.Errorf("date = %v, want 2025-07-01", date)
	}
	if city == nil || *city != "Kochi" {
		t.Errorf("city = %v, want Kochi (first in text)", city)
	}

	_, date, city = e.ContentMetadata("nothing useful")
	if date != nil || city != nil {
		t.Errorf("expected nil date and city, got %v %v", date, city)
	}
}

func TestEntityMetadata(t *testing.T) {
	ents := []core.Entity{
		{Text: "UN", Label: core.LabelOrg},
		{Text: "The Hindu Group", Label: core.LabelOrg},
		{Text: "Goa", Label: core.LabelGPE},
		{Text: "Chennai", Label: core.LabelGPE},
		{Text: "last week", Label: core.LabelDate},
		{Text: "5 June 2025", Label: core.LabelDate},
	}
	md := EntityMetadata(ents)
	if md.NewspaperName != "The Hindu Group" {
		t.Errorf("NewspaperName = %q", md.NewspaperName)
	}
	if md.Edition != "Chennai" {
		t.Errorf("Edition = %q", md.Edition)
	}
	if md.Date != "05 June 2025" {
		t.Errorf("Date = %q", md.Date)
	}

	empty := EntityMetadata(nil)
	if empty.NewspaperName != Unknown || empty.Edition != Unknown || empty.Date != Unknown {
		t.Errorf("EntityMetadata(nil) = %+v, want all Unknown", empty)
	}
}

func TestLoadTables_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	yml := `
newspapers:
  - key: GUARD
    value: The Guardian
editions:
  - Manchester
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	e := New(tables)

	if got := e.NewspaperFromFilename("guard_manchester.pdf"); got != "The Guardian" {
		t.Errorf("newspaper = %q", got)
	}
	if got := e.Edition("guard_manchester.pdf", ""); got != "Manchester Edition" {
		t.Errorf("edition = %q", got)
	}
	if len(tables.SpecialEditions) == 0 {
		t.Error("special editions should keep defaults when not overridden")
	}
}

func TestLoadTables_MissingFile(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
