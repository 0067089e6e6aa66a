package ingestion_engine

import (
	"strings"
	"testing"

	"github.com/markdave123-py/newsprint/internal/models"
)

func pagesOf(texts ...string) []models.RawPage {
	pages := make([]models.RawPage, len(texts))
	for i, t := range texts {
		pages[i] = models.RawPage{Number: i + 1, Text: t}
	}
	return pages
}

func TestChunkPages_GroupsByPagesPerChunk(t *testing.T) {
	chunks := ChunkPages(pagesOf("one", "two", "three", "four", "five"), 2)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	want := []struct{ first, last int }{{1, 2}, {3, 4}, {5, 5}}
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("chunk %d Index = %d", i, c.Index)
		}
		if c.FirstPage != want[i].first || c.LastPage != want[i].last {
			t.Errorf("chunk %d pages = %d-%d, want %d-%d", i, c.FirstPage, c.LastPage, want[i].first, want[i].last)
		}
	}

	wantText := "----- PAGE 1 -----\n\none\n\n\n----- PAGE 2 -----\n\ntwo"
	if chunks[0].Text != wantText {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, wantText)
	}
}

func TestChunkPages_ZeroPerChunkMeansOne(t *testing.T) {
	if got := ChunkPages(pagesOf("a", "b"), 0); len(got) != 2 {
		t.Errorf("got %d chunks, want 2", len(got))
	}
}

func TestJoinPages(t *testing.T) {
	got := JoinPages(pagesOf("first", "second"))
	want := "----- PAGE 1 -----\n\nfirst\n\n----- PAGE 2 -----\n\nsecond"
	if got != want {
		t.Errorf("JoinPages = %q, want %q", got, want)
	}
}

func TestNormalizePages_KeepsNumbers(t *testing.T) {
	in := []models.RawPage{{Number: 7, Text: "a  b"}}
	got := NormalizePages(in)
	if got[0].Number != 7 || got[0].Text != "a b" {
		t.Errorf("NormalizePages = %+v", got[0])
	}
	if in[0].Text != "a  b" {
		t.Error("input page was modified")
	}
}

func TestChunkText_SegmentsAcrossPageMarkers(t *testing.T) {
	long := strings.Repeat("The river rose again overnight. ", 5)
	chunks := ChunkPages(NormalizePages(pagesOf(long, "PAGE 2", long)), 3)

	got := Segment(chunks[0].Text)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %q", len(got), got)
	}
}

func TestSplitFormFeeds(t *testing.T) {
	pages := splitFormFeeds("page one\fpage two\f\n")
	if len(pages) != 2 || pages[1].Number != 2 || pages[1].Text != "page two" {
		t.Errorf("splitFormFeeds = %+v", pages)
	}
	if got := splitFormFeeds(" \f\n"); got != nil {
		t.Errorf("blank body gave %d pages", len(got))
	}
}
