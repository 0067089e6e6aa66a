package ingestion_engine

import (
	"strings"
	"testing"
)

func TestSegment_LengthRule(t *testing.T) {
	exact := strings.Repeat("x", MinArticleLen)
	longer := strings.Repeat("y", MinArticleLen+1)

	got := Segment(exact + "\n\n-----\n\n" + longer)
	if len(got) != 1 || got[0] != longer {
		t.Fatalf("Segment kept %d fragments, want only the %d-char one", len(got), MinArticleLen+1)
	}
}

func TestSegment_DropsPageMarkerFragments(t *testing.T) {
	body := strings.Repeat("article text ", 20)
	in := "PAGE 4 " + body + "\n\n-----\n\n" + body

	got := Segment(in)
	if len(got) != 1 {
		t.Fatalf("got %d fragments, want 1", len(got))
	}
	if strings.HasPrefix(got[0], PageMarkerPrefix) {
		t.Errorf("page-marker fragment leaked: %q", got[0][:20])
	}
}

func TestSegment_SplitsOnPageMarkerLines(t *testing.T) {
	a := strings.Repeat("alpha ", 30)
	b := strings.Repeat("beta ", 30)
	in := PageMarker(1) + "\n\n" + a + "\n\n" + PageMarker(2) + "\n\n" + b

	got := Segment(in)
	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2", len(got))
	}
	if got[0] != strings.TrimSpace(a) || got[1] != strings.TrimSpace(b) {
		t.Errorf("fragments out of order or not trimmed: %q / %q", got[0][:10], got[1][:10])
	}
}

func TestSegment_NormalizedInput(t *testing.T) {
	first := "The council met on Tuesday to discuss the new budget for roads, schools and hospitals in the district."
	second := "Rain lashed the coast through the night, and officials said the flood warning would stay in place until Friday."
	text := Normalize(first + "\n\n\n" + second + "\n\nshort")

	got := Segment(text)
	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2: %q", len(got), got)
	}
	for _, frag := range got {
		if len(frag) <= MinArticleLen {
			t.Errorf("fragment too short: %q", frag)
		}
	}
}

func TestSegment_Empty(t *testing.T) {
	if got := Segment(""); len(got) != 0 {
		t.Errorf("Segment(\"\") = %q, want none", got)
	}
}
