package heuristics

import (
	"regexp"
	"strings"
	"time"

	"github.com/markdave123-py/newsprint/internal/core"
	"github.com/markdave123-py/newsprint/internal/models"
)

// Placeholders used when a lookup finds nothing.
const (
	UnknownNewspaper = "Unknown Newspaper"
	EditionNotFound  = "Edition not found"
	DateNotFound     = "Date not found"
	Unknown          = "Unknown"
)

// editionScanLines is how many leading page lines the edition fallback reads.
const editionScanLines = 10

var (
	exoticSeparators = regexp.MustCompile(`[~‹•@+]`)
	dateSeparators   = regexp.MustCompile(`[-_/.]`)

	filenameDatePatterns = []struct {
		re     *regexp.Regexp
		layout string
	}{
		{regexp.MustCompile(`\d{4}[-_/.]\d{2}[-_/.]\d{2}`), "2006-01-02"},
		{regexp.MustCompile(`\d{2}[-_/.]\d{2}[-_/.]\d{4}`), "02-01-2006"},
		{regexp.MustCompile(`\d{2}[-_/.]\d{2}[-_/.]\d{2}`), "02-01-06"},
	}

	weekdayDate = regexp.MustCompile(`(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),\s+(\w+\s+\d{1,2},\s+\d{4})`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// Extractor runs the table-driven lookups.
type Extractor struct {
	tables      *Tables
	contentCity *regexp.Regexp
}

// New builds an Extractor over t; nil means DefaultTables.
func New(t *Tables) *Extractor {
	if t == nil {
		t = DefaultTables()
	}
	e := &Extractor{tables: t}
	if len(t.ContentCities) > 0 {
		quoted := make([]string, len(t.ContentCities))
		for i, c := range t.ContentCities {
			quoted[i] = regexp.QuoteMeta(c)
		}
		e.contentCity = regexp.MustCompile(`(` + strings.Join(quoted, "|") + `)`)
	}
	return e
}

// normalizeFilename replaces separators with spaces and lowercases.
func normalizeFilename(name string) string {
	r := strings.NewReplacer("_", " ", "-", " ", "•", " ")
	return strings.ToLower(r.Replace(name))
}

// NewspaperFromFilename maps filename abbreviations to a full newspaper name.
func (e *Extractor) NewspaperFromFilename(filename string) string {
	cleaned := normalizeFilename(filename)
	for _, p := range e.tables.Newspapers {
		if strings.Contains(cleaned, strings.ToLower(p.Key)) {
			return p.Value
		}
	}
	return UnknownNewspaper
}

// Edition tries the filename city list, then special-edition keywords, then the
// first lines of the page text.
func (e *Extractor) Edition(filename, pageText string) string {
	cleaned := normalizeFilename(filename)

	for _, city := range e.tables.Editions {
		if strings.Contains(cleaned, strings.ToLower(city)) {
			return city + " Edition"
		}
	}

	for _, p := range e.tables.SpecialEditions {
		if strings.Contains(cleaned, strings.ToLower(p.Key)) {
			return p.Value
		}
	}

	lines := strings.Split(pageText, "\n")
	if len(lines) > editionScanLines {
		lines = lines[:editionScanLines]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, city := range e.tables.Editions {
			if strings.Contains(lower, strings.ToLower(city)) {
				return city + " Edition"
			}
		}
	}

	return EditionNotFound
}

// DateFromFilename finds a numeric date in a filename and renders it as
// "January 02, 2006".
func DateFromFilename(filename string) string {
	clean := exoticSeparators.ReplaceAllString(filename, "-")

	for _, p := range filenameDatePatterns {
		raw := p.re.FindString(clean)
		if raw == "" {
			continue
		}
		normalized := dateSeparators.ReplaceAllString(raw, "-")
		t, err := time.Parse(p.layout, normalized)
		if err != nil {
			continue
		}
		return t.Format("January 02, 2006")
	}
	return DateNotFound
}

// DateFromText finds "Weekday, Month D, YYYY" and returns it as YYYY-MM-DD.
// Only the first match is considered.
func DateFromText(text string) *string {
	m := weekdayDate.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	t, err := time.Parse("January 2, 2006", spaceRun.ReplaceAllString(m[2], " "))
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

// CityFromText returns the first content city mentioned in text.
func (e *Extractor) CityFromText(text string) *string {
	if e.contentCity == nil {
		return nil
	}
	return models.StringPtr(e.contentCity.FindString(text))
}

// ContentMetadata derives metadata from article text alone. The newspaper is a
// fixed name in this context; only date and city are read from the text.
func (e *Extractor) ContentMetadata(text string) (newspaper string, date, city *string) {
	return e.tables.ContentNewspaper, DateFromText(text), e.CityFromText(text)
}

// FileMetadata combines the filename lookups with the page-text edition fallback.
func (e *Extractor) FileMetadata(filename, pageText string) models.FileMetadata {
	return models.FileMetadata{
		Newspaper: e.NewspaperFromFilename(filename),
		Date:      DateFromFilename(filename),
		Edition:   e.Edition(filename, pageText),
	}
}

// EntityMetadata picks the first plausible organisation, place and date entity.
func EntityMetadata(ents []core.Entity) models.EntityMetadata {
	md := models.EntityMetadata{NewspaperName: Unknown, Edition: Unknown, Date: Unknown}

	for _, ent := range ents {
		text := strings.TrimSpace(ent.Text)
		if ent.Label == core.LabelOrg && len(text) > 5 && len(text) < 50 {
			md.NewspaperName = text
			break
		}
	}

	for _, ent := range ents {
		text := strings.TrimSpace(ent.Text)
		if (ent.Label == core.LabelGPE || ent.Label == core.LabelLoc) && len(text) > 3 && len(text) < 40 {
			md.Edition = text
			break
		}
	}

	for _, ent := range ents {
		if ent.Label != core.LabelDate {
			continue
		}
		t, err := time.Parse("2 January 2006", strings.TrimSpace(ent.Text))
		if err != nil {
			continue
		}
		md.Date = t.Format("02 January 2006")
		break
	}

	return md
}
