// Package heuristics guesses newspaper, edition and publication date from
// filenames and page text. Every lookup is ordered: the first match wins, so the
// tables are slices, never maps.
package heuristics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pair is one ordered key/value entry of a lookup table.
type Pair struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Tables holds every lookup list the heuristics consult.
type Tables struct {
	Newspapers       []Pair   `yaml:"newspapers"`
	Editions         []string `yaml:"editions"`
	SpecialEditions  []Pair   `yaml:"special_editions"`
	ContentCities    []string `yaml:"content_cities"`
	ContentNewspaper string   `yaml:"content_newspaper"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() *Tables {
	return &Tables{
		Newspapers: []Pair{
			{"HT", "Hindustan Times"},
			{"TOI", "Times of India"},
			{"FE", "Financial Express"},
			{"TH", "The Hindu"},
			{"BL", "Business Line"},
			{"ET", "Economic Times"},
			{"IE", "Indian Express"},
			{"Asian Age", "Asian Age"},
			{"Deccan Chronicle", "Deccan Chronicle"},
			{"Tribune", "Tribune"},
			{"Pioneer", "Pioneer"},
			{"MINT", "Mint"},
			{"Business Standard", "Business Standard"},
			{"Hindu_Hindi", "The Hindu Hindi"},
			{"TH-School", "The Hindu School Edition"},
			{"INDIAN EXPRESS UPSC", "Indian Express UPSC Edition"},
		},
		Editions: []string{
			// metros
			"Delhi", "Mumbai", "Chennai", "Kolkata", "Bangalore", "Hyderabad",
			// tier 2
			"Ahmedabad", "Pune", "Lucknow", "Chandigarh", "Jaipur", "Patna", "Ranchi", "Bhopal", "Nagpur", "Indore",
			"Jalandhar", "Noida", "Ghaziabad", "Kanpur", "Varanasi", "Guwahati", "Thiruvananthapuram", "Vijayawada",
			"Coimbatore", "Visakhapatnam", "Raipur", "Ludhiana", "Dehradun", "Srinagar", "Shimla",
			// international
			"London", "New York", "Dubai", "Doha", "Singapore", "International",
		},
		SpecialEditions: []Pair{
			{"school", "School Edition"},
			{"student", "Student Edition"},
			{"upsc", "UPSC IAS Edition"},
			{"ias", "UPSC IAS Edition"},
			{"cbse", "CBSE Special Edition"},
			{"ad free", "Ad-Free Edition"},
			{"ad-free", "Ad-Free Edition"},
		},
		ContentCities: []string{
			"Chennai", "Hyderabad", "Mumbai", "Bengaluru", "Kolkata", "Delhi", "Noida", "Coimbatore",
			"Madurai", "Thiruvananthapuram", "Kochi", "Lucknow", "Patna", "Cuttack", "Visakhapatnam",
			"Mangaluru", "Tiruchirapalli", "Hubballi", "Malappuram", "Mohali", "Vijayawada",
		},
		ContentNewspaper: "The Hindu",
	}
}

// LoadTables reads a YAML file and overlays every non-empty section on the
// defaults. An empty path returns the defaults.
func LoadTables(path string) (*Tables, error) {
	t := DefaultTables()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse tables file %s: %w", path, err)
	}

	if len(override.Newspapers) > 0 {
		t.Newspapers = override.Newspapers
	}
	if len(override.Editions) > 0 {
		t.Editions = override.Editions
	}
	if len(override.SpecialEditions) > 0 {
		t.SpecialEditions = override.SpecialEditions
	}
	if len(override.ContentCities) > 0 {
		t.ContentCities = override.ContentCities
	}
	if override.ContentNewspaper != "" {
		t.ContentNewspaper = override.ContentNewspaper
	}
	return t, nil
}
