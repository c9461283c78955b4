package parser

import (
	"fmt"
	"slices"
	"strings"
)

// Raven reads Raven Pro selection tables.
func Raven() *Table {
	return &Table{
		name:       "raven",
		aliases:    []string{"rvn"},
		comma:      '\t',
		header:     true,
		pattern:    "*.selections.txt",
		start:      Column{Name: "Begin Time (s)", Index: 3},
		end:        Column{Name: "End Time (s)", Index: 4},
		label:      Column{Name: "Annotation", Index: 10},
		confidence: &Column{Name: "Confidence"},
	}
}

// Audacity reads Audacity label tracks.
func Audacity() *Table {
	return &Table{
		name:    "audacity",
		aliases: []string{"ac"},
		comma:   '\t',
		pattern: "*.txt",
		start:   Column{Index: 0},
		end:     Column{Index: 1},
		label:   Column{Index: 2},
	}
}

// SonicVisualiser reads Sonic Visualiser region layers exported as CSV.
func SonicVisualiser() *Table {
	return &Table{
		name:    "sonic-visualizer",
		aliases: []string{"sv"},
		comma:   ',',
		pattern: "*.csv",
		start:   Column{Name: "START", Index: 0},
		end:     Column{Name: "END", Index: 1},
		label:   Column{Name: "LABEL", Index: 4},
	}
}

// Kaleidoscope reads Kaleidoscope cluster tables. One table covers many
// recordings, named by the FOLDER and IN FILE columns.
func Kaleidoscope() *Table {
	return &Table{
		name:          "kaleidoscope",
		aliases:       []string{"ks"},
		comma:         ',',
		header:        true,
		pattern:       "*.csv",
		start:         Column{Name: "OFFSET", Index: 3},
		end:           Column{Name: "DURATION", Index: 4},
		label:         Column{Name: "scientific_name", Index: 5},
		endIsDuration: true,
		recording: []Column{
			{Name: "FOLDER", Index: 1},
			{Name: "IN FILE", Index: 2},
		},
	}
}

// BirdNET reads BirdNET-Analyzer CSV output.
func BirdNET() *Table {
	return &Table{
		name:       "birdnet",
		aliases:    []string{"bn"},
		comma:      ',',
		header:     true,
		pattern:    "*.csv",
		start:      Column{Name: "start_time", Index: 3},
		end:        Column{Name: "end_time", Index: 4},
		label:      Column{Name: "label", Index: 6},
		confidence: &Column{Name: "confidence"},
	}
}

// Formats returns every supported format in a fixed order.
func Formats() []Parser {
	return []Parser{Raven(), Audacity(), SonicVisualiser(), Kaleidoscope(), BirdNET()}
}

// Names returns the canonical name of every supported format.
func Names() []string {
	var names []string
	for _, p := range Formats() {
		names = append(names, p.Name())
	}
	return names
}

// Lookup returns the parser known by name or one of its aliases. Matching
// ignores case.
func Lookup(name string) (Parser, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Formats() {
		if p.Name() == name || slices.Contains(p.Aliases(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}
