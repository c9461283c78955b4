//go:build ignore

// Generate a synthetic annotation corpus for benchmarking tytalb.
// Writes Raven selection tables as ground truth and BirdNET CSV tables as
// predictions, one pair per recording.
// Usage: go run ./scripts/gen-synthetic.go [-out dir] [-recordings n] [-seed s]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

var species = []string{"Tyto alba", "Strix aluco", "Athene noctua", "Asio otus"}

type call struct {
	start, end float64
	label      string
	confidence float64
}

func main() {
	outDir := flag.String("out", "testdata/synthetic", "output directory")
	recordings := flag.Int("recordings", 50, "number of recordings")
	length := flag.Float64("length", 600, "recording length in seconds")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewPCG(*seed, *seed))

	for _, side := range []string{"gt", "tv"} {
		if err := os.MkdirAll(filepath.Join(*outDir, side), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", side, err)
			os.Exit(1)
		}
	}

	var truthCalls, predCalls int
	for i := range *recordings {
		name := fmt.Sprintf("rec%04d", i)
		truth := groundTruth(rng, *length)
		pred := predict(rng, truth, *length)

		if err := writeRaven(filepath.Join(*outDir, "gt", name+".selections.txt"), truth); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
		if err := writeBirdNET(filepath.Join(*outDir, "tv", name+".BirdNET.results.csv"), pred); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
		truthCalls += len(truth)
		predCalls += len(pred)
	}

	fmt.Printf("Wrote %d recordings (%d ground-truth calls, %d predictions) to %s\n",
		*recordings, truthCalls, predCalls, *outDir)
}

// groundTruth places non-overlapping calls of 1 to 4 seconds with gaps of up
// to 30 seconds.
func groundTruth(rng *rand.Rand, length float64) []call {
	var calls []call
	t := rng.Float64() * 30
	for {
		dur := 1 + rng.Float64()*3
		if t+dur > length {
			return calls
		}
		calls = append(calls, call{start: t, end: t + dur, label: species[rng.IntN(len(species))], confidence: 1})
		t += dur + rng.Float64()*30
	}
}

// predict imitates a detector working in 3 second windows: most calls are
// found with jittered bounds and a high confidence, some are missed or given
// the wrong species, and false alarms appear with a low confidence.
func predict(rng *rand.Rand, truth []call, length float64) []call {
	var out []call
	for _, c := range truth {
		if rng.Float64() < 0.15 {
			continue
		}
		label := c.label
		if rng.Float64() < 0.1 {
			label = species[rng.IntN(len(species))]
		}
		start := max(0, c.start+rng.NormFloat64()*0.5)
		out = append(out, call{
			start:      start,
			end:        start + 3,
			label:      label,
			confidence: 0.5 + rng.Float64()*0.5,
		})
	}

	for range rng.IntN(6) {
		start := rng.Float64() * (length - 3)
		out = append(out, call{
			start:      start,
			end:        start + 3,
			label:      species[rng.IntN(len(species))],
			confidence: rng.Float64() * 0.6,
		})
	}
	return out
}

func writeRaven(path string, calls []call) error {
	header := []string{
		"Selection", "View", "Channel", "Begin Time (s)", "End Time (s)",
		"Low Freq (Hz)", "High Freq (Hz)", "Annotation",
	}
	rows := make([][]string, 0, len(calls))
	for i, c := range calls {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), "Spectrogram 1", "1",
			formatFloat(c.start), formatFloat(c.end),
			"500", "8000", c.label,
		})
	}
	return writeTable(path, '\t', header, rows)
}

func writeBirdNET(path string, calls []call) error {
	header := []string{"start_time", "end_time", "scientific_name", "label", "confidence"}
	rows := make([][]string, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, []string{
			formatFloat(c.start), formatFloat(c.end),
			c.label, c.label, formatFloat(c.confidence),
		})
	}
	return writeTable(path, ',', header, rows)
}

func writeTable(path string, comma rune, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
