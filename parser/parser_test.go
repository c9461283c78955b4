package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vogelwarte/tytalb/segment"
)

const ravenTable = "Selection\tView\tChannel\tBegin Time (s)\tEnd Time (s)\tLow Freq (Hz)\tHigh Freq (Hz)\tAnnotation\n" +
	"1\tSpectrogram 1\t1\t0.5\t1.5\t100\t2000\tTyto alba\n" +
	"2\tSpectrogram 1\t1\t3\t4.25\t100\t2000\tStrix aluco\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		p     *Table
		input string
		want  []Row
	}{
		{
			name:  "raven",
			p:     Raven(),
			input: ravenTable,
			want: []Row{
				{Segment: segment.Segment{Start: 0.5, End: 1.5, Label: "Tyto alba", Confidence: 1, Line: 2}},
				{Segment: segment.Segment{Start: 3, End: 4.25, Label: "Strix aluco", Confidence: 1, Line: 3}},
			},
		},
		{
			name: "raven with confidence",
			p:    Raven(),
			input: "Begin Time (s)\tEnd Time (s)\tAnnotation\tConfidence\n" +
				"0\t3\tTyto alba\t0.7\n",
			want: []Row{
				{Segment: segment.Segment{Start: 0, End: 3, Label: "Tyto alba", Confidence: 0.7, Line: 2}},
			},
		},
		{
			name:  "audacity skips empty lines",
			p:     Audacity(),
			input: "0.5\t1.5\tA\n\n2\t3\tB\n",
			want: []Row{
				{Segment: segment.Segment{Start: 0.5, End: 1.5, Label: "A", Confidence: 1, Line: 1}},
				{Segment: segment.Segment{Start: 2, End: 3, Label: "B", Confidence: 1, Line: 3}},
			},
		},
		{
			name:  "audacity skips blank cells",
			p:     Audacity(),
			input: "0.5\t1.5\tA\n\t\t\n",
			want: []Row{
				{Segment: segment.Segment{Start: 0.5, End: 1.5, Label: "A", Confidence: 1, Line: 1}},
			},
		},
		{
			name:  "sonic visualiser",
			p:     SonicVisualiser(),
			input: "0.5,1.5,0,0,A\n2,3,0,0,B\n",
			want: []Row{
				{Segment: segment.Segment{Start: 0.5, End: 1.5, Label: "A", Confidence: 1, Line: 1}},
				{Segment: segment.Segment{Start: 2, End: 3, Label: "B", Confidence: 1, Line: 2}},
			},
		},
		{
			name: "kaleidoscope",
			p:    Kaleidoscope(),
			input: "INDIR,FOLDER,IN FILE,OFFSET,DURATION,scientific_name\n" +
				"/data,site1,a.wav,1.5,2,Tyto alba\n" +
				"/data,site2,b.WAV,0,1,Strix aluco\n",
			want: []Row{
				{Recording: "site1/a", Segment: segment.Segment{Start: 1.5, End: 3.5, Label: "Tyto alba", Confidence: 1, Line: 2}},
				{Recording: "site2/b", Segment: segment.Segment{Start: 0, End: 1, Label: "Strix aluco", Confidence: 1, Line: 3}},
			},
		},
		{
			name: "birdnet",
			p:    BirdNET(),
			input: "start_time,end_time,scientific_name,common_name,label,confidence\n" +
				"0,3,Tyto alba,Barn Owl,Tyto alba,0.85\n" +
				"3,6,Strix aluco,Tawny Owl,Strix aluco,\n",
			want: []Row{
				{Segment: segment.Segment{Start: 0, End: 3, Label: "Tyto alba", Confidence: 0.85, Line: 2}},
				{Segment: segment.Segment{Start: 3, End: 6, Label: "Strix aluco", Confidence: 1, Line: 3}},
			},
		},
		{
			name:  "header only",
			p:     Raven(),
			input: "Begin Time (s)\tEnd Time (s)\tAnnotation\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Parse(strings.NewReader(tt.input), "table")
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() returned %d rows, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		p        *Table
		input    string
		wantErr  error
		wantLine int
	}{
		{
			name:     "bad number",
			p:        Raven(),
			input:    "Begin Time (s)\tEnd Time (s)\tAnnotation\n0\t1\tA\nabc\t2\tB\n",
			wantErr:  ErrMalformedRow,
			wantLine: 3,
		},
		{
			name:     "missing column",
			p:        Raven(),
			input:    "Begin Time (s)\tEnd Time (s)\tLabel\n0\t1\tA\n",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
		{
			name:     "short row",
			p:        SonicVisualiser(),
			input:    "0,1,0,0,A\n0,1\n",
			wantErr:  ErrMalformedRow,
			wantLine: 2,
		},
		{
			name:     "empty table with header",
			p:        BirdNET(),
			input:    "",
			wantErr:  ErrMissingColumn,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Parse(strings.NewReader(tt.input), "table.txt")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var re *RowError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RowError, got %T", err)
			}
			if re.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", re.Line, tt.wantLine)
			}
			if re.Path != "table.txt" {
				t.Errorf("Path = %q, want table.txt", re.Path)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"raven", "raven"},
		{"rvn", "raven"},
		{"AC", "audacity"},
		{"sv", "sonic-visualizer"},
		{"ks", "kaleidoscope"},
		{" bn ", "birdnet"},
	}
	for _, tt := range tests {
		p, err := Lookup(tt.name)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", tt.name, err)
			continue
		}
		if p.Name() != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.name, p.Name(), tt.want)
		}
	}

	if _, err := Lookup("excel"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got: %v", err)
	}
}

func TestIsTable(t *testing.T) {
	tests := []struct {
		p    *Table
		path string
		want bool
	}{
		{Raven(), "dir/a.selections.txt", true},
		{Raven(), "dir/a.txt", false},
		{Audacity(), "a.txt", true},
		{Audacity(), "a.csv", false},
		{BirdNET(), "a.BirdNET.results.csv", true},
	}
	for _, tt := range tests {
		if got := tt.p.IsTable(tt.path); got != tt.want {
			t.Errorf("%s.IsTable(%q) = %v, want %v", tt.p.Name(), tt.path, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.selections.txt"), ravenTable)
	writeFile(t, filepath.Join(dir, "empty.selections.txt"), "Begin Time (s)\tEnd Time (s)\tAnnotation\n")
	writeFile(t, filepath.Join(dir, "sub", "b.selections.txt"), ravenTable)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a table")

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"flat", false, []string{"a", "empty"}},
		{"recursive", true, []string{"a", "empty", "sub/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Load(context.Background(), dir, Raven(), LoadOptions{Recursive: tt.recursive, Logger: quietLogger()})
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			got := set.Recordings()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Recordings() = %v, want %v", got, tt.want)
			}
			segs, ok := set.Segments("empty")
			if !ok || len(segs) != 0 {
				t.Errorf("empty recording = %v, %v; want known with no segments", segs, ok)
			}
			segs, _ = set.Segments("a")
			if len(segs) != 2 || segs[0].Label != "Tyto alba" {
				t.Errorf("segments of a = %+v", segs)
			}
		})
	}
}

func TestLoad_EmptyMultiRecordingTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cluster.csv"), "INDIR,FOLDER,IN FILE,OFFSET,DURATION,scientific_name\n")

	set, err := Load(context.Background(), dir, Kaleidoscope(), LoadOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if n := set.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0: %v", n, set.Recordings())
	}
}

func TestMultiRecording(t *testing.T) {
	for _, p := range Formats() {
		want := p.Name() == "kaleidoscope"
		if got := p.MultiRecording(); got != want {
			t.Errorf("%s.MultiRecording() = %v, want %v", p.Name(), got, want)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.selections.txt"), "Begin Time (s)\tEnd Time (s)\tAnnotation\nx\t1\tA\n")

	_, err := Load(context.Background(), dir, Raven(), LoadOptions{Logger: quietLogger()})
	var re *RowError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RowError, got: %v", err)
	}
	if !strings.HasSuffix(re.Path, "bad.selections.txt") {
		t.Errorf("Path = %q", re.Path)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "missing"), Raven(), LoadOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, dir, Raven(), LoadOptions{Logger: quietLogger()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestRewrite(t *testing.T) {
	var out strings.Builder
	err := Raven().Rewrite(strings.NewReader(ravenTable), &out, "a.selections.txt", strings.ToUpper)
	if err != nil {
		t.Fatalf("Rewrite() failed: %v", err)
	}
	want := strings.ReplaceAll(strings.ReplaceAll(ravenTable, "Tyto alba", "TYTO ALBA"), "Strix aluco", "STRIX ALUCO")
	if out.String() != want {
		t.Errorf("Rewrite() =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestRewriteDir(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "a.txt"), "0\t1\tA\n\n1\t2\tB\n")
	writeFile(t, filepath.Join(in, "sub", "b.txt"), "0\t1\tC\n")

	n, err := RewriteDir(context.Background(), in, out, Audacity(), strings.ToLower, LoadOptions{Recursive: true, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("RewriteDir() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("RewriteDir() = %d, want 2", n)
	}

	tests := []struct {
		path string
		want string
	}{
		{"a.txt", "0\t1\ta\n1\t2\tb\n"},
		{filepath.Join("sub", "b.txt"), "0\t1\tc\n"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(out, tt.path))
		if err != nil {
			t.Fatalf("reading %s: %v", tt.path, err)
		}
		if string(data) != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, data, tt.want)
		}
	}

	orig, err := os.ReadFile(filepath.Join(in, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != "0\t1\tA\n\n1\t2\tB\n" {
		t.Errorf("input modified: %q", orig)
	}
}
