package parser

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/Vogelwarte/tytalb/annotation"
)

// LoadOptions controls how a directory of tables is read.
type LoadOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// Logger receives one debug record per table (default: slog.Default()).
	Logger *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Tables returns the sorted paths of the tables under dir that p recognises.
func Tables(dir string, p Parser, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading table directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading table directory: %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if p.IsTable(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Load parses every table under dir into a set keyed by recording. The
// recording of a table is its path relative to dir, cut at the first dot of
// the file name, so "site1/a.selections.txt" describes recording "site1/a".
// A table with no rows still registers its recording, unless its rows name
// their own recordings.
func Load(ctx context.Context, dir string, p Parser, opts LoadOptions) (*annotation.Set, error) {
	logger := opts.logger()
	paths, err := Tables(dir, p, opts.Recursive)
	if err != nil {
		return nil, err
	}

	set := annotation.NewSet()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := parseFile(path, p)
		if err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", path, err)
		}
		id := annotation.RecordingID(rel)
		if len(rows) == 0 && !p.MultiRecording() {
			set.Add(id)
		}
		for _, row := range rows {
			rid := id
			if row.Recording != "" {
				rid = row.Recording
			}
			set.Add(rid, row.Segment)
		}
		logger.Debug("parsed table", "path", path, "format", p.Name(), "recording", id, "rows", len(rows))
	}
	set.Sort()

	logger.Info("loaded annotations",
		"dir", dir,
		"format", p.Name(),
		"tables", len(paths),
		"recordings", set.Len(),
		"segments", set.NumSegments(),
	)
	return set, nil
}

func parseFile(path string, p Parser) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.Parse(f, path)
}

// RewriteDir rewrites the labels of every table under in with fn, writing
// the results under out with the same relative paths. When out equals in the
// tables are replaced. It returns the number of tables written.
func RewriteDir(ctx context.Context, in, out string, p Parser, fn func(string) string, opts LoadOptions) (n int, err error) {
	logger := opts.logger()
	paths, err := Tables(in, p, opts.Recursive)
	if err != nil {
		return 0, err
	}

	for _, src := range paths {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		rel, err := filepath.Rel(in, src)
		if err != nil {
			return n, fmt.Errorf("relative path of %s: %w", src, err)
		}
		dst := filepath.Join(out, rel)
		if err := rewriteFile(src, dst, p, fn); err != nil {
			return n, err
		}
		n++
		logger.Debug("rewrote table", "src", src, "dst", dst)
	}
	return n, nil
}

// rewriteFile writes through a temporary file next to dst; dst is only
// replaced once the whole table has been written.
func rewriteFile(src, dst string, p Parser, fn func(string) string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening table: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".rewrite-*")
	if err != nil {
		return fmt.Errorf("creating temporary table: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := p.Rewrite(in, tmp, src, fn); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary table: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replacing table: %w", err)
	}
	return nil
}
