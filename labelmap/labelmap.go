// Package labelmap rewrites annotation labels according to a labels.json
// file.
//
// The file has three optional keys:
//
//	{
//	  "map":       {"Tyto.*": "Tyto alba", "Strix aluco|Tawny.*": "Strix aluco"},
//	  "whitelist": ["Tyto alba", "Strix aluco"],
//	  "blacklist": ["Unknown"]
//	}
//
// Map patterns are regular expressions tried in file order and anchored at
// the start of the label; the first match replaces the label. The result is
// then filtered: with a whitelist, any label outside it becomes the
// background label; otherwise labels on the blacklist do.
package labelmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/segment"
)

// ErrInvalid indicates a labels file that cannot be decoded or holds an
// invalid pattern.
var ErrInvalid = errors.New("labelmap: invalid labels file")

type rule struct {
	pattern *regexp.Regexp
	label   string
}

// Mapper maps labels. The zero value and a nil *Mapper map every label to
// itself.
type Mapper struct {
	rules      []rule
	whitelist  map[string]struct{}
	blacklist  map[string]struct{}
	background string
}

type file struct {
	Map       *orderedmap.OrderedMap[string, string] `json:"map"`
	Whitelist []string                              `json:"whitelist"`
	Blacklist []string                              `json:"blacklist"`
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithBackground sets the label filtered labels become (default: "Noise").
func WithBackground(label string) Option {
	return func(m *Mapper) {
		if label != "" {
			m.background = label
		}
	}
}

// Parse builds a Mapper from the contents of a labels file.
func Parse(data []byte, opts ...Option) (*Mapper, error) {
	f := file{Map: orderedmap.New[string, string]()}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	m := &Mapper{background: annotation.DefaultBackground}
	for _, opt := range opts {
		opt(m)
	}
	if f.Map == nil {
		f.Map = orderedmap.New[string, string]()
	}
	for pair := f.Map.Oldest(); pair != nil; pair = pair.Next() {
		re, err := regexp.Compile(`^(?:` + pair.Key + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", ErrInvalid, pair.Key, err)
		}
		m.rules = append(m.rules, rule{pattern: re, label: pair.Value})
	}
	if len(f.Whitelist) > 0 {
		m.whitelist = lo.Keyify(f.Whitelist)
	}
	if len(f.Blacklist) > 0 {
		m.blacklist = lo.Keyify(f.Blacklist)
	}
	return m, nil
}

// Load reads a labels file. A missing file yields a Mapper that changes
// nothing; an empty path does too.
func Load(path string, logger *slog.Logger, opts ...Option) (*Mapper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return &Mapper{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("labels file not found, labels kept as they are", "path", path)
		return &Mapper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading labels file: %w", err)
	}

	m, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded labels file",
		"path", path,
		"rules", len(m.rules),
		"whitelist", len(m.whitelist),
		"blacklist", len(m.blacklist),
	)
	return m, nil
}

// Map returns the label label maps to.
func (m *Mapper) Map(label string) string {
	if m == nil {
		return label
	}
	for _, r := range m.rules {
		if r.pattern.MatchString(label) {
			label = r.label
			break
		}
	}
	if m.filtered(label) {
		return m.bg()
	}
	return label
}

func (m *Mapper) filtered(label string) bool {
	if m.whitelist != nil {
		_, ok := m.whitelist[label]
		return !ok
	}
	_, ok := m.blacklist[label]
	return ok
}

func (m *Mapper) bg() string {
	if m.background == "" {
		return annotation.DefaultBackground
	}
	return m.background
}

// Identity reports whether m leaves every label unchanged.
func (m *Mapper) Identity() bool {
	return m == nil || (len(m.rules) == 0 && m.whitelist == nil && m.blacklist == nil)
}

// Apply returns a copy of src with every label mapped. src is not modified.
func (m *Mapper) Apply(src annotation.Source) *annotation.Set {
	return annotation.Map(src, func(seg segment.Segment) segment.Segment {
		return seg.WithLabel(m.Map(seg.Label))
	})
}

// Rules returns the patterns in the order they are tried.
func (m *Mapper) Rules() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.pattern.String()
	}
	return out
}
