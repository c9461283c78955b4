// Package config holds the YAML run configuration of the tytalb command.
package config

// Config is the top-level run configuration. Every field may also be set on
// the command line, which takes precedence.
type Config struct {
	Validate    Validate `yaml:"validate"`
	GroundTruth Source   `yaml:"ground_truth"`
	ToValidate  Source   `yaml:"to_validate"`
	Sweep       Sweep    `yaml:"sweep"`
	Output      Output   `yaml:"output"`
	Log         Log      `yaml:"log"`
}

// Validate controls scoring.
type Validate struct {
	Binary         bool     `yaml:"binary"`
	PositiveLabels []string `yaml:"positive_labels"`
	LateStart      bool     `yaml:"late_start"`
	EarlyStop      bool     `yaml:"early_stop"`
	// Workers is the number of recordings reconciled at once; 0 means one
	// per CPU.
	Workers    int    `yaml:"workers"`
	Background string `yaml:"background"`
}

// Source locates one side of the comparison.
type Source struct {
	Dir       string `yaml:"dir"`
	Format    string `yaml:"format"`
	Recursive bool   `yaml:"recursive"`
	// Labels is an optional labels.json applied after parsing.
	Labels string `yaml:"labels"`
}

// Sweep controls the confidence-threshold sweep.
type Sweep struct {
	Min             float64 `yaml:"min"`
	Max             float64 `yaml:"max"`
	Step            float64 `yaml:"step"`
	Target          string  `yaml:"target"`
	Basis           string  `yaml:"basis"`
	PrecisionWeight float64 `yaml:"precision_weight"`
	RecallWeight    float64 `yaml:"recall_weight"`
}

// Output selects what is written and where.
type Output struct {
	Dir string `yaml:"dir"`
	// JSON also writes report.json.
	JSON bool `yaml:"json"`
	// MetricsTextfile, when set, receives the metrics in the Prometheus text
	// format.
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Log configures the process logger.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ToValidate: Source{Format: "raven"},
		Sweep: Sweep{
			Min:   0.1,
			Max:   0.9,
			Step:  0.1,
			Basis: "time",
		},
		Output: Output{Dir: "."},
		Log:    Log{Level: "info", Format: "text"},
	}
}
