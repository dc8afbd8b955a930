package config

// Config represents the donorscope pipeline configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Persona  PersonaConfig  `mapstructure:"persona"`
	Database DatabaseConfig `mapstructure:"database"`
}

// InputConfig names the input directory and the tabular sources expected in it
type InputConfig struct {
	Dir     string                  `mapstructure:"dir"`
	Sources map[string]SourceConfig `mapstructure:"sources"`
}

// SourceConfig declares one CSV source: its file name, the columns that must
// be present, and the working names raw export headers are renamed to.
// The rename map exists because CRM exports carry managed-package prefixes
// (wbsendit__*, npo02__*) that nobody wants to type in a join path.
type SourceConfig struct {
	File     string            `mapstructure:"file"`
	Required []string          `mapstructure:"required"`
	Renames  map[string]string `mapstructure:"renames"`
}

// OutputConfig configures where run artifacts land
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`        // default "TestOutput"
	PDFReport bool   `mapstructure:"pdf_report"` // render charts into a PDF
}

// PipelineConfig declares the join path as data. Changing the key
// relationships between sources is an edit here, not a code change.
type PipelineConfig struct {
	Source     string      `mapstructure:"source"`      // source relation name (the campaign rows being resolved)
	Hops       []HopConfig `mapstructure:"hops"`        // ordered equi-join hops
	PersonaKey string      `mapstructure:"persona_key"` // joined column the persona table is keyed by
}

// HopConfig is one equi-join step: left relation's key column matched against
// the right relation's key column after normalization.
type HopConfig struct {
	Left     string `mapstructure:"left" yaml:"left"`
	LeftKey  string `mapstructure:"left_key" yaml:"left_key"`
	Right    string `mapstructure:"right" yaml:"right"`
	RightKey string `mapstructure:"right_key" yaml:"right_key"`
	FoldCase bool   `mapstructure:"fold_case" yaml:"fold_case"` // identifiers are case-sensitive codes unless set
}

// PersonaConfig holds the classification thresholds
type PersonaConfig struct {
	AmountThreshold  float64 `mapstructure:"amount_threshold"`   // high-value boundary on total donations
	DormancyMaxYears int     `mapstructure:"dormancy_max_years"` // active if dormant for at most this many years
	ReferenceYear    int     `mapstructure:"reference_year"`     // 0 = current year
}

// DatabaseConfig configures the SQLite run audit store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}
