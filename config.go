package ctnsum

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the processor options.
//
//	markers:
//	  selfPickup: 自提
//	  truck: 卡车派送
//	headerTokens: [ctn, 箱数]
//	emptyRowLimit: 10
//	sheet: Sheet1
//	output:
//	  sheetName: Summary
//	  dateLayout: 1/2/2006
//	rules:
//	  - name: ups
//	    when: note contains "UPS"
//	    kind: destination
//	    destination: UPS
//
// Zero values keep the defaults. A non-empty rules list replaces the default table.
type Config struct {
	Markers       MarkerConfig `yaml:"markers"`
	HeaderTokens  []string     `yaml:"headerTokens,omitempty"`
	EmptyRowLimit int          `yaml:"emptyRowLimit,omitempty"`
	Sheet         string       `yaml:"sheet,omitempty"`
	Output        OutputConfig `yaml:"output"`
	Rules         []Rule       `yaml:"rules,omitempty"`
}

// MarkerConfig holds the note substrings used by the default rules.
type MarkerConfig struct {
	SelfPickup string `yaml:"selfPickup,omitempty"`
	Truck      string `yaml:"truck,omitempty"`
}

// OutputConfig configures the rendered summary workbook.
type OutputConfig struct {
	SheetName  string `yaml:"sheetName,omitempty"`
	DateLayout string `yaml:"dateLayout,omitempty"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes and validates its rule table.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Rules) > 0 {
		for _, issue := range ValidateRules(cfg.Rules) {
			if issue.Severity == SeverityError {
				return nil, fmt.Errorf("%w: %s", ErrInvalidRule, issue)
			}
		}
	}
	return &cfg, nil
}

// Options converts the configuration into processor options.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Markers.SelfPickup != "" {
		opts = append(opts, WithSelfPickupMarker(c.Markers.SelfPickup))
	}
	if c.Markers.Truck != "" {
		opts = append(opts, WithTruckMarker(c.Markers.Truck))
	}
	if len(c.HeaderTokens) > 0 {
		opts = append(opts, WithHeaderTokens(c.HeaderTokens...))
	}
	if c.EmptyRowLimit > 0 {
		opts = append(opts, WithEmptyRowLimit(c.EmptyRowLimit))
	}
	if c.Sheet != "" {
		opts = append(opts, WithSheet(c.Sheet))
	}
	if c.Output.SheetName != "" {
		opts = append(opts, WithSheetName(c.Output.SheetName))
	}
	if c.Output.DateLayout != "" {
		opts = append(opts, WithDateLayout(c.Output.DateLayout))
	}
	if len(c.Rules) > 0 {
		opts = append(opts, WithRules(c.Rules))
	}
	return opts
}
