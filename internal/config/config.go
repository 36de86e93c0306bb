package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models dubline.yml.
type Config struct {
	Board struct {
		Name       string `yaml:"name"`
		SourceList string `yaml:"source_list"`
		ReviewList string `yaml:"review_list"`
		DoneList   string `yaml:"done_list"`
	} `yaml:"board"`
	Roles struct {
		Narrators []string `yaml:"narrators"`
		Female    []string `yaml:"female"`
		Male      []string `yaml:"male"`
	} `yaml:"roles"`
	Payment struct {
		Cutoff      string `yaml:"cutoff"`
		RollupStart string `yaml:"rollup_start"`
		Rates       struct {
			Narrator      float64 `yaml:"narrator"`
			SpeakerMale   float64 `yaml:"speaker_male"`
			SpeakerFemale float64 `yaml:"speaker_female"`
			Owner         float64 `yaml:"owner"`
			OwnerExpress  float64 `yaml:"owner_express"`
			ExpressBump   float64 `yaml:"express_bump"`
		} `yaml:"rates"`
		Labels struct {
			Express string `yaml:"express"`
			Swap    string `yaml:"swap"`
		} `yaml:"labels"`
	} `yaml:"payment"`
	Duration struct {
		CachePath             string `yaml:"cache_path"`
		Network               bool   `yaml:"network"`
		BudgetSeconds         int    `yaml:"budget_seconds"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		MaxLinks              int    `yaml:"max_links"`
	} `yaml:"duration"`
	Speakers map[string]SpeakerProfile `yaml:"speakers"`
}

// SpeakerProfile carries presentation details for workload reports.
type SpeakerProfile struct {
	Voice        string `yaml:"voice"`
	Availability string `yaml:"availability"`
	Notes        string `yaml:"notes"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with dl init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Board.Name == "" {
		return fmt.Errorf("config.board.name is required")
	}
	if c.Board.SourceList == "" {
		return fmt.Errorf("config.board.source_list is required")
	}
	if len(c.Roles.Narrators) == 0 {
		return fmt.Errorf("config.roles.narrators must list at least one narrator alias")
	}
	if _, err := c.CutoffDate(); err != nil {
		return err
	}
	if _, err := c.RollupStartMonth(); err != nil {
		return err
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"narrator", c.Payment.Rates.Narrator},
		{"speaker_male", c.Payment.Rates.SpeakerMale},
		{"speaker_female", c.Payment.Rates.SpeakerFemale},
		{"owner", c.Payment.Rates.Owner},
		{"owner_express", c.Payment.Rates.OwnerExpress},
		{"express_bump", c.Payment.Rates.ExpressBump},
	}
	for _, r := range rates {
		if r.value <= 0 {
			return fmt.Errorf("config.payment.rates.%s must be positive", r.name)
		}
	}
	if c.Duration.BudgetSeconds <= 0 {
		return fmt.Errorf("config.duration.budget_seconds must be positive")
	}
	if c.Duration.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("config.duration.request_timeout_seconds must be positive")
	}
	if c.Duration.MaxLinks <= 0 {
		return fmt.Errorf("config.duration.max_links must be positive")
	}
	return nil
}

// CutoffDate parses payment.cutoff as a calendar date.
func (c *Config) CutoffDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Payment.Cutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("config.payment.cutoff must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// RollupStartMonth parses payment.rollup_start as the first day of a month.
func (c *Config) RollupStartMonth() (time.Time, error) {
	t, err := time.Parse("2006-01", c.Payment.RollupStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("config.payment.rollup_start must be YYYY-MM: %w", err)
	}
	return t, nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "dubline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the built-in default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `board:
  name: True Crime Video Dubs
  source_list: Skripte zur Aufnahme
  review_list: In Review
  done_list: Fertig

roles:
  narrators: [lucas, lucki]
  female: [chaos, belli, jade, sira, jessica]
  male: [nils, marcel, holger, marco, martin, drystan]

payment:
  cutoff: "2026-01-15"
  rollup_start: "2026-02"
  rates:
    narrator: 3.00
    speaker_male: 2.25
    speaker_female: 1.25
    owner: 2.25
    owner_express: 2.90
    express_bump: 0.25
  labels:
    express: EXPRESS
    swap: Budgettausch

duration:
  cache_path: video_length_cache.json
  network: true
  budget_seconds: 25
  request_timeout_seconds: 8
  max_links: 3

speakers:
  Lucas:
    voice: "Narrator, tiefe Stimme"
    availability: "Mo-Fr"
  Chaos:
    voice: "Weiblich, klar"
    availability: "flexibel"
  Nils:
    voice: "Maennlich, ruhig"
    availability: "abends"
`
