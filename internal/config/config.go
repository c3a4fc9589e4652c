package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/williampepple1/product-page-scraper/internal/extraction"
	"github.com/williampepple1/product-page-scraper/pkg/models"
)

// Browser drivers
const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
	DriverStatic   = "static"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Scraper    ScraperConfig `yaml:"scraper"`
	Fields     []FieldConfig `yaml:"fields"`
	Classifier []RuleConfig  `yaml:"classifier,omitempty"`
	Browser    BrowserConfig `yaml:"browser"`
	Proxies    ProxyConfig   `yaml:"proxies"`
	Output     OutputConfig  `yaml:"output"`
	Log        LogConfig     `yaml:"log"`
}

// ScraperConfig holds the scraper configuration
type ScraperConfig struct {
	URL             string        `yaml:"url"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	ConcurrentWaits bool          `yaml:"concurrent_waits"`
}

// FieldConfig is one selector to scrape; an empty kind is classified from
// the selector text
type FieldConfig struct {
	Selector string `yaml:"selector"`
	Kind     string `yaml:"kind,omitempty"`
}

// RuleConfig maps selectors containing a substring to a field kind
type RuleConfig struct {
	Contains string `yaml:"contains"`
	Kind     string `yaml:"kind"`
}

// BrowserConfig holds the browser configuration
type BrowserConfig struct {
	Driver         string        `yaml:"driver"`
	Headless       bool          `yaml:"headless"`
	NoSandbox      bool          `yaml:"no_sandbox"`
	UserAgent      string        `yaml:"user_agent"`
	ExecPath       string        `yaml:"exec_path,omitempty"`
	Stealth        bool          `yaml:"stealth"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// OutputConfig holds the result output configuration
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads the configuration from a YAML file. Settings missing from the
// file keep their default values.
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	// the file replaces the default field list instead of merging into it
	config.Fields = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	if len(config.Fields) == 0 {
		config.Fields = defaultFields()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filename, err)
	}

	return config, nil
}

// Default creates the built-in configuration
func Default() *AppConfig {
	return &AppConfig{
		Scraper: ScraperConfig{
			URL:         DefaultURL,
			WaitTimeout: DefaultWaitTimeout,
		},
		Fields: defaultFields(),
		Browser: BrowserConfig{
			Driver:         DriverChromedp,
			Headless:       true,
			UserAgent:      DefaultUserAgents[0],
			RequestTimeout: 30 * time.Second,
		},
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first setting that cannot be used
func (c *AppConfig) Validate() error {
	if c.Scraper.URL == "" {
		return fmt.Errorf("scraper.url is required")
	}
	if c.Scraper.WaitTimeout <= 0 {
		return fmt.Errorf("scraper.wait_timeout must be positive, got %v", c.Scraper.WaitTimeout)
	}

	switch c.Browser.Driver {
	case DriverChromedp, DriverRod, DriverStatic:
	default:
		return fmt.Errorf("unknown browser.driver %q", c.Browser.Driver)
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}

	if _, err := c.Rules(); err != nil {
		return err
	}
	if _, err := c.ScrapeFields(); err != nil {
		return err
	}
	return nil
}

// Rules returns the classifier rules, falling back to extraction.DefaultRules
func (c *AppConfig) Rules() ([]extraction.Rule, error) {
	if len(c.Classifier) == 0 {
		return extraction.DefaultRules, nil
	}

	rules := make([]extraction.Rule, 0, len(c.Classifier))
	for i, rc := range c.Classifier {
		kind, err := models.ParseKind(rc.Kind)
		if err != nil {
			return nil, fmt.Errorf("classifier[%d]: %w", i, err)
		}
		rules = append(rules, extraction.Rule{Contains: rc.Contains, Kind: kind})
	}
	return rules, nil
}

// ScrapeFields resolves the configured fields, classifying those without an
// explicit kind
func (c *AppConfig) ScrapeFields() ([]models.Field, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	classify := extraction.Rules(rules)

	fields := make([]models.Field, 0, len(c.Fields))
	for i, fc := range c.Fields {
		if fc.Selector == "" {
			return nil, fmt.Errorf("fields[%d]: selector is required", i)
		}

		kind := classify(fc.Selector)
		if fc.Kind != "" {
			kind, err = models.ParseKind(fc.Kind)
			if err != nil {
				return nil, fmt.Errorf("fields[%d]: %w", i, err)
			}
		}
		fields = append(fields, models.Field{Selector: fc.Selector, Kind: kind})
	}
	return fields, nil
}
