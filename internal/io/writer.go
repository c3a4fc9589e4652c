package io

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/williampepple1/product-page-scraper/internal/config"
	"github.com/williampepple1/product-page-scraper/pkg/models"
)

// ResultWriter writes scrape results in the configured format
type ResultWriter struct {
	Config *config.OutputConfig
	Out    io.Writer
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.OutputConfig, out io.Writer) *ResultWriter {
	return &ResultWriter{
		Config: config,
		Out:    out,
	}
}

// Write renders results to the output
func (w *ResultWriter) Write(results []models.Result) error {
	switch w.Config.Format {
	case config.FormatText, "":
		for _, r := range results {
			if _, err := fmt.Fprintf(w.Out, "%s: %s\n", r.Selector, r.String()); err != nil {
				return err
			}
		}
		return nil

	case config.FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)

	case config.FormatYAML:
		enc := yaml.NewEncoder(w.Out)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unsupported output format: %s", w.Config.Format)
	}
}
