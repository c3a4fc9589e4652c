package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/williampepple1/product-page-scraper/internal/config"
	"github.com/williampepple1/product-page-scraper/internal/io"
	"github.com/williampepple1/product-page-scraper/internal/scraper"
)

// selectorList collects repeated -selector flags
type selectorList []string

func (l *selectorList) String() string {
	return strings.Join(*l, ", ")
}

func (l *selectorList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Define command-line flags
	var selectors selectorList
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	url := flag.String("url", "", "Product page to scrape")
	flag.Var(&selectors, "selector", "CSS selector to extract (repeatable; replaces configured fields)")
	driver := flag.String("driver", "", "Browser driver: chromedp, rod or static")
	timeout := flag.Duration("timeout", 0, "Maximum wait for each selector")
	concurrent := flag.Bool("concurrent", false, "Wait for all selectors at once")
	headful := flag.Bool("headful", false, "Show the browser window")
	format := flag.String("format", "", "Output format: text, json or yaml")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	appConfig := config.Default()
	if *configFile != "" {
		var err error
		appConfig, err = config.Load(*configFile)
		if err != nil {
			slog.Error("loading configuration failed", "error", err)
			return err
		}
	}

	// Override config with command-line flags if provided
	if *url != "" {
		appConfig.Scraper.URL = *url
	}
	if len(selectors) > 0 {
		appConfig.Fields = make([]config.FieldConfig, 0, len(selectors))
		for _, sel := range selectors {
			appConfig.Fields = append(appConfig.Fields, config.FieldConfig{Selector: sel})
		}
	}
	if *driver != "" {
		appConfig.Browser.Driver = *driver
	}
	if *timeout > 0 {
		appConfig.Scraper.WaitTimeout = *timeout
	}
	if *concurrent {
		appConfig.Scraper.ConcurrentWaits = true
	}
	if *headful {
		appConfig.Browser.Headless = false
	}
	if *format != "" {
		appConfig.Output.Format = *format
	}
	if *verbose {
		appConfig.Log.Level = "debug"
	}

	logger := newLogger(&appConfig.Log)
	slog.SetDefault(logger)

	if err := appConfig.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	fields, err := appConfig.ScrapeFields()
	if err != nil {
		logger.Error("invalid fields", "error", err)
		return err
	}

	browser, err := scraper.NewBrowser(appConfig, logger)
	if err != nil {
		logger.Error("creating browser failed", "error", err)
		return err
	}

	s := scraper.New(browser,
		scraper.WithWaitTimeout(appConfig.Scraper.WaitTimeout),
		scraper.WithConcurrentWaits(appConfig.Scraper.ConcurrentWaits),
		scraper.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("scraping", "url", appConfig.Scraper.URL, "fields", len(fields), "driver", appConfig.Browser.Driver)
	start := time.Now()

	results, err := s.Scrape(ctx, appConfig.Scraper.URL, fields)
	if err != nil {
		var scrapeErr *scraper.Error
		if errors.As(err, &scrapeErr) {
			logger.Error("scrape failed",
				"stage", scrapeErr.Stage,
				"selector", scrapeErr.Selector,
				"text", scrapeErr.Text,
				"error", err,
			)
		} else {
			logger.Error("scrape failed", "error", err)
		}
		return err
	}
	logger.Info("scrape complete", "results", len(results), "duration", time.Since(start))

	writer := io.NewResultWriter(&appConfig.Output, os.Stdout)
	if err := writer.Write(results); err != nil {
		logger.Error("writing results failed", "error", err)
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
