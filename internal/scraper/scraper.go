package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/williampepple1/product-page-scraper/internal/config"
	"github.com/williampepple1/product-page-scraper/internal/extraction"
	"github.com/williampepple1/product-page-scraper/internal/proxy"
	"github.com/williampepple1/product-page-scraper/pkg/models"
)

// Browser opens browser sessions. Every session returned by Open is owned
// by the caller, who must Close it.
type Browser interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a live connection to one browser page
type Session interface {
	// Navigate loads url in the page
	Navigate(ctx context.Context, url string) error
	// WaitLocated blocks until an element matching selector is present in
	// the rendered DOM or ctx is done
	WaitLocated(ctx context.Context, selector string) error
	// Text returns the visible text of the first element matching selector
	Text(ctx context.Context, selector string) (string, error)
	// Close tears the session down
	Close() error
}

// NewBrowser creates the browser driver named in the configuration
func NewBrowser(cfg *config.AppConfig, logger *slog.Logger) (Browser, error) {
	proxies := proxy.NewManager(&cfg.Proxies)

	switch cfg.Browser.Driver {
	case config.DriverChromedp, "":
		server, err := proxies.Server()
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		return NewChromeBrowser(ChromeOptions{
			Headless:    cfg.Browser.Headless,
			NoSandbox:   cfg.Browser.NoSandbox,
			UserAgent:   cfg.Browser.UserAgent,
			ExecPath:    cfg.Browser.ExecPath,
			ProxyServer: server,
			Logger:      logger,
		}), nil

	case config.DriverRod:
		server, err := proxies.Server()
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		return NewRodBrowser(RodOptions{
			Headless:  cfg.Browser.Headless,
			NoSandbox: cfg.Browser.NoSandbox,
			UserAgent: cfg.Browser.UserAgent,
			Bin:       cfg.Browser.ExecPath,
			Proxy:     server,
			Stealth:   cfg.Browser.Stealth,
		}), nil

	case config.DriverStatic:
		return NewStaticBrowser(&cfg.Browser, proxies)
	}

	return nil, fmt.Errorf("unknown browser driver %q", cfg.Browser.Driver)
}

// Scraper reads fields from a single product page
type Scraper struct {
	browser    Browser
	timeout    time.Duration
	concurrent bool
	classify   extraction.Classifier
	logger     *slog.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithWaitTimeout bounds the wait for each selector
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithConcurrentWaits waits for all selectors at once instead of one by one
func WithConcurrentWaits(enabled bool) Option {
	return func(s *Scraper) {
		s.concurrent = enabled
	}
}

// WithClassifier sets the classifier used by ScrapeSelectors
func WithClassifier(c extraction.Classifier) Option {
	return func(s *Scraper) {
		if c != nil {
			s.classify = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scraper on top of browser
func New(browser Browser, opts ...Option) *Scraper {
	s := &Scraper{
		browser:  browser,
		timeout:  config.DefaultWaitTimeout,
		classify: extraction.Classify,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scraper")
	return s
}

// ScrapeSelectors classifies each selector and scrapes url
func (s *Scraper) ScrapeSelectors(ctx context.Context, url string, selectors []string) ([]models.Result, error) {
	return s.Scrape(ctx, url, extraction.Fields(selectors, s.classify))
}

// Scrape opens a session, loads url, waits until every field's selector is
// present and then reads and parses each field in order. Results match
// fields by position. Any failure aborts the whole call; the session is
// closed on every path.
func (s *Scraper) Scrape(ctx context.Context, url string, fields []models.Field) ([]models.Result, error) {
	log := s.logger.With("url", url)

	log.Debug("opening browser session")
	sess, err := s.browser.Open(ctx)
	if err != nil {
		return nil, &Error{Stage: StageSession, URL: url, Err: err}
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			log.Warn("closing browser session failed", "error", closeErr)
		}
		log.Debug("browser session closed")
	}()

	log.Debug("navigating")
	if err := sess.Navigate(ctx, url); err != nil {
		return nil, &Error{Stage: StageNavigate, URL: url, Err: err}
	}

	if err := s.waitAll(ctx, sess, url, fields); err != nil {
		return nil, err
	}
	log.Debug("all selectors present", "count", len(fields))

	results := make([]models.Result, 0, len(fields))
	for _, field := range fields {
		text, err := s.text(ctx, sess, field.Selector)
		if err != nil {
			return nil, &Error{Stage: StageExtract, URL: url, Selector: field.Selector, Err: err}
		}

		result, err := extraction.Apply(field, text)
		if err != nil {
			return nil, &Error{Stage: StageParse, URL: url, Selector: field.Selector, Text: text, Err: err}
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *Scraper) waitAll(ctx context.Context, sess Session, url string, fields []models.Field) error {
	if !s.concurrent {
		for _, field := range fields {
			if err := s.wait(ctx, sess, url, field.Selector); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, field := range fields {
		selector := field.Selector
		g.Go(func() error {
			return s.wait(gctx, sess, url, selector)
		})
	}
	return g.Wait()
}

func (s *Scraper) wait(ctx context.Context, sess Session, url, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Debug("waiting for selector", "selector", selector)
	err := sess.WaitLocated(waitCtx, selector)
	if err == nil {
		return nil
	}

	e := &Error{Stage: StageWait, URL: url, Selector: selector, Err: err}
	if ctx.Err() == nil && waitCtx.Err() == context.DeadlineExceeded {
		e.Timeout = s.timeout
	}
	return e
}

// text reads an element that is known to be present; the read is bounded
// by the same timeout as the wait
func (s *Scraper) text(ctx context.Context, sess Session, selector string) (string, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sess.Text(readCtx, selector)
}
