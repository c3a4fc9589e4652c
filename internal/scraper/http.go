package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/product-page-scraper/internal/config"
	"github.com/williampepple1/product-page-scraper/internal/proxy"
)

var (
	// ErrNoPage is returned by element queries before a page has loaded
	ErrNoPage = errors.New("no page loaded")
	// ErrNoElement is returned when no element matches a selector
	ErrNoElement = errors.New("no element matches selector")
	// ErrSessionClosed is returned by a static session after Close
	ErrSessionClosed = errors.New("session closed")
)

// StaticBrowser fetches pages over plain HTTP and queries the served HTML
// with goquery. No JavaScript runs, so it only suits server-rendered pages.
type StaticBrowser struct {
	Client    *http.Client
	UserAgent string
	ProxyUsed string
}

// NewStaticBrowser creates an HTTP driver, routed through the configured
// proxy when one is enabled
func NewStaticBrowser(cfg *config.BrowserConfig, proxies *proxy.Manager) (*StaticBrowser, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	proxyUsed, err := proxies.ApplyToTransport(transport)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}

	return &StaticBrowser{
		Client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		UserAgent: cfg.UserAgent,
		ProxyUsed: proxyUsed,
	}, nil
}

// Open creates a session; no connection is made until Navigate
func (b *StaticBrowser) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticSession{browser: b}, nil
}

type staticSession struct {
	browser *StaticBrowser

	mu     sync.RWMutex
	doc    *goquery.Document
	closed bool
}

func (s *staticSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if s.browser.UserAgent != "" {
		req.Header.Set("User-Agent", s.browser.UserAgent)
	}

	resp, err := s.browser.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.doc = doc
	return nil
}

func (s *staticSession) document() (*goquery.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.doc == nil {
		return nil, ErrNoPage
	}
	return s.doc, nil
}

// WaitLocated returns at once when the selector matches. A served document
// never changes, so otherwise it blocks until ctx is done.
func (s *staticSession) WaitLocated(ctx context.Context, selector string) error {
	doc, err := s.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() > 0 {
		return nil
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *staticSession) Text(ctx context.Context, selector string) (string, error) {
	doc, err := s.document()
	if err != nil {
		return "", err
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", ErrNoElement
	}
	return strings.TrimSpace(sel.Text()), nil
}

func (s *staticSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	return nil
}
