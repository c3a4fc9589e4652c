package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodOptions configures the go-rod driver
type RodOptions struct {
	Headless  bool
	NoSandbox bool
	UserAgent string
	Bin       string
	Proxy     string
	// Stealth opens pages with go-rod/stealth evasions applied
	Stealth bool
}

// RodBrowser drives Chromium through go-rod. Each session launches its own
// browser process.
type RodBrowser struct {
	opts RodOptions
}

// NewRodBrowser creates a go-rod driver
func NewRodBrowser(opts RodOptions) *RodBrowser {
	return &RodBrowser{opts: opts}
}

func (b *RodBrowser) launcher() *launcher.Launcher {
	l := launcher.New().
		Headless(b.opts.Headless).
		NoSandbox(b.opts.NoSandbox)
	if b.opts.Bin != "" {
		l = l.Bin(b.opts.Bin)
	}
	if b.opts.Proxy != "" {
		l = l.Proxy(b.opts.Proxy)
	}
	return l
}

// Open launches a browser and opens a blank page
func (b *RodBrowser) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := b.launcher()
	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	sess := &rodSession{launcher: l, browser: browser}

	var page *rod.Page
	if b.opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	sess.page = page

	if b.opts.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent})
		if err != nil {
			sess.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	return sess, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (s *rodSession) WaitLocated(ctx context.Context, selector string) error {
	// Element retries until a match exists or ctx is done
	_, err := s.page.Context(ctx).Element(selector)
	return err
}

func (s *rodSession) Text(ctx context.Context, selector string) (string, error) {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Close closes the page and browser and kills the browser process
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close page: %w", err))
			}
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
