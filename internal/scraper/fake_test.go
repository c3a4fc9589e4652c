package scraper

import (
	"context"
	"sync"
)

// fakeBrowser hands out fakeSessions that serve a fixed set of elements
type fakeBrowser struct {
	elements map[string]string
	openErr  error
	navErr   error
	textErr  error

	mu       sync.Mutex
	sessions []*fakeSession
}

func (b *fakeBrowser) Open(ctx context.Context) (Session, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := &fakeSession{browser: b}
	b.mu.Lock()
	b.sessions = append(b.sessions, s)
	b.mu.Unlock()
	return s, nil
}

func (b *fakeBrowser) session() *fakeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sessions) == 0 {
		return nil
	}
	return b.sessions[len(b.sessions)-1]
}

type fakeSession struct {
	browser *fakeBrowser

	mu        sync.Mutex
	url       string
	calls     []string
	inFlight  int
	maxFlight int
	closes    int
}

func (s *fakeSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	return s.browser.navErr
}

func (s *fakeSession) WaitLocated(ctx context.Context, selector string) error {
	s.record("wait " + selector)

	if _, ok := s.browser.elements[selector]; ok {
		return nil
	}

	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxFlight {
		s.maxFlight = s.inFlight
	}
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return ctx.Err()
}

func (s *fakeSession) Text(ctx context.Context, selector string) (string, error) {
	s.record("text " + selector)
	if s.browser.textErr != nil {
		return "", s.browser.textErr
	}
	return s.browser.elements[selector], nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *fakeSession) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
