package scraper

import (
	"errors"
	"fmt"
	"time"
)

// Stage names the step of a scrape that failed
type Stage string

const (
	StageSession  Stage = "session"
	StageNavigate Stage = "navigate"
	StageWait     Stage = "wait"
	StageExtract  Stage = "extract"
	StageParse    Stage = "parse"
)

// Sentinels matched by *Error through errors.Is
var (
	ErrSession    = errors.New("browser session failed")
	ErrNavigation = errors.New("navigation failed")
	ErrTimeout    = errors.New("timed out waiting for selector")
	ErrExtract    = errors.New("reading element text failed")
	ErrParse      = errors.New("parsing element text failed")
)

// Error describes a failed scrape: the stage, the selector involved if any,
// and the underlying cause
type Error struct {
	Stage    Stage
	URL      string
	Selector string
	// Text is the raw element text that failed to parse
	Text string
	// Timeout is set when the selector wait lapsed on its own deadline
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	var msg string
	switch e.Stage {
	case StageSession:
		msg = "open browser session"
	case StageNavigate:
		msg = fmt.Sprintf("navigate to %s", e.URL)
	case StageWait:
		if e.Timeout > 0 {
			msg = fmt.Sprintf("wait for %q: timed out after %v", e.Selector, e.Timeout)
		} else {
			msg = fmt.Sprintf("wait for %q", e.Selector)
		}
	case StageExtract:
		msg = fmt.Sprintf("read text of %q", e.Selector)
	case StageParse:
		msg = fmt.Sprintf("parse %q from %q", e.Text, e.Selector)
	default:
		msg = string(e.Stage)
	}

	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error belongs to the category of target
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSession:
		return e.Stage == StageSession
	case ErrNavigation:
		return e.Stage == StageNavigate
	case ErrTimeout:
		return e.Stage == StageWait && e.Timeout > 0
	case ErrExtract:
		return e.Stage == StageExtract
	case ErrParse:
		return e.Stage == StageParse
	}
	return false
}
