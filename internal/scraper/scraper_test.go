package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/product-page-scraper/internal/extraction"
	"github.com/williampepple1/product-page-scraper/pkg/models"
)

const (
	productURL      = "https://shop.example/product/19658"
	weightSelector  = `li[ng-if="product.selectedPackaging.weight"]`
	climateSelector = `li[ng-if="::product.storageClimate"]`
	nameSelector    = `h1.product-name`
)

func productPage() *fakeBrowser {
	return &fakeBrowser{elements: map[string]string{
		weightSelector:  "2.5 lbs",
		climateSelector: "Storage: Cool, dry place",
		nameSelector:    "Organic Brown Rice",
	}}
}

func TestScrapeSelectors(t *testing.T) {
	browser := productPage()
	s := New(browser)

	results, err := s.ScrapeSelectors(context.Background(), productURL, []string{weightSelector, climateSelector, nameSelector})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NotNil(t, results[0].Weight)
	assert.Equal(t, 2.5, results[0].Weight.Magnitude)
	assert.Equal(t, "lbs", results[0].Weight.Unit())
	assert.Equal(t, models.KindPackagingWeight, results[0].Kind)

	assert.Equal(t, "Cool, dry place", results[1].Value)
	assert.Equal(t, models.KindStorageClimate, results[1].Kind)

	assert.Equal(t, "Organic Brown Rice", results[2].Value)
	assert.Equal(t, models.KindRaw, results[2].Kind)

	sess := browser.session()
	assert.Equal(t, productURL, sess.url)
	assert.Equal(t, 1, sess.closeCount())
}

func TestScrapeOrder(t *testing.T) {
	browser := productPage()
	fields := []models.Field{
		{Selector: nameSelector, Kind: models.KindRaw},
		{Selector: climateSelector, Kind: models.KindStorageClimate},
		{Selector: weightSelector, Kind: models.KindPackagingWeight},
	}

	results, err := New(browser).Scrape(context.Background(), productURL, fields)
	require.NoError(t, err)
	require.Len(t, results, len(fields))
	for i, r := range results {
		assert.Equal(t, fields[i].Selector, r.Selector)
	}

	// every wait completes before the first text is read
	assert.Equal(t, []string{
		"wait " + nameSelector,
		"wait " + climateSelector,
		"wait " + weightSelector,
		"text " + nameSelector,
		"text " + climateSelector,
		"text " + weightSelector,
	}, browser.session().recorded())
}

func TestScrapeExplicitKindOverridesSelector(t *testing.T) {
	browser := productPage()
	browser.elements[`div[ng-if="product.selectedPackaging"] .font-bold.h4`] = "$45.60"

	results, err := New(browser).Scrape(context.Background(), productURL, []models.Field{
		{Selector: `div[ng-if="product.selectedPackaging"] .font-bold.h4`, Kind: models.KindRaw},
	})
	require.NoError(t, err)
	assert.Equal(t, "$45.60", results[0].Value)
	assert.Nil(t, results[0].Weight)
}

func TestScrapeEmptyFields(t *testing.T) {
	browser := productPage()
	results, err := New(browser).Scrape(context.Background(), productURL, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 1, browser.session().closeCount())
}

func TestScrapeTimeout(t *testing.T) {
	browser := productPage()
	s := New(browser, WithWaitTimeout(20*time.Millisecond))

	results, err := s.ScrapeSelectors(context.Background(), productURL, []string{weightSelector, "span.missing", nameSelector})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, StageWait, scrapeErr.Stage)
	assert.Equal(t, "span.missing", scrapeErr.Selector)
	assert.Equal(t, 20*time.Millisecond, scrapeErr.Timeout)

	sess := browser.session()
	assert.Equal(t, 1, sess.closeCount())
	// no partial extraction and no waits after the failing one
	assert.Equal(t, []string{"wait " + weightSelector, "wait span.missing"}, sess.recorded())
}

func TestScrapeParseError(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		text     string
	}{
		{name: "weight without unit", selector: weightSelector, text: "12"},
		{name: "weight without number", selector: weightSelector, text: "lbs"},
		{name: "climate without delimiter", selector: climateSelector, text: "Cool, dry place"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := productPage()
			browser.elements[tt.selector] = tt.text

			_, err := New(browser).ScrapeSelectors(context.Background(), productURL, []string{nameSelector, tt.selector})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			assert.NotErrorIs(t, err, ErrTimeout)

			var scrapeErr *Error
			require.ErrorAs(t, err, &scrapeErr)
			assert.Equal(t, tt.selector, scrapeErr.Selector)
			assert.Equal(t, tt.text, scrapeErr.Text)
			assert.Equal(t, 1, browser.session().closeCount())
		})
	}
}

func TestScrapeSessionError(t *testing.T) {
	cause := errors.New("chrome not found")
	browser := &fakeBrowser{openErr: cause}

	_, err := New(browser).ScrapeSelectors(context.Background(), productURL, []string{nameSelector})
	assert.ErrorIs(t, err, ErrSession)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, browser.session())
}

func TestScrapeNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	browser := productPage()
	browser.navErr = cause

	_, err := New(browser).ScrapeSelectors(context.Background(), productURL, []string{nameSelector})
	assert.ErrorIs(t, err, ErrNavigation)
	assert.ErrorIs(t, err, cause)

	sess := browser.session()
	assert.Equal(t, 1, sess.closeCount())
	assert.Empty(t, sess.recorded())
}

func TestScrapeExtractError(t *testing.T) {
	browser := productPage()
	browser.textErr = errors.New("node detached")

	_, err := New(browser).ScrapeSelectors(context.Background(), productURL, []string{nameSelector})
	assert.ErrorIs(t, err, ErrExtract)

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, nameSelector, scrapeErr.Selector)
	assert.Equal(t, 1, browser.session().closeCount())
}

func TestScrapeCancelled(t *testing.T) {
	browser := productPage()
	s := New(browser, WithWaitTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := s.ScrapeSelectors(ctx, productURL, []string{"span.missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, StageWait, scrapeErr.Stage)
	assert.Equal(t, 1, browser.session().closeCount())
}

func TestScrapeConcurrentWaits(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		browser := productPage()
		s := New(browser, WithConcurrentWaits(true))

		results, err := s.ScrapeSelectors(context.Background(), productURL, []string{weightSelector, climateSelector, nameSelector})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "Organic Brown Rice", results[2].Value)
		assert.Equal(t, 1, browser.session().closeCount())
	})

	t.Run("any timeout fails the call", func(t *testing.T) {
		browser := productPage()
		s := New(browser, WithConcurrentWaits(true), WithWaitTimeout(200*time.Millisecond))

		start := time.Now()
		_, err := s.ScrapeSelectors(context.Background(), productURL, []string{"span.missing-a", nameSelector, "span.missing-b"})
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Less(t, elapsed, 400*time.Millisecond)

		var scrapeErr *Error
		require.ErrorAs(t, err, &scrapeErr)
		assert.Contains(t, []string{"span.missing-a", "span.missing-b"}, scrapeErr.Selector)

		sess := browser.session()
		assert.Equal(t, 2, sess.maxFlight)
		assert.Equal(t, 1, sess.closeCount())
		assert.NotContains(t, sess.recorded(), "text "+nameSelector)
	})
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err      *Error
		expected string
	}{
		{
			err:      &Error{Stage: StageWait, Selector: "h1", Timeout: 10 * time.Second, Err: context.DeadlineExceeded},
			expected: `wait for "h1": timed out after 10s: context deadline exceeded`,
		},
		{
			err:      &Error{Stage: StageParse, Selector: "li.weight", Text: "12", Err: errors.New("no trailing unit")},
			expected: `parse "12" from "li.weight": no trailing unit`,
		},
		{
			err:      &Error{Stage: StageNavigate, URL: productURL, Err: errors.New("refused")},
			expected: "navigate to " + productURL + ": refused",
		},
		{
			err:      &Error{Stage: StageSession},
			expected: "open browser session",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.err.Error())
	}
}

func TestScrapeWithClassifier(t *testing.T) {
	browser := &fakeBrowser{elements: map[string]string{
		`span[data-bind="netWeight"]`: "12 oz",
	}}
	s := New(browser, WithClassifier(extraction.Rules([]extraction.Rule{
		{Contains: "netWeight", Kind: models.KindPackagingWeight},
	})))

	results, err := s.ScrapeSelectors(context.Background(), productURL, []string{`span[data-bind="netWeight"]`})
	require.NoError(t, err)
	require.NotNil(t, results[0].Weight)
	assert.Equal(t, "0.75 lbs", results[0].Weight.ToPounds().String())
}
