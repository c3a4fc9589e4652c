package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/williampepple1/product-page-scraper/pkg/models"
)

var (
	// ErrNoUnit is returned when a weight text has no trailing unit letters
	ErrNoUnit = errors.New("no trailing unit")
	// ErrNoMagnitude is returned when a weight text has no number
	ErrNoMagnitude = errors.New("no magnitude")
	// ErrNoDelimiter is returned when a storage climate text has no ": " suffix
	ErrNoDelimiter = errors.New("no colon-delimited description")
)

var (
	unitPattern      = regexp.MustCompile(`[a-z]+$`)
	magnitudePattern = regexp.MustCompile(`\d{1,2}(?:\.\d{1,2})?`)
	climatePattern   = regexp.MustCompile(`(?s):[\s\p{Zs}](.*)`)
)

// ParseWeight parses packaging weight text such as "25 lbs"
func ParseWeight(text string) (*models.Weight, error) {
	unit := unitPattern.FindString(text)
	if unit == "" {
		return nil, ErrNoUnit
	}

	number := magnitudePattern.FindString(text)
	if number == "" {
		return nil, ErrNoMagnitude
	}

	magnitude, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return nil, fmt.Errorf("parse magnitude %q: %w", number, err)
	}

	return models.NewWeight(magnitude, unit), nil
}

// ParseStorageClimate returns the description following the first colon and
// whitespace (non-breaking spaces included), up to the end of the text
func ParseStorageClimate(text string) (string, error) {
	m := climatePattern.FindStringSubmatch(text)
	if m == nil {
		return "", ErrNoDelimiter
	}
	return m[1], nil
}

// Apply post-processes the text extracted for a field according to its kind
func Apply(field models.Field, text string) (models.Result, error) {
	result := models.Result{
		Selector: field.Selector,
		Kind:     field.Kind,
		Text:     text,
	}

	switch field.Kind {
	case models.KindPackagingWeight:
		w, err := ParseWeight(text)
		if err != nil {
			return result, err
		}
		result.Weight = w

	case models.KindStorageClimate:
		climate, err := ParseStorageClimate(text)
		if err != nil {
			return result, err
		}
		result.Value = climate

	case models.KindRaw:
		result.Value = text

	default:
		return result, fmt.Errorf("unsupported field kind %s", field.Kind)
	}

	return result, nil
}
