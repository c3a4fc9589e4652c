package extraction

import (
	"strings"

	"github.com/williampepple1/product-page-scraper/pkg/models"
)

// Classifier decides which kind of value a selector refers to
type Classifier func(selector string) models.Kind

// Rule maps selectors containing a substring to a kind
type Rule struct {
	Contains string
	Kind     models.Kind
}

// DefaultRules recognise the packaging weight and storage climate bindings
// used on Azure Standard product pages
var DefaultRules = []Rule{
	{Contains: ".selectedPackaging", Kind: models.KindPackagingWeight},
	{Contains: ".storageClimate", Kind: models.KindStorageClimate},
}

// Rules builds a classifier from an ordered rule list; the first rule whose
// substring occurs in the selector wins, anything else is raw
func Rules(rules []Rule) Classifier {
	return func(selector string) models.Kind {
		for _, r := range rules {
			if r.Contains != "" && strings.Contains(selector, r.Contains) {
				return r.Kind
			}
		}
		return models.KindRaw
	}
}

// Classify applies DefaultRules to a selector
func Classify(selector string) models.Kind {
	return Rules(DefaultRules)(selector)
}

// Fields pairs every selector with the kind chosen by classify.
// A nil classifier falls back to Classify.
func Fields(selectors []string, classify Classifier) []models.Field {
	if classify == nil {
		classify = Classify
	}

	fields := make([]models.Field, 0, len(selectors))
	for _, sel := range selectors {
		fields = append(fields, models.Field{Selector: sel, Kind: classify(sel)})
	}
	return fields
}
