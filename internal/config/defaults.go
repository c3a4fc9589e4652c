package config

import "time"

// DefaultURL is the Azure Standard product page scraped when no URL is configured
const DefaultURL = "https://www.azurestandard.com/shop/product/food/grains/rice/long-grain/brown/rice-long-grain-brown-organic/19658?package=GR305"

// DefaultWaitTimeout bounds the wait for each selector
const DefaultWaitTimeout = 10 * time.Second

// DefaultUserAgents provides a list of common user agents
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// defaultFields are the product details read from DefaultURL. The name
// selector sits under the packaging block, so its kind is pinned to raw.
func defaultFields() []FieldConfig {
	return []FieldConfig{
		{Selector: `li[ng-if="product.selectedPackaging.weight"]`},
		{Selector: `li[ng-if="::product.storageClimate"]`},
		{Selector: `div[ng-if="product.selectedPackaging"] .font-bold.h4`, Kind: "raw"},
	}
}
