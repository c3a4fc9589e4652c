package models

import (
	"fmt"
)

// Kind tells the extractor how to post-process the text of a field
type Kind int

const (
	// KindRaw keeps the extracted text unchanged
	KindRaw Kind = iota
	// KindPackagingWeight parses the text into a Weight
	KindPackagingWeight
	// KindStorageClimate keeps the description after the first ": "
	KindStorageClimate
)

var kindNames = map[Kind]string{
	KindRaw:             "raw",
	KindPackagingWeight: "packaging_weight",
	KindStorageClimate:  "storage_climate",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name as written in configuration files
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindRaw, fmt.Errorf("unknown field kind %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown field kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field is a CSS selector together with the kind of value expected from it
type Field struct {
	Selector string `json:"selector" yaml:"selector"`
	Kind     Kind   `json:"kind" yaml:"kind"`
}

// Result is the value scraped for one field
type Result struct {
	Selector string  `json:"selector" yaml:"selector"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	Text     string  `json:"text" yaml:"text"`
	Value    string  `json:"value,omitempty" yaml:"value,omitempty"`
	Weight   *Weight `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// String renders the parsed value of the result
func (r Result) String() string {
	if r.Weight != nil {
		return r.Weight.String()
	}
	return r.Value
}
