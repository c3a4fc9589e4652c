package models

import (
	"strconv"
)

// Units recognised on product pages
const (
	UnitOunces = "oz"
	UnitPounds = "lbs"
)

// ouncesPerPound is the avoirdupois conversion factor
const ouncesPerPound = 16

// Weight is a magnitude paired with a unit label
type Weight struct {
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	UnitLabel string  `json:"unit" yaml:"unit"`
}

// NewWeight creates a weight; the unit is stored verbatim
func NewWeight(magnitude float64, unit string) *Weight {
	return &Weight{
		Magnitude: magnitude,
		UnitLabel: unit,
	}
}

// Unit returns the stored unit label
func (w *Weight) Unit() string {
	return w.UnitLabel
}

// OuncesToPounds converts ounces to pounds
func OuncesToPounds(ounces float64) float64 {
	return ounces / ouncesPerPound
}

// ToPounds converts an ounce weight to pounds in place and relabels it.
// Weights in any other unit are left untouched. The receiver is returned
// so calls can be chained.
func (w *Weight) ToPounds() *Weight {
	if w.UnitLabel == UnitOunces {
		w.Magnitude = OuncesToPounds(w.Magnitude)
		w.UnitLabel = UnitPounds
	}
	return w
}

// String renders the weight as "<magnitude> <unit>"
func (w *Weight) String() string {
	return strconv.FormatFloat(w.Magnitude, 'f', -1, 64) + " " + w.UnitLabel
}
