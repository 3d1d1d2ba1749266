// Package emission converts logged activity quantities into kilograms of CO2.
package emission

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	// DefaultType is recorded when an activity is logged without a type.
	DefaultType = "default"
	// MaxQuantity is the largest quantity a single activity may carry.
	MaxQuantity = 1e9
)

// Estimator prices activities against an immutable rate table.
type Estimator struct {
	rates Rates
}

// NewEstimator copies rates so later changes by the caller have no effect.
func NewEstimator(rates Rates) *Estimator {
	return &Estimator{rates: rates.clone()}
}

// Rates returns a copy of the table the estimator prices with.
func (e *Estimator) Rates() Rates {
	return e.rates.clone()
}

// Estimate parses value and prices it. Unparseable values, unknown categories
// and unknown types all yield zero.
func (e *Estimator) Estimate(category, kind, value string) float64 {
	quantity, ok := ParseQuantity(value)
	if !ok {
		return 0
	}
	return e.EstimateQuantity(category, kind, quantity)
}

// EstimateQuantity prices an already parsed quantity, rounded to hundredths.
func (e *Estimator) EstimateQuantity(category, kind string, quantity float64) float64 {
	rate, ok := e.Resolve(category, kind)
	if !ok {
		return 0
	}
	return roundHundredths(quantity * rate)
}

// Resolve reports the factor applied to a category and type pair.
func (e *Estimator) Resolve(category, kind string) (float64, bool) {
	return e.rates.Lookup(NormalizeCategory(category), NormalizeType(kind))
}

// NormalizeCategory lower-cases a category for rate lookups.
func NormalizeCategory(category string) string {
	return strings.ToLower(category)
}

// NormalizeType lower-cases a type and substitutes DefaultType when blank.
func NormalizeType(kind string) string {
	if strings.TrimSpace(kind) == "" {
		return DefaultType
	}
	return strings.ToLower(kind)
}

// ParseQuantity parses a decimal quantity. NaN and infinities are rejected.
func ParseQuantity(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

// roundHundredths rounds the exact binary value of x to two decimals with
// ties away from zero, then returns the float64 nearest to that decimal.
func roundHundredths(x float64) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	negative := x < 0
	magnitude := math.Abs(x)

	scaled := new(big.Float).SetPrec(256).SetFloat64(magnitude)
	scaled.Mul(scaled, big.NewFloat(100))
	whole, _ := scaled.Int(nil)
	fraction := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(whole))
	if fraction.Cmp(big.NewFloat(0.5)) >= 0 {
		whole.Add(whole, big.NewInt(1))
	}

	rounded, err := strconv.ParseFloat(whole.String()+"e-2", 64)
	if err != nil {
		return x
	}
	if negative {
		return -rounded
	}
	return rounded
}
