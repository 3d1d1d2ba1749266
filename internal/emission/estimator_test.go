package emission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateMatchesDefaultRateTable(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	cases := []struct {
		category string
		kind     string
		value    string
		want     float64
	}{
		{"Transport", "Car", "15", 1.8},
		{"Transport", "Bike", "5", 0.25},
		{"Electricity", "Default", "10", 8.2},
		{"Electricity", "solar-ish", "10", 8.2},
		{"Food", "Veg", "1", 1.5},
		{"Food", "NonVeg", "2", 6},
		{"Shopping", "Clothes", "2", 4},
		{"Shopping", "", "3", 6},
		{"Transport", "Scooter", "50", 0},
		{"Food", "vegan", "4", 0},
		{"Transport", "", "12", 0},
	}

	for _, tc := range cases {
		got := estimator.Estimate(tc.category, tc.kind, tc.value)
		require.Equalf(t, tc.want, got, "%s/%s/%s", tc.category, tc.kind, tc.value)
	}
}

func TestEstimateIsCaseInsensitive(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	require.Equal(t, 1.8, estimator.Estimate("TRANSPORT", "CAR", "15"))
	require.Equal(t, 1.8, estimator.Estimate("transport", "car", "15"))
	require.Equal(t, 1.8, estimator.Estimate("tRaNsPoRt", "cAr", "15"))
}

func TestEstimateUnknownCategoryIsZero(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	for _, category := range []string{"", "travel", "water", "transports", "heating"} {
		require.Zerof(t, estimator.Estimate(category, "car", "100"), "category %q", category)
	}
}

func TestEstimateNonNumericValueIsZero(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	for _, value := range []string{"", "abc", "ten", "NaN", "Inf", "-Infinity", "1,5", "--2"} {
		require.Zerof(t, estimator.Estimate("Electricity", "", value), "value %q", value)
	}
}

func TestEstimateIsPure(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	first := estimator.Estimate("Food", "NonVeg", "3.3")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, estimator.Estimate("Food", "NonVeg", "3.3"))
	}
}

func TestEstimatorUsesInjectedRates(t *testing.T) {
	fifty := 0.5
	rates := Rates{
		"Water":     {Unit: "litre", Rate: &fifty},
		"transport": {Unit: "km", Types: map[string]float64{"Train": 0.04}},
	}
	estimator := NewEstimator(rates)

	require.Equal(t, 5.0, estimator.Estimate("water", "", "10"))
	require.Equal(t, 4.0, estimator.Estimate("Transport", "train", "100"))
	require.Zero(t, estimator.Estimate("Transport", "car", "100"))
	require.Zero(t, estimator.Estimate("Electricity", "", "10"))

	// The estimator keeps its own copy.
	fifty = 9
	rates["transport"].Types["train"] = 1
	require.Equal(t, 5.0, estimator.Estimate("water", "", "10"))
	require.Equal(t, 4.0, estimator.Estimate("Transport", "train", "100"))
}

func TestResolveReportsAbsentPairs(t *testing.T) {
	estimator := NewEstimator(DefaultRates())

	rate, ok := estimator.Resolve("Transport", "Car")
	require.True(t, ok)
	require.Equal(t, 0.12, rate)

	_, ok = estimator.Resolve("Transport", "Scooter")
	require.False(t, ok)

	_, ok = estimator.Resolve("Gardening", "")
	require.False(t, ok)

	rate, ok = estimator.Resolve("electricity", "anything")
	require.True(t, ok)
	require.Equal(t, 0.82, rate)
}

func TestNormalizeType(t *testing.T) {
	require.Equal(t, DefaultType, NormalizeType(""))
	require.Equal(t, DefaultType, NormalizeType("   "))
	require.Equal(t, "nonveg", NormalizeType("NonVeg"))
}

func TestParseQuantity(t *testing.T) {
	got, ok := ParseQuantity(" 12.5 ")
	require.True(t, ok)
	require.Equal(t, 12.5, got)

	got, ok = ParseQuantity("-3")
	require.True(t, ok)
	require.Equal(t, -3.0, got)

	_, ok = ParseQuantity("1e400")
	require.False(t, ok)
	_, ok = ParseQuantity("nan")
	require.False(t, ok)
}

func TestRoundHundredthsFollowsToFixed(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{15 * 0.12, 1.8},
		{0.125, 0.13},
		{0.375, 0.38},
		{-0.125, -0.13},
		// 1.005 and 2.675 sit just below the midpoint in binary.
		{1.005, 1},
		{2.675, 2.67},
		{7, 7},
		{0.004, 0},
		{0.005, 0.01},
	}

	for _, tc := range cases {
		require.Equalf(t, tc.want, roundHundredths(tc.in), "round(%v)", tc.in)
	}
}
