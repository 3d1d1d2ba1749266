package emission

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesDocument []byte

// Schedule prices one category. When Types is set only the listed types emit;
// otherwise Rate applies to every type.
type Schedule struct {
	Unit        string             `yaml:"unit" json:"unit"`
	Rate        *float64           `yaml:"rate,omitempty" json:"rate,omitempty"`
	Types       map[string]float64 `yaml:"types,omitempty" json:"types,omitempty"`
	Placeholder bool               `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// Rates maps a lower-case category to its schedule.
type Rates map[string]Schedule

// ParseRates decodes a YAML rate document and normalises its keys to lower case.
func ParseRates(doc []byte) (Rates, error) {
	var raw Rates
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	out := make(Rates, len(raw))
	for category, schedule := range raw {
		if schedule.Rate == nil && len(schedule.Types) == 0 {
			return nil, fmt.Errorf("category %q has neither rate nor types", category)
		}
		out[strings.ToLower(category)] = schedule.normalized()
	}
	return out, nil
}

// DefaultRates returns a fresh copy of the rate table compiled into the binary.
func DefaultRates() Rates {
	rates, err := ParseRates(defaultRatesDocument)
	if err != nil {
		panic(err)
	}
	return rates
}

// Lookup resolves the factor for a normalised category and type. The boolean
// is false when the pair has no factor.
func (r Rates) Lookup(category, kind string) (float64, bool) {
	schedule, ok := r[category]
	if !ok {
		return 0, false
	}
	if len(schedule.Types) > 0 {
		rate, ok := schedule.Types[kind]
		return rate, ok
	}
	if schedule.Rate == nil {
		return 0, false
	}
	return *schedule.Rate, true
}

// Categories lists the priced categories in alphabetical order.
func (r Rates) Categories() []string {
	out := make([]string, 0, len(r))
	for category := range r {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

func (s Schedule) normalized() Schedule {
	out := Schedule{Unit: s.Unit, Placeholder: s.Placeholder}
	if s.Rate != nil {
		rate := *s.Rate
		out.Rate = &rate
	}
	if len(s.Types) > 0 {
		out.Types = make(map[string]float64, len(s.Types))
		for kind, rate := range s.Types {
			out.Types[strings.ToLower(kind)] = rate
		}
	}
	return out
}

func (r Rates) clone() Rates {
	out := make(Rates, len(r))
	for category, schedule := range r {
		out[strings.ToLower(category)] = schedule.normalized()
	}
	return out
}
