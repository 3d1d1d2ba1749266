package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"example.com/carbon/internal/emission"
)

type estimateResult struct {
	Category       string   `json:"category" yaml:"category"`
	Type           string   `json:"type" yaml:"type"`
	Value          string   `json:"value" yaml:"value"`
	CarbonEmission float64  `json:"carbonEmission" yaml:"carbonEmission"`
	Rate           *float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
}

func newEstimateCmd() *cobra.Command {
	var (
		category  string
		kind      string
		value     string
		output    string
		ratesPath string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Compute the carbon emission for an activity without storing it",
		Example: `  carbonctl estimate --category Transport --type Car --value 15
  carbonctl estimate --category Food --type NonVeg --value 2 --output yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rates := emission.DefaultRates()
			if ratesPath != "" {
				doc, err := os.ReadFile(ratesPath)
				if err != nil {
					return fmt.Errorf("read rates: %w", err)
				}
				if rates, err = emission.ParseRates(doc); err != nil {
					return err
				}
			}
			estimator := emission.NewEstimator(rates)

			if quantity, ok := emission.ParseQuantity(value); ok && quantity > emission.MaxQuantity {
				return errors.New("value must not exceed 1e9")
			}

			recorded := kind
			if strings.TrimSpace(recorded) == "" {
				recorded = emission.DefaultType
			}
			result := estimateResult{
				Category:       category,
				Type:           recorded,
				Value:          value,
				CarbonEmission: estimator.Estimate(category, kind, value),
			}
			if rate, ok := estimator.Resolve(category, kind); ok {
				result.Rate = &rate
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(result)
			case "text":
				_, err := fmt.Fprintf(out, "%g\n", result.CarbonEmission)
				return err
			default:
				return fmt.Errorf("unsupported output %q (text, json, yaml)", output)
			}
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "activity category, e.g. Transport")
	cmd.Flags().StringVar(&kind, "type", "", "activity type, e.g. Car")
	cmd.Flags().StringVar(&value, "value", "", "quantity in the category's unit")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "YAML rate table to use instead of the built-in one")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
