package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"example.com/carbon/internal/domain"
	"example.com/carbon/internal/emission"
	"example.com/carbon/internal/store"
)

// demoActivities is the sample history loaded by "carbonctl seed".
var demoActivities = []domain.InsertActivityInput{
	{Category: "Transport", Type: "Car", Value: "15"},
	{Category: "Food", Type: "Veg", Value: "1"},
	{Category: "Electricity", Type: "Default", Value: "10"},
	{Category: "Shopping", Type: "Clothes", Value: "2"},
	{Category: "Transport", Type: "Bike", Value: "5"},
}

func newSeedCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo activities for a user",
		Example: `  # Give a local account some history to look at
  carbonctl seed --user 0b6f3c1e-demo`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user is required")
			}

			cfg, logger, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			ledger := domain.NewLedger(st.Repository, emission.NewEstimator(emission.DefaultRates()))
			out := cmd.OutOrStdout()
			for _, input := range demoActivities {
				input.UserID = userID
				activity, err := ledger.Insert(cmd.Context(), input)
				if err != nil {
					return fmt.Errorf("seed %s/%s: %w", input.Category, input.Type, err)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%g kg\n", activity.ID, activity.Category, activity.Type, activity.CarbonEmission)
			}
			fmt.Fprintf(out, "seeded %d activities for %s\n", len(demoActivities), userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner of the seeded activities")
	return cmd
}
