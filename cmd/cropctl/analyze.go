package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	var symptoms []string
	var crop string

	cmd := &cobra.Command{
		Use:   "analyze [name]",
		Short: "Combine name and symptom search with treatment advice",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			if query == "" && len(symptoms) == 0 {
				return fmt.Errorf("a name or at least one --symptom is required")
			}

			res := c.recommender.ComprehensiveAnalysis(query, symptoms, crop)
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Name matches:")
			if err := printMatches(out, res.NameMatches); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nSymptom matches:")
			if err := printMatches(out, res.SymptomMatches); err != nil {
				return err
			}
			for _, rec := range res.CombinedRecommendations {
				fmt.Fprintf(out, "\nTreatments for %s (confidence %.2f):\n", rec.PestDisease, rec.Confidence)
				if err := printTreatments(out, rec.Treatments); err != nil {
					return err
				}
			}
			if s := res.ConfidenceSummary; s != nil {
				fmt.Fprintf(out, "\n%d unique matches, highest %.2f, average %.2f\n",
					s.TotalMatches, s.HighestConfidence, s.AverageConfidence)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&symptoms, "symptom", "s", nil, "observed symptom (repeatable)")
	cmd.Flags().StringVar(&crop, "crop", "", "only symptom matches affecting this crop")
	return cmd
}
