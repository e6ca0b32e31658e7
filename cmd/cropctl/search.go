package main

import (
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/agroecology/cropvision/internal/service"
	"github.com/spf13/cobra"
)

func newSearchCmd(c *cli) *cobra.Command {
	var category string
	var minConfidence float64
	var limit int

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Find pests and diseases by name",
		Long: `Search matches the query against names, common names, scientific names
and alternative names. Exact matches score 1.0; other names are ranked by
fuzzy similarity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := c.matcher.SearchByName(strings.Join(args, " "), category, minConfidence)
			summaries := domain.SummarizeMatches(matches, limit)
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			return printMatches(cmd.OutOrStdout(), summaries)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (pest, disease, deficiency)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", service.DefaultNameMinConfidence, "minimum match confidence")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results (0 for all)")
	return cmd
}

func newSymptomsCmd(c *cli) *cobra.Command {
	var crop string
	var minConfidence float64

	cmd := &cobra.Command{
		Use:   "symptoms <symptom>...",
		Short: "Find pests and diseases by observed symptoms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := c.matcher.SearchBySymptoms(args, crop, minConfidence)
			summaries := domain.SummarizeMatches(matches, 0)
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			return printMatches(cmd.OutOrStdout(), summaries)
		},
	}

	cmd.Flags().StringVar(&crop, "crop", "", "only entries affecting this crop")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", service.DefaultSymptomMinConfidence, "minimum match confidence")
	return cmd
}
