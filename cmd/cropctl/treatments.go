package main

import (
	"errors"
	"fmt"

	"github.com/agroecology/cropvision/internal/service"
	"github.com/spf13/cobra"
)

func newTreatmentsCmd(c *cli) *cobra.Command {
	var organicOnly bool

	cmd := &cobra.Command{
		Use:   "treatments <key>",
		Short: "List ranked treatments for a knowledge base entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			treatments, err := c.recommender.TreatmentsForKey(args[0], organicOnly)
			if errors.Is(err, service.ErrEntryNotFound) {
				return fmt.Errorf("no entry with key %q", args[0])
			}
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), treatments)
			}
			return printTreatments(cmd.OutOrStdout(), treatments)
		},
	}

	cmd.Flags().BoolVar(&organicOnly, "organic-only", false, "only organic treatments")
	return cmd
}

func newExpertsCmd(c *cli) *cobra.Command {
	var specialization string

	cmd := &cobra.Command{
		Use:   "experts",
		Short: "List expert contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			experts := c.recommender.ExpertResources(specialization)
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), experts)
			}
			return printExperts(cmd.OutOrStdout(), experts)
		},
	}

	cmd.Flags().StringVar(&specialization, "specialization", "", "filter by specialization keyword")
	return cmd
}
