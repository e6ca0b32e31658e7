// Package main is the cropctl CLI: offline lookups against the pest and
// disease knowledge base without running the HTTP server.
package main

import (
	"os"

	"github.com/agroecology/cropvision/internal/config"
	"github.com/agroecology/cropvision/internal/service"
	"github.com/agroecology/cropvision/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the flags and services shared by every subcommand.
type cli struct {
	kbPath      string
	expertsPath string
	jsonOut     bool
	verbose     bool

	matcher     *service.MatchingService
	recommender *service.RecommendationService
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "cropctl",
		Short: "Query the crop pest and disease knowledge base",
		Long: `cropctl searches the local pest and disease knowledge base by name or
symptoms, ranks treatments and lists expert contacts. It reads the same
data files as the server and never calls the remote identification API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	_ = config.Load()
	root.PersistentFlags().StringVar(&c.kbPath, "kb", config.KnowledgeBasePath(), "knowledge base JSON file")
	root.PersistentFlags().StringVar(&c.expertsPath, "experts", config.ExpertsPath(), "expert directory YAML file")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "output results as JSON")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log loading details to stderr")

	root.AddCommand(
		newSearchCmd(c),
		newSymptomsCmd(c),
		newAnalyzeCmd(c),
		newTreatmentsCmd(c),
		newExpertsCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() error {
	logger := zap.NewNop()
	if c.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	kb := store.LoadKnowledgeBase(c.kbPath, logger)
	experts := store.LoadExpertDirectory(c.expertsPath, logger)
	c.matcher = service.NewMatchingService(kb, logger)
	c.recommender = service.NewRecommendationService(c.matcher, experts, logger)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
