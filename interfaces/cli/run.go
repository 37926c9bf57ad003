package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/record"
)

// newRunCmd creates the run command: one-shot pipeline over a raw idea.
func (a *App) newRunCmd() *cobra.Command {
	var (
		configPath  string
		owner       string
		asJSON      bool
		save        bool
		useKeywords bool
	)

	cmd := &cobra.Command{
		Use:   "run \"<research idea>\"",
		Short: "Run the full framing chain over a raw research idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := cmd.Context()

			var keywords []framing.Keyword
			if useKeywords {
				if rt.notion == nil {
					return fmt.Errorf("--keywords-from-store requires a configured notion keyword database")
				}
				keywords, err = rt.notion.FetchKeywords(ctx)
				if err != nil {
					return err
				}
			}

			artifact, err := rt.pipeline.Run(ctx, args[0], keywords)
			if err != nil {
				return err
			}

			if save {
				if rt.notion == nil {
					return fmt.Errorf("--save requires a configured notion record store")
				}
				rec := record.FromArtifact(artifact, owner)
				result, err := rt.notion.Save(ctx, rec)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "saved record %s\n", result.RecordID)
				if result.URL != "" {
					fmt.Fprintf(a.stdout, "  %s\n", result.URL)
				}
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(artifact)
			}

			a.printArtifact(artifact)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&owner, "owner", "", "record owner name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the artifact as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "write the result to the record store")
	cmd.Flags().BoolVar(&useKeywords, "keywords-from-store", false, "seed the run with the keyword database")

	return cmd
}

// printArtifact renders the artifact for terminal reading.
func (a *App) printArtifact(art *framing.Artifact) {
	fmt.Fprintf(a.stdout, "Mode:         %s\n", art.Mode)
	fmt.Fprintf(a.stdout, "Assumption:   %s\n", art.Tension.DominantAssumption)
	fmt.Fprintf(a.stdout, "Blind spot:   %s\n", art.Tension.BlindSpot)
	fmt.Fprintf(a.stdout, "Core gap:     %s\n", art.Tension.CoreGap)
	fmt.Fprintf(a.stdout, "Position:     %s\n", art.ResearchPosition)
	fmt.Fprintln(a.stdout, "Questions:")
	for i, q := range art.ResearchQuestions {
		marker := " "
		if q.Question == art.SelectedRQ {
			marker = "*"
		}
		fmt.Fprintf(a.stdout, "  %s [%d] (%s) %s\n", marker, i, q.Type, q.Question)
	}
	fmt.Fprintf(a.stdout, "Method:       %s\n", art.Method)
	fmt.Fprintf(a.stdout, "Result type:  %s\n", art.ResultType)
	fmt.Fprintf(a.stdout, "Contribution: %s\n", art.Contribution)
	if art.CoherenceNotes.AlignmentAssessment != "" {
		fmt.Fprintf(a.stdout, "Coherence:    %s\n", art.CoherenceNotes.AlignmentAssessment)
	}
	if art.AbstractEN != "" {
		fmt.Fprintf(a.stdout, "\nAbstract (EN):\n%s\n", art.AbstractEN)
	}
	if art.AbstractZH != "" {
		fmt.Fprintf(a.stdout, "\nAbstract (ZH):\n%s\n", art.AbstractZH)
	}
}
