package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report gallery records that recognition would skip",
	Long: `Walk the whole gallery and report identities whose embedding is missing,
cannot be decoded, or has a different length than the rest, and identities
whose photograph is gone. Exits with an error when problems are found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	total, err := svc.store.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting identities: %w", err)
	}

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Checking gallery"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("identities"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	report, err := svc.gallery.Check(cmd.Context(), func(gallery.CheckItem) {
		if bar != nil {
			bar.Add(1)
		}
	})
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printCheckReport(report)
	}

	if !report.Healthy() {
		return fmt.Errorf("%d of %d identities have problems", len(report.Problems), report.Total)
	}
	return nil
}

func printCheckReport(report gallery.CheckReport) {
	fmt.Printf("Identities:          %d\n", report.Total)
	fmt.Printf("Valid embeddings:    %d\n", report.Valid)
	fmt.Printf("Embedding dimension: %d\n", report.Dim)
	fmt.Printf("Missing embeddings:  %d\n", report.MissingEmbedding)
	fmt.Printf("Corrupt embeddings:  %d\n", report.Corrupt)
	fmt.Printf("Wrong dimension:     %d\n", report.WrongDimension)
	fmt.Printf("Missing images:      %d\n", report.MissingArtifacts)

	if len(report.Problems) == 0 {
		return
	}
	fmt.Println("\nProblems:")
	for _, p := range report.Problems {
		line := fmt.Sprintf("  #%d %s: %s", p.ID, p.Code, p.Status)
		if p.ArtifactMissing {
			line += ", image missing"
		}
		if p.Detail != "" {
			line += " (" + p.Detail + ")"
		}
		fmt.Println(line)
	}
}
