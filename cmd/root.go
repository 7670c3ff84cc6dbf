package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-gallery",
	Short: "Enroll people by photograph and recognize them later",
	Long: `Face Gallery keeps a gallery of enrolled identities, each with a face
embedding computed from a photograph, and recognizes new photographs by
cosine similarity against that gallery.

Run "face-gallery serve" for the HTTP API, or use the subcommands to
manage the gallery from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
