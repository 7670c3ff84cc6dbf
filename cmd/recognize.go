package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Find the enrolled identity matching a photograph",
	Long: `Compare the face in a photograph against every enrolled identity and
report the closest one when its cosine similarity exceeds 0.6.`,
	Args: cobra.NoArgs,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("image", "", "Path to the photograph")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	img, err := readImageFlag(cmd)
	if err != nil {
		return err
	}
	if img == nil {
		return errors.New("--image is required")
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.gallery.Recognize(cmd.Context(), img)
	if err != nil {
		return describeError(err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if !res.Matched {
		fmt.Println("Face not recognized")
		return nil
	}
	fmt.Printf("Recognized #%d %s %s (code %s)\n", res.Identity.ID, res.Identity.GivenName, res.Identity.FamilyName, res.Identity.Code)
	fmt.Printf("Similarity: %.4f\n", res.Similarity)
	if res.Alert {
		fmt.Println("ALERT: this identity is flagged")
	}
	return nil
}
