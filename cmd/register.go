package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Enroll a new identity from a photograph",
	Long: `Enroll a new identity. The photograph must contain a detectable face;
nothing is stored otherwise.

Examples:
  face-gallery register --given-name Ana --family-name Pérez \
    --code A-7 --email ana@example.com --image ana.jpg

  # Raise an alert whenever this person is recognized
  face-gallery register --flagged ... --image suspect.jpg`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	addProfileFlags(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	img, err := readImageFlag(cmd)
	if err != nil {
		return err
	}
	if img == nil {
		return errors.New("--image is required")
	}
	profile := profileFromFlags(cmd, gallery.Profile{})
	if err := profile.Validate(); err != nil {
		return err
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	identity, err := svc.gallery.Register(cmd.Context(), profile, img)
	if err != nil {
		return describeError(err)
	}

	fmt.Println("Identity registered")
	printIdentity(identity)
	return nil
}
