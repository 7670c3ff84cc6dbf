package cmd

import (
	"fmt"
	"os"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

// addProfileFlags registers the identity profile flags on cmd.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("given-name", "", "Given name")
	cmd.Flags().String("family-name", "", "Family name")
	cmd.Flags().String("code", "", "Identity code (document number or similar)")
	cmd.Flags().String("email", "", "Contact email")
	cmd.Flags().Bool("flagged", false, "Raise an alert whenever this identity is recognized")
	cmd.Flags().String("image", "", "Path to the face photograph")
}

// profileFromFlags overlays the flags the user set onto base.
func profileFromFlags(cmd *cobra.Command, base gallery.Profile) gallery.Profile {
	p := base
	if cmd.Flags().Changed("given-name") {
		p.GivenName = mustGetString(cmd, "given-name")
	}
	if cmd.Flags().Changed("family-name") {
		p.FamilyName = mustGetString(cmd, "family-name")
	}
	if cmd.Flags().Changed("code") {
		p.Code = mustGetString(cmd, "code")
	}
	if cmd.Flags().Changed("email") {
		p.Email = mustGetString(cmd, "email")
	}
	if cmd.Flags().Changed("flagged") {
		p.Flagged = mustGetBool(cmd, "flagged")
	}
	return p
}

// readImageFlag reads the file named by --image; nil when the flag is empty.
func readImageFlag(cmd *cobra.Command) ([]byte, error) {
	path := mustGetString(cmd, "image")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

func printIdentity(id *gallery.Identity) {
	fmt.Printf("ID:          %d\n", id.ID)
	fmt.Printf("Name:        %s %s\n", id.GivenName, id.FamilyName)
	fmt.Printf("Code:        %s\n", id.Code)
	fmt.Printf("Email:       %s\n", id.Email)
	fmt.Printf("Flagged:     %t\n", id.Flagged)
	fmt.Printf("Image:       %s\n", id.ImageRef)
	if len(id.Embedding) > 0 {
		fmt.Printf("Embedding:   %d dimensions\n", len(id.Embedding))
	}
}
