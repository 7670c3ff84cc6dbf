package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit an enrolled identity",
	Long: `Edit an enrolled identity. Only the flags given are changed. With --image
the photograph and embedding are replaced; without it they are kept.

Examples:
  face-gallery update 12 --email ana.perez@example.com
  face-gallery update 12 --image ana-2026.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addProfileFlags(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}
	img, err := readImageFlag(cmd)
	if err != nil {
		return err
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	updated, err := updateIdentity(cmd.Context(), svc.gallery, cmd, id, img)
	if err != nil {
		return describeError(err)
	}

	fmt.Println("Identity updated")
	printIdentity(updated)
	return nil
}

// updateIdentity overlays the changed flags onto the stored profile and saves
// it. The stored embedding is not decoded here, so a record with a missing or
// corrupt embedding can be repaired by passing a new image.
func updateIdentity(ctx context.Context, g *gallery.Manager, cmd *cobra.Command, id int64, img []byte) (*gallery.Identity, error) {
	current, err := g.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Update(ctx, id, profileFromFlags(cmd, current), img)
}
