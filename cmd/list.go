package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/kozaktomas/face-gallery/internal/artifact"
	"github.com/kozaktomas/face-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	Long: `List every enrolled identity in ID order.

With --export-dir the stored photograph of each identity is written to the
directory as <id>_<code>.jpg.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("export-dir", "", "Write each identity's photograph into this directory")
	listCmd.Flags().Bool("json", false, "Output as JSON")
}

type listEntry struct {
	ID int64 `json:"id"`
	gallery.Profile
	HasImage bool   `json:"has_image"`
	Exported string `json:"exported,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	exportDir := mustGetString(cmd, "export-dir")
	jsonOutput := mustGetBool(cmd, "json")

	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	seq, err := svc.gallery.List(cmd.Context())
	if err != nil {
		return err
	}

	entries := []listEntry{}
	for item, err := range seq {
		if err != nil {
			return err
		}
		entry := listEntry{ID: item.ID, Profile: item.Profile, HasImage: len(item.Image) > 0}
		if exportDir != "" && entry.HasImage {
			path := filepath.Join(exportDir, fmt.Sprintf("%d_%s.jpg", item.ID, artifact.Slug(item.Code)))
			if err := os.WriteFile(path, item.Image, 0644); err != nil {
				return fmt.Errorf("exporting image of identity %d: %w", item.ID, err)
			}
			entry.Exported = path
		}
		entries = append(entries, entry)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Gallery is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCODE\tEMAIL\tFLAGGED\tIMAGE")
	for _, e := range entries {
		image := "missing"
		if e.HasImage {
			image = "ok"
		}
		if e.Exported != "" {
			image = e.Exported
		}
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%t\t%s\n", e.ID, e.GivenName, e.FamilyName, e.Code, e.Email, e.Flagged, image)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d\n", len(entries))
	return nil
}
